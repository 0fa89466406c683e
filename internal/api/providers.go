package api

import (
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/config"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewClock returns a mock clock frozen at a fixed date when running in a test, the wall clock otherwise.
func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if !useMock {
		clock = time2.DefaultClock
	} else {
		clock = time2.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	}

	return clock
}

// NewChainInitializer wraps chains.NewInitializer, whose variadic options wire can't provide.
func NewChainInitializer(cfg config.Server) *chains.Initializer {
	return chains.NewInitializer(cfg)
}

func NoTest() []*testing.T {
	return nil
}
