package api_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/test"
)

func TestShutdownOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() {
		log.Logger = prev
	})

	cfg := config.DefaultServiceConfigFromEnv()
	s := test.NewTestServer(t, cfg, chains.NewInitializer(cfg))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	require.Empty(t, s.Shutdown(ctx))
	require.Empty(t, s.Shutdown(ctx))

	assert.Equal(t, 1, strings.Count(buf.String(), "Shutting down server"))
}

func TestReady(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	s := test.NewTestServer(t, cfg, chains.NewInitializer(cfg))
	assert.True(t, s.Ready())

	s.Chains = nil
	assert.False(t, s.Ready())
}
