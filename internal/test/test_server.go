package test

import (
	"context"
	"testing"
	"time"

	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/api/router"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/config"
)

// WithTestServer returns a fully configured server (using the default server config).
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, config.DefaultServiceConfigFromEnv(), closure)
}

// WithTestServerConfigurable returns a fully configured server, allowing for configuration using the provided server config.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurableWithChains(t, cfg, chains.NewInitializer(cfg), closure)
}

// WithTestServerConfigurableWithChains returns a fully configured server whose
// chain registry is built by the given initializer.
func WithTestServerConfigurableWithChains(t *testing.T, cfg config.Server, chainInitializer api.ChainInitializer, closure func(s *api.Server)) {
	t.Helper()

	s := NewTestServer(t, cfg, chainInitializer)

	closure(s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Fatalf("Failed to shutdown server: %v", errs)
	}
}

func NewTestServer(t *testing.T, cfg config.Server, chainInitializer api.ChainInitializer) *api.Server {
	t.Helper()

	s, err := api.InitNewServerWithChains(cfg, chainInitializer, t)
	if err != nil {
		t.Fatalf("Failed to init server: %v", err)
	}

	if err := router.Init(s); err != nil {
		t.Fatalf("Failed to init router: %v", err)
	}

	return s
}
