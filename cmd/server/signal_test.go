package server

import (
	"bytes"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
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

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestServeStopsOnSIGTERM(t *testing.T) {
	logs := &lockedBuffer{}
	prev := log.Logger
	log.Logger = zerolog.New(logs)
	t.Cleanup(func() {
		log.Logger = prev
	})

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Echo.ShutdownTimeout = 5 * time.Second
	s := test.NewTestServer(t, cfg, chains.NewInitializer(cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s.Echo.Listener = ln
	addr := ln.Addr().String()

	ctx, stop := signalContext(t.Context())
	defer stop()

	served := make(chan error, 1)
	go func() {
		served <- Serve(ctx, s)
	}()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr + "/-/ready")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after SIGTERM")
	}

	_, err = net.DialTimeout("tcp", addr, 100*time.Millisecond)
	require.Error(t, err, "listener should be closed")

	out := logs.String()
	assert.Contains(t, out, "SIGTERM signal received: closing HTTP server")
	assert.Contains(t, out, "HTTP server closed")
}
