package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/api/router"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/util/command"
)

const portFlag = "port"

func New() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the HTTP server.

GET / executes one EVM transaction signed by the NEAR chain signature contract.
Requires configuration through ENV.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			if cmd.Flags().Changed(portFlag) {
				cfg.Echo.ListenAddress = config.ListenAddressForPort(v.GetInt(portFlag))
			}

			runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Int(portFlag, config.DefaultPort, "Port to listen on, overrides PORT.")
	if err := v.BindPFlag(portFlag, cmd.Flags().Lookup(portFlag)); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind port flag")
	}

	return cmd
}

func runServer(ctx context.Context, cfg config.Server) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	err := command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		if err := router.Init(s); err != nil {
			return errors.Wrap(err, "failed to initialize router")
		}

		checkChainSignatureConfig(ctx, s)

		return Serve(ctx, s)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}

// signalContext is done once the process receives SIGTERM or SIGINT.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
}

// Serve runs s until ctx is done and then shuts it down, waiting for in-flight
// requests up to the configured shutdown timeout.
// A listener already set on s.Echo is used as is.
func Serve(ctx context.Context, s *api.Server) error {
	if s.Echo.Listener == nil {
		ln, err := net.Listen("tcp", s.Config.Echo.ListenAddress)
		if err != nil {
			return errors.Wrapf(err, "failed to listen on %s", s.Config.Echo.ListenAddress)
		}
		s.Echo.Listener = ln
	}

	port := 0
	if addr, ok := s.Echo.Listener.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	log.Info().Msgf("Server running at http://localhost:%d", port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("SIGTERM signal received: closing HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.Echo.ShutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		return errors.Errorf("failed to close HTTP server: %v", errs)
	}

	if err := <-errCh; err != nil {
		return err
	}

	log.Info().Msg("HTTP server closed")

	return nil
}
