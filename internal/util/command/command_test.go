package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/util/command"
)

func TestWithServer(t *testing.T) {
	ctx := t.Context()

	var testError = errors.New("test error")

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Logger.PrettyPrintConsole = false

	resultErr := command.WithServer(ctx, cfg, func(_ context.Context, s *api.Server) error {
		require.NotNil(t, s.Contracts)
		require.NotNil(t, s.Chains)
		require.NotNil(t, s.Executor)
		require.NotNil(t, s.Metrics)
		assert.Equal(t, cfg.Near.ContractID, s.Config.Near.ContractID)

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestNewSubcommandGroup(t *testing.T) {
	var called bool
	child := &cobra.Command{
		Use: "child",
		Run: func(*cobra.Command, []string) {
			called = true
		},
	}

	group := command.NewSubcommandGroup("group", child)
	assert.Equal(t, "group <subcommand>", group.Use)

	group.SetArgs([]string{"child"})
	require.NoError(t, group.Execute())
	assert.True(t, called)
}
