package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github/chapool/chainsig-relay/internal/api/handlers/common"
	"github/chapool/chainsig-relay/internal/config"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long:  `Checks that the NEAR RPC and the EVM RPC answer. Exits with code 1 if a probe fails.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			os.Exit(runLiveness(cmd.Context(), verbose))
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runLiveness(ctx context.Context, verbose bool) int {
	cfg := config.DefaultServiceConfigFromEnv()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Management.ProbeTimeout)
	defer cancel()

	str, errs := common.ProbeLiveness(ctx, cfg)
	if verbose || len(errs) > 0 {
		fmt.Print(str)
	}

	if len(errs) > 0 {
		return 1
	}

	return 0
}
