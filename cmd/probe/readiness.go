package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github/chapool/chainsig-relay/internal/api/handlers/common"
	"github/chapool/chainsig-relay/internal/config"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long:  `Checks the NEAR account, MPC contract and EVM RPC configuration without network access. Exits with code 1 if a probe fails.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			os.Exit(runReadiness(cmd.Context(), verbose))
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runReadiness(ctx context.Context, verbose bool) int {
	if ctx == nil {
		ctx = context.Background()
	}

	str, errs := common.ProbeReadiness(ctx, config.DefaultServiceConfigFromEnv())
	if verbose || len(errs) > 0 {
		fmt.Print(str)
	}

	if len(errs) > 0 {
		return 1
	}

	return 0
}
