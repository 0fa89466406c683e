package derive

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/util/command"
)

const (
	pathFlag    = "path"
	balanceFlag = "balance"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Prints the derived EVM sender",
		Long: `Prints the EVM address and public key the MPC contract derives for
NEAR_ACCOUNT_ID and EVM_DERIVATION_PATH. Fund this address before calling GET /.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			if path, _ := cmd.Flags().GetString(pathFlag); path != "" {
				cfg.EVM.DerivationPath = path
			}
			withBalance, _ := cmd.Flags().GetBool(balanceFlag)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			err := command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
				return Run(ctx, s, os.Stdout, withBalance)
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to derive EVM sender")
			}
		},
	}

	cmd.Flags().String(pathFlag, "", "Derivation path, overrides EVM_DERIVATION_PATH.")
	cmd.Flags().Bool(balanceFlag, false, "Also query the balance of the derived address.")

	return cmd
}

// Run derives the sender of s's configured account and path and writes it to out.
func Run(ctx context.Context, s *api.Server, out io.Writer, withBalance bool) error {
	contract, err := s.Contracts.InitContract(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to initialize contract")
	}

	registry, err := s.Chains.InitChains(ctx, contract)
	if err != nil {
		return errors.Wrap(err, "failed to initialize chains")
	}
	defer registry.Close()

	address, publicKey, err := registry.EVM.DeriveAddressAndPublicKey(ctx, s.Config.Near.AccountID, s.Config.EVM.DerivationPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "predecessor: %s\n", s.Config.Near.AccountID)
	fmt.Fprintf(out, "path:        %s\n", s.Config.EVM.DerivationPath)
	fmt.Fprintf(out, "address:     %s\n", address.Hex())
	fmt.Fprintf(out, "public key:  %s\n", hexutil.Encode(crypto.FromECDSAPub(publicKey)))

	if !withBalance {
		return nil
	}

	balance, err := registry.EVM.Balance(ctx, address)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "balance:     %s wei\n", balance.String())

	return nil
}
