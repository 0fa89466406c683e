package env

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/chainsig-relay/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the env",
		Long: `Prints the effective configuration as JSON.

Secrets such as NEAR_PRIVATE_KEY are omitted.`,
		Run: func(_ *cobra.Command, _ []string) {
			out, err := render(config.DefaultServiceConfigFromEnv())
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to marshal the env")
			}

			fmt.Println(out)
		},
	}
}

func render(cfg config.Server) (string, error) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}

	return string(b), nil
}
