package server

import (
	"context"

	"github.com/rs/zerolog/log"
	"github/chapool/chainsig-relay/internal/api"
)

// checkChainSignatureConfig builds the contract handle once at startup so
// configuration errors show up in the logs before the first request.
// Requests still initialize their own handle and fail individually.
func checkChainSignatureConfig(ctx context.Context, s *api.Server) {
	contract, err := s.Contracts.InitContract(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Chain signature contract is not configured, GET / will fail")
		return
	}

	log.Info().
		Str("network_id", s.Config.Near.NetworkID).
		Str("account_id", s.Config.Near.AccountID).
		Str("contract_id", contract.ContractID()).
		Str("derivation_mode", s.Config.Near.DerivationMode).
		Str("derivation_path", s.Config.EVM.DerivationPath).
		Int64("evm_chain_id", s.Config.EVM.ChainID).
		Int("evm_rpc_urls", len(s.Config.EVM.RPCURLs)).
		Msg("Chain signature relay configured")
}
