package test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/test/fakenear"
	"github/chapool/chainsig-relay/internal/test/simchain"
)

const (
	RelayContractID = "v1.signer-prod.testnet"
	RelayAccountID  = "relayer.testnet"
)

// Relay is the fake environment a relay test server talks to.
type Relay struct {
	NearRPC *fakenear.Server
	MPC     *fakenear.MPC
	Chain   *simchain.Chain
	// Sender is the EVM address derived for RelayAccountID, funded on Chain.
	Sender common.Address
}

// RelayConfig returns the default config pointed at the fake NEAR RPC.
func RelayConfig(rpcURL string) config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Near.RPCURL = rpcURL
	cfg.Near.AccountID = RelayAccountID
	cfg.Near.PrivateKey = fakenear.AccountKey()
	cfg.Near.ContractID = RelayContractID
	cfg.Near.DerivationMode = config.DerivationModeLocal
	cfg.EVM.ChainID = simchain.ChainID
	cfg.EVM.RPCURLs = []string{"http://simulated"}
	cfg.EVM.DerivationPath = "ethereum-1"
	cfg.EVM.ToAddress = ""
	cfg.EVM.ValueWei = "0"
	cfg.EVM.Data = ""
	cfg.EVM.GasLimit = 0

	return cfg
}

// WithTestRelay starts a test server backed by a fake NEAR RPC with an MPC
// signer contract and a simulated EVM chain funding the derived sender.
func WithTestRelay(t *testing.T, closure func(s *api.Server, relay *Relay)) {
	t.Helper()

	rpc := fakenear.New(t)
	mpc := fakenear.NewMPC(t, rpc, RelayContractID)

	cfg := RelayConfig(rpc.URL)

	sender := crypto.PubkeyToAddress(mpc.DerivedPrivateKey(RelayAccountID, cfg.EVM.DerivationPath).PublicKey)
	chain := simchain.New(t, sender)

	chainInitializer := chains.NewInitializer(cfg, chains.WithDialer(func(context.Context, []string) (evm.Backend, error) {
		return chain.Client, nil
	}))

	relay := &Relay{
		NearRPC: rpc,
		MPC:     mpc,
		Chain:   chain,
		Sender:  sender,
	}

	WithTestServerConfigurableWithChains(t, cfg, chainInitializer, func(s *api.Server) {
		closure(s, relay)
	})
}
