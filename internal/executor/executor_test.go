package executor_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/executor"
	"github/chapool/chainsig-relay/internal/test/fakenear"
	"github/chapool/chainsig-relay/internal/test/simchain"
)

const (
	contractID = "v1.signer-prod.testnet"
	accountID  = "relayer.testnet"
)

type fixture struct {
	cfg      config.Server
	mpc      *fakenear.MPC
	chain    *simchain.Chain
	sender   common.Address
	contract chainsig.Contract
	registry *chains.Registry
}

func newFixture(t *testing.T, mutate func(cfg *config.Server)) *fixture {
	t.Helper()

	rpc := fakenear.New(t)
	mpc := fakenear.NewMPC(t, rpc, contractID)

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Near.RPCURL = rpc.URL
	cfg.Near.AccountID = accountID
	cfg.Near.PrivateKey = fakenear.AccountKey()
	cfg.Near.ContractID = contractID
	cfg.EVM.ChainID = simchain.ChainID
	cfg.EVM.RPCURLs = []string{"http://sim"}
	cfg.EVM.DerivationPath = "ethereum-1"
	cfg.EVM.ToAddress = ""
	cfg.EVM.ValueWei = "0"
	cfg.EVM.Data = ""
	cfg.EVM.GasLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	sender := crypto.PubkeyToAddress(mpc.DerivedPrivateKey(accountID, cfg.EVM.DerivationPath).PublicKey)
	chain := simchain.New(t, sender)

	contract, err := chainsig.NewInitializer(cfg).InitContract(t.Context())
	require.NoError(t, err)

	registry, err := chains.NewInitializer(cfg, chains.WithDialer(func(context.Context, []string) (evm.Backend, error) {
		return chain.Client, nil
	})).InitChains(t.Context(), contract)
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	return &fixture{
		cfg:      cfg,
		mpc:      mpc,
		chain:    chain,
		sender:   sender,
		contract: contract,
		registry: registry,
	}
}

func TestExecuteEVMTransactionSelfTransfer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	txHash, err := executor.New(f.cfg).ExecuteEVMTransaction(ctx, executor.EVMTransactionParams{
		Contract:      f.contract,
		EVM:           f.registry.EVM,
		PredecessorID: accountID,
	})
	require.NoError(t, err)
	assert.Regexp(t, "^0x[0-9a-f]{64}$", txHash)

	f.chain.Commit()

	receipt, err := f.chain.Client.TransactionReceipt(ctx, common.HexToHash(txHash))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)

	tx, _, err := f.chain.Client.TransactionByHash(ctx, common.HexToHash(txHash))
	require.NoError(t, err)
	require.NotNil(t, tx.To())
	assert.Equal(t, f.sender, *tx.To())
	assert.Equal(t, 0, tx.Value().Sign())
	assert.Equal(t, int64(1), f.mpc.SignCount())
}

func TestExecuteEVMTransactionConfiguredTransfer(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	f := newFixture(t, func(cfg *config.Server) {
		cfg.EVM.ToAddress = to.Hex()
		cfg.EVM.ValueWei = "1000000000000000"
	})
	ctx := t.Context()

	_, err := executor.New(f.cfg).ExecuteEVMTransaction(ctx, executor.EVMTransactionParams{
		Contract:      f.contract,
		EVM:           f.registry.EVM,
		PredecessorID: accountID,
	})
	require.NoError(t, err)

	f.chain.Commit()

	balance, err := f.chain.Client.BalanceAt(ctx, to, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000), balance)
}

func TestExecuteEVMTransactionEachCallSubmits(t *testing.T) {
	f := newFixture(t, nil)
	exec := executor.New(f.cfg)
	params := executor.EVMTransactionParams{Contract: f.contract, EVM: f.registry.EVM, PredecessorID: accountID}

	first, err := exec.ExecuteEVMTransaction(t.Context(), params)
	require.NoError(t, err)
	f.chain.Commit()

	second, err := exec.ExecuteEVMTransaction(t.Context(), params)
	require.NoError(t, err)
	f.chain.Commit()

	assert.NotEqual(t, first, second)
	assert.Equal(t, int64(2), f.mpc.SignCount())
}

func TestExecuteEVMTransactionSignFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.mpc.FailSign("Signature request has timed out.")

	_, err := executor.New(f.cfg).ExecuteEVMTransaction(t.Context(), executor.EVMTransactionParams{
		Contract:      f.contract,
		EVM:           f.registry.EVM,
		PredecessorID: accountID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Signature request has timed out.")
}

func TestExecuteEVMTransactionWrongPredecessor(t *testing.T) {
	f := newFixture(t, nil)

	// the derived sender of another account holds no funds
	_, err := executor.New(f.cfg).ExecuteEVMTransaction(t.Context(), executor.EVMTransactionParams{
		Contract:      f.contract,
		EVM:           f.registry.EVM,
		PredecessorID: "someone-else.testnet",
	})
	require.Error(t, err)
}

func TestExecuteEVMTransactionInvalidParams(t *testing.T) {
	f := newFixture(t, nil)
	exec := executor.New(f.cfg)

	tests := map[string]executor.EVMTransactionParams{
		"missing contract":    {EVM: f.registry.EVM, PredecessorID: accountID},
		"missing adapter":     {Contract: f.contract, PredecessorID: accountID},
		"missing predecessor": {Contract: f.contract, EVM: f.registry.EVM},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := exec.ExecuteEVMTransaction(t.Context(), params)
			require.Error(t, err)
		})
	}
}

func TestExecuteEVMTransactionInvalidConfig(t *testing.T) {
	tests := map[string]func(cfg *config.Server){
		"to address": func(cfg *config.Server) { cfg.EVM.ToAddress = "0x1234" },
		"value":      func(cfg *config.Server) { cfg.EVM.ValueWei = "-1" },
		"data":       func(cfg *config.Server) { cfg.EVM.Data = "zz" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, mutate)

			_, err := executor.New(f.cfg).ExecuteEVMTransaction(t.Context(), executor.EVMTransactionParams{
				Contract:      f.contract,
				EVM:           f.registry.EVM,
				PredecessorID: accountID,
			})
			require.Error(t, err)
			assert.Equal(t, int64(0), f.mpc.SignCount())
		})
	}
}
