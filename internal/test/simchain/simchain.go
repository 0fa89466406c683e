// Package simchain wraps the go-ethereum simulated backend for tests.
package simchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
)

// ChainID of the simulated dev chain.
const ChainID = 1337

// Chain is an in-memory EVM chain. Transactions are mined on Commit.
type Chain struct {
	Backend *simulated.Backend
	// Client has no Close method, releasing it leaves the chain running.
	Client simulated.Client
}

type sharedClient struct {
	simulated.Client
}

// DefaultBalance is credited to every funded account.
func DefaultBalance() *big.Int {
	return new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))
}

// New starts a simulated chain funding accounts with DefaultBalance each.
func New(t *testing.T, accounts ...common.Address) *Chain {
	t.Helper()

	alloc := make(types.GenesisAlloc, len(accounts))
	for _, account := range accounts {
		alloc[account] = types.Account{Balance: DefaultBalance()}
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() {
		_ = backend.Close()
	})

	return &Chain{
		Backend: backend,
		Client:  sharedClient{backend.Client()},
	}
}

// Commit mines the pending transactions into a new block.
func (c *Chain) Commit() {
	c.Backend.Commit()
}
