// Package mocks holds testify mocks of the server's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/executor"
)

type ContractInitializer struct {
	mock.Mock
}

//nolint:ireturn
func (m *ContractInitializer) InitContract(ctx context.Context) (chainsig.Contract, error) {
	args := m.Called(ctx)

	contract, _ := args.Get(0).(chainsig.Contract)
	return contract, args.Error(1)
}

type ChainInitializer struct {
	mock.Mock
}

func (m *ChainInitializer) InitChains(ctx context.Context, contract chainsig.Contract) (*chains.Registry, error) {
	args := m.Called(ctx, contract)

	registry, _ := args.Get(0).(*chains.Registry)
	return registry, args.Error(1)
}

type TransactionExecutor struct {
	mock.Mock
}

func (m *TransactionExecutor) ExecuteEVMTransaction(ctx context.Context, params executor.EVMTransactionParams) (string, error) {
	args := m.Called(ctx, params)

	return args.String(0), args.Error(1)
}
