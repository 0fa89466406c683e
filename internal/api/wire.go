//go:build wireinject

package api

import (
	"testing"

	"github.com/google/wire"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/executor"
	"github/chapool/chainsig-relay/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	chainSignatureSet,
)

var chainSignatureSet = wire.NewSet(
	chainsig.NewInitializer,
	wire.Bind(new(ContractInitializer), new(*chainsig.Initializer)),
	NewChainInitializer,
	wire.Bind(new(ChainInitializer), new(*chains.Initializer)),
	executor.New,
	wire.Bind(new(TransactionExecutor), new(*executor.Executor)),
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewClock, NoTest)
	return new(Server), nil
}

// InitNewServerWithChains returns a new Server instance using the given chain initializer.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithChains(
	_ config.Server,
	_ ChainInitializer,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(
		newServerWithComponents,
		metrics.New,
		chainsig.NewInitializer,
		wire.Bind(new(ContractInitializer), new(*chainsig.Initializer)),
		executor.New,
		wire.Bind(new(TransactionExecutor), new(*executor.Executor)),
		NewClock,
	)
	return new(Server), nil
}
