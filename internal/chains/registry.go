package chains

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/util"
)

// Adapter is implemented by every chain adapter in the registry.
type Adapter interface {
	Name() string
	Close()
}

// Registry holds the chain adapters of a single request.
type Registry struct {
	EVM *evm.Adapter
}

func (r *Registry) adapters() map[string]Adapter {
	out := make(map[string]Adapter)
	if r.EVM != nil {
		out[evm.Name] = r.EVM
	}

	return out
}

// Adapter looks up an adapter by chain identifier.
//
//nolint:ireturn
func (r *Registry) Adapter(name string) (Adapter, error) {
	adapter, ok := r.adapters()[name]
	if !ok {
		return nil, errors.Errorf("unknown chain %q", name)
	}

	return adapter, nil
}

// Names returns the sorted identifiers of all registered adapters.
func (r *Registry) Names() []string {
	adapters := r.adapters()
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Close releases the connections of all adapters.
func (r *Registry) Close() {
	for _, adapter := range r.adapters() {
		adapter.Close()
	}
}

// DialFunc connects to the EVM RPC endpoints.
type DialFunc func(ctx context.Context, urls []string) (evm.Backend, error)

func dialRPC(ctx context.Context, urls []string) (evm.Backend, error) {
	return evm.Dial(ctx, urls)
}

// Initializer builds a registry for a contract handle.
type Initializer struct {
	cfg  config.EVM
	dial DialFunc
}

type Option func(i *Initializer)

// WithDialer replaces how EVM backends are connected.
func WithDialer(dial DialFunc) Option {
	return func(i *Initializer) {
		i.dial = dial
	}
}

func NewInitializer(cfg config.Server, opts ...Option) *Initializer {
	i := &Initializer{
		cfg:  cfg.EVM,
		dial: dialRPC,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// InitChains returns a registry whose "evm" adapter signs through contract.
func (i *Initializer) InitChains(ctx context.Context, contract chainsig.Contract) (*Registry, error) {
	if contract == nil {
		return nil, errors.New("chain signature contract is required")
	}

	backend, err := i.dial(ctx, i.cfg.RPCURLs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to EVM RPC")
	}

	adapter, err := evm.NewAdapter(backend, contract, evm.Options{
		ChainID:       i.cfg.ChainID,
		GasMultiplier: i.cfg.GasMultiplier,
	})
	if err != nil {
		if closer, ok := backend.(interface{ Close() }); ok {
			closer.Close()
		}
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Int64("chain_id", i.cfg.ChainID).
		Strs("rpc_urls", i.cfg.RPCURLs).
		Msg("Initialized chain registry")

	return &Registry{EVM: adapter}, nil
}
