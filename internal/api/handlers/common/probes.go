package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/near"
)

type probeResult struct {
	name string
	info string
	err  error
}

func render(results []probeResult) (string, []error) {
	var b strings.Builder
	var errs []error

	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(&b, "Probe %s: Failed: %v.\n", r.name, r.err)
			errs = append(errs, r.err)
			continue
		}
		fmt.Fprintf(&b, "Probe %s: OK (%s).\n", r.name, r.info)
	}

	return b.String(), errs
}

// ProbeReadiness checks that the configuration is complete enough to serve
// requests. No network round trip is made.
func ProbeReadiness(ctx context.Context, cfg config.Server) (string, []error) {
	results := make([]probeResult, 0, 2)

	contract, err := chainsig.NewInitializer(cfg).InitContract(ctx)
	if err != nil {
		results = append(results, probeResult{name: "contract", err: err})
	} else {
		results = append(results, probeResult{name: "contract", info: contract.ContractID()})
	}

	if len(cfg.EVM.RPCURLs) == 0 {
		results = append(results, probeResult{name: "evm", err: errors.Errorf("no RPC URL configured for chain %d", cfg.EVM.ChainID)})
	} else {
		results = append(results, probeResult{name: "evm", info: fmt.Sprintf("%d RPC URL(s)", len(cfg.EVM.RPCURLs))})
	}

	return render(results)
}

// ProbeLiveness checks that the NEAR RPC and the EVM RPC answer within ctx.
func ProbeLiveness(ctx context.Context, cfg config.Server) (string, []error) {
	return render([]probeResult{
		probeNear(ctx, cfg.Near),
		probeEVM(ctx, cfg.EVM),
	})
}

func probeNear(ctx context.Context, cfg config.Near) probeResult {
	res := probeResult{name: "near"}

	client, err := near.NewClient(cfg.RPCURL)
	if err != nil {
		res.err = err
		return res
	}

	status, err := client.Status(ctx)
	if err != nil {
		res.err = err
		return res
	}

	if status.SyncInfo.Syncing {
		res.err = errors.Errorf("node of %s is syncing", status.ChainID)
		return res
	}

	res.info = fmt.Sprintf("%s at block %d", status.ChainID, status.SyncInfo.LatestBlockHeight)
	return res
}

func probeEVM(ctx context.Context, cfg config.EVM) probeResult {
	res := probeResult{name: "evm"}

	client, err := evm.Dial(ctx, cfg.RPCURLs)
	if err != nil {
		res.err = err
		return res
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		res.err = err
		return res
	}

	if cfg.ChainID > 0 && chainID.Int64() != cfg.ChainID {
		res.err = errors.Errorf("chain id %s does not match configured %d", chainID, cfg.ChainID)
		return res
	}

	res.info = "chain " + chainID.String()
	return res
}
