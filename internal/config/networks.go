package config

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed networks.toml
var networksTOML string

// NearNetwork holds the defaults for a NEAR network.
type NearNetwork struct {
	RPCURL        string `toml:"rpc_url"`
	MPCContractID string `toml:"mpc_contract_id"`
}

type networksFile struct {
	Networks map[string]NearNetwork `toml:"networks"`
}

var nearNetworks = mustDecodeNetworks(networksTOML)

func mustDecodeNetworks(raw string) map[string]NearNetwork {
	var file networksFile
	if _, err := toml.Decode(raw, &file); err != nil {
		panic(fmt.Sprintf("invalid embedded networks.toml: %v", err))
	}

	return file.Networks
}

// LookupNearNetwork returns the defaults for the given network id.
func LookupNearNetwork(networkID string) (NearNetwork, bool) {
	network, ok := nearNetworks[networkID]
	return network, ok
}

// NearNetworkIDs lists the known network ids in lexical order.
func NearNetworkIDs() []string {
	ids := make([]string, 0, len(nearNetworks))
	for id := range nearNetworks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

var defaultEVMRPCByChainID = map[int64]string{
	1:        "https://eth.llamarpc.com",
	10:       "https://mainnet.optimism.io",
	56:       "https://bsc-dataseed.binance.org",
	97:       "https://data-seed-prebsc-1-s1.binance.org:8545",
	137:      "https://polygon-rpc.com",
	8453:     "https://mainnet.base.org",
	42161:    "https://arb1.arbitrum.io/rpc",
	43114:    "https://api.avax.network/ext/bc/C/rpc",
	84532:    "https://sepolia.base.org",
	421614:   "https://sepolia-rollup.arbitrum.io/rpc",
	11155111: "https://ethereum-sepolia-rpc.publicnode.com",
}

// DefaultEVMRPCURL returns the public RPC endpoint used when EVM_RPC_URL is not set.
func DefaultEVMRPCURL(chainID int64) (string, bool) {
	url, ok := defaultEVMRPCByChainID[chainID]
	return url, ok
}
