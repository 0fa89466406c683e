package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	t.Setenv("NEAR_PRIVATE_KEY", "ed25519:secret")

	config := config.DefaultServiceConfigFromEnv()
	out, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)

	assert.NotContains(t, string(out), "ed25519:secret")
}

func TestDefaultPort(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, ":3001", cfg.Echo.ListenAddress)
}

func TestPortFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, ":8080", cfg.Echo.ListenAddress)
}

func TestNonNumericPortFallsBack(t *testing.T) {
	for _, port := range []string{"eighty", "8080abc", "80.5"} {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)

			cfg := config.DefaultServiceConfigFromEnv()
			assert.Equal(t, ":3001", cfg.Echo.ListenAddress)
		})
	}
}

func TestNearNetworkPresets(t *testing.T) {
	t.Setenv("NEAR_NETWORK_ID", "mainnet")
	t.Setenv("NEAR_RPC_URL", "")
	t.Setenv("NEAR_MPC_CONTRACT_ID", "")
	os.Unsetenv("NEAR_RPC_URL")
	os.Unsetenv("NEAR_MPC_CONTRACT_ID")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "mainnet", cfg.Near.NetworkID)
	assert.Equal(t, "https://rpc.mainnet.near.org", cfg.Near.RPCURL)
	assert.Equal(t, "v1.signer", cfg.Near.ContractID)
}

func TestNearContractOverride(t *testing.T) {
	t.Setenv("NEAR_NETWORK_ID", "testnet")
	t.Setenv("NEAR_MPC_CONTRACT_ID", "v1.signer-dev.testnet")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "v1.signer-dev.testnet", cfg.Near.ContractID)
}

func TestNearNetworkIDs(t *testing.T) {
	assert.Equal(t, []string{"mainnet", "testnet"}, config.NearNetworkIDs())

	network, ok := config.LookupNearNetwork("testnet")
	require.True(t, ok)
	assert.Equal(t, "v1.signer-prod.testnet", network.MPCContractID)

	_, ok = config.LookupNearNetwork("betanet")
	assert.False(t, ok)
}

func TestEVMDefaults(t *testing.T) {
	t.Setenv("EVM_CHAIN_ID", "11155111")
	t.Setenv("EVM_RPC_URL", "")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, int64(11155111), cfg.EVM.ChainID)
	assert.Equal(t, []string{"https://ethereum-sepolia-rpc.publicnode.com"}, cfg.EVM.RPCURLs)
	assert.Equal(t, "ethereum-1", cfg.EVM.DerivationPath)
}

func TestEVMRPCURLList(t *testing.T) {
	t.Setenv("EVM_RPC_URL", "http://127.0.0.1:8545, http://127.0.0.1:8546")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, []string{"http://127.0.0.1:8545", "http://127.0.0.1:8546"}, cfg.EVM.RPCURLs)
}

func TestDotEnvLoad(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte("TEST_DOTENV_NEW=from-file\nTEST_DOTENV_EXISTING=from-file\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("TEST_DOTENV_EXISTING", "from-env")

	set := map[string]string{}
	err = config.DotEnvLoad(envFile, func(k string, v string) error {
		set[k] = v
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"TEST_DOTENV_NEW": "from-file"}, set)
}

func TestDotEnvTryLoadMissingFile(t *testing.T) {
	called := false
	config.DotEnvTryLoad(filepath.Join(t.TempDir(), "missing.env"), func(string, string) error {
		called = true
		return nil
	})

	assert.False(t, called)
}
