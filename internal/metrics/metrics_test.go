package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/metrics"
)

func TestObserveEVMTransaction(t *testing.T) {
	m, err := metrics.New(config.DefaultServiceConfigFromEnv())
	require.NoError(t, err)

	m.ObserveEVMTransaction(nil, 2*time.Second)
	m.ObserveEVMTransaction(nil, time.Second)
	m.ObserveEVMTransaction(errors.New("nonce too low"), 500*time.Millisecond)

	count, err := testutil.GatherAndCount(m.Registry, "chainsig_relay_evm_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "chainsig_relay_evm_transactions_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" {
					values[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}

	assert.Equal(t, map[string]float64{metrics.ResultSuccess: 2, metrics.ResultFailure: 1}, values)
}

func TestNewIsolatedRegistries(t *testing.T) {
	a, err := metrics.New(config.DefaultServiceConfigFromEnv())
	require.NoError(t, err)
	b, err := metrics.New(config.DefaultServiceConfigFromEnv())
	require.NoError(t, err)

	a.ObserveEVMTransaction(nil, time.Second)

	count, err := testutil.GatherAndCount(b.Registry, "chainsig_relay_evm_transactions_total")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = testutil.GatherAndCount(a.Registry, "chainsig_relay_build_info")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
