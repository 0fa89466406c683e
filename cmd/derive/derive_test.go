package derive_test

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/cmd/derive"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/test"
	"github/chapool/chainsig-relay/internal/test/simchain"
)

func TestRun(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		var out bytes.Buffer
		require.NoError(t, derive.Run(t.Context(), s, &out, true))

		key := relay.MPC.DerivedPrivateKey(test.RelayAccountID, s.Config.EVM.DerivationPath)

		assert.Contains(t, out.String(), "predecessor: "+test.RelayAccountID+"\n")
		assert.Contains(t, out.String(), "address:     "+relay.Sender.Hex()+"\n")
		assert.Contains(t, out.String(), "public key:  "+hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey))+"\n")
		assert.Contains(t, out.String(), "balance:     "+simchain.DefaultBalance().String()+" wei\n")
	})
}

func TestRunWithoutBalance(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		var out bytes.Buffer
		require.NoError(t, derive.Run(t.Context(), s, &out, false))

		assert.Contains(t, out.String(), relay.Sender.Hex())
		assert.NotContains(t, out.String(), "balance:")
	})
}

func TestRunMissingAccount(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, _ *test.Relay) {
		cfg := s.Config
		cfg.Near.AccountID = ""
		s.Contracts = chainsig.NewInitializer(cfg)

		var out bytes.Buffer
		err := derive.Run(t.Context(), s, &out, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NEAR_ACCOUNT_ID is not set")
		assert.Empty(t, out.String())
	})
}
