package chainsig_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/test/fakenear"
)

func TestParseMPCSignatureRecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	hash := crypto.Keccak256([]byte("payload"))
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)

	raw, err := json.Marshal(fakenear.SignatureResponse(sig))
	require.NoError(t, err)

	parsed, err := chainsig.ParseMPCSignature(raw)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed.Bytes())

	pub, err := crypto.SigToPub(hash, parsed.Bytes())
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pub))
}

func TestParseMPCSignatureUppercaseHex(t *testing.T) {
	raw := []byte(`{
		"big_r": {"affine_point": "03AC6BE5D2E6E9F2A0BCE8B4D2E7A3F1C0D2E4F6A8B0C2D4E6F8A0B2C4D6E8F0A2"},
		"s": {"scalar": "0x0F"},
		"recovery_id": 1
	}`)

	sig, err := chainsig.ParseMPCSignature(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), sig.V)
	assert.Equal(t, int64(15), sig.S.Int64())

	out := sig.Bytes()
	require.Len(t, out, 65)
	assert.Equal(t, byte(0xAC), out[0])
	assert.Equal(t, byte(0x0F), out[63])
	assert.Equal(t, byte(1), out[64])
}

func TestParseMPCSignatureInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":         `nope`,
		"short big_r":      `{"big_r":{"affine_point":"02aa"},"s":{"scalar":"01"},"recovery_id":0}`,
		"bad s":            `{"big_r":{"affine_point":"02` + strings.Repeat("aa", 32) + `"},"s":{"scalar":"zz"},"recovery_id":0}`,
		"empty s":          `{"big_r":{"affine_point":"02` + strings.Repeat("aa", 32) + `"},"s":{"scalar":""},"recovery_id":0}`,
		"bad recovery id":  `{"big_r":{"affine_point":"02` + strings.Repeat("aa", 32) + `"},"s":{"scalar":"01"},"recovery_id":4}`,
		"oversized scalar": `{"big_r":{"affine_point":"02` + strings.Repeat("aa", 32) + `"},"s":{"scalar":"` + strings.Repeat("aa", 33) + `"},"recovery_id":0}`,
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := chainsig.ParseMPCSignature([]byte(in))
			require.Error(t, err)
		})
	}
}
