package fakenear

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/chainsig-relay/internal/chainsig"
)

// MPC emulates the chain signature contract on top of a fake RPC. Signatures
// are produced locally with the derived private keys.
type MPC struct {
	ContractID string
	RootKey    *ecdsa.PrivateKey
	Deposit    string

	signCount atomic.Int64
	failSign  atomic.Value
}

// NewMPC registers the signer contract methods for contractID on rpc.
func NewMPC(t *testing.T, rpc *Server, contractID string) *MPC {
	t.Helper()

	root, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate MPC root key: %v", err)
	}

	m := &MPC{
		ContractID: contractID,
		RootKey:    root,
		Deposit:    "1",
	}

	rpc.HandleView(contractID, "public_key", func(json.RawMessage) (any, error) {
		return chainsig.FormatPublicKey(&m.RootKey.PublicKey), nil
	})

	rpc.HandleView(contractID, "derived_public_key", func(args json.RawMessage) (any, error) {
		var in struct {
			Path        string `json:"path"`
			Predecessor string `json:"predecessor"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}

		key := m.DerivedPrivateKey(in.Predecessor, in.Path)
		return chainsig.FormatPublicKey(&key.PublicKey), nil
	})

	rpc.HandleView(contractID, "experimental_signature_deposit", func(json.RawMessage) (any, error) {
		return m.Deposit, nil
	})

	rpc.HandleCall(contractID, "sign", m.sign)

	return m
}

// FailSign makes every following sign call fail with msg.
func (m *MPC) FailSign(msg string) {
	m.failSign.Store(msg)
}

// SignCount returns the number of sign calls served.
func (m *MPC) SignCount() int64 {
	return m.signCount.Load()
}

// DerivedPrivateKey returns (root + epsilon) mod N for predecessor and path.
func (m *MPC) DerivedPrivateKey(predecessor string, path string) *ecdsa.PrivateKey {
	n := crypto.S256().Params().N

	d := chainsig.DeriveEpsilon(predecessor, path)
	d.Add(d, m.RootKey.D)
	d.Mod(d, n)

	key, err := crypto.ToECDSA(d.FillBytes(make([]byte, 32)))
	if err != nil {
		panic(err)
	}

	return key
}

func (m *MPC) sign(call Call) (any, error) {
	m.signCount.Add(1)

	if msg, ok := m.failSign.Load().(string); ok && msg != "" {
		return nil, errors.New(msg)
	}

	var in struct {
		Request struct {
			Payload    []int  `json:"payload"`
			Path       string `json:"path"`
			KeyVersion uint32 `json:"key_version"`
		} `json:"request"`
	}
	if err := json.Unmarshal(call.Args, &in); err != nil {
		return nil, err
	}
	if len(in.Request.Payload) != 32 {
		return nil, errors.New("payload must be 32 bytes")
	}

	deposit, _ := new(big.Int).SetString(m.Deposit, 10)
	if call.Deposit.Cmp(deposit) < 0 {
		return nil, errors.New("attached deposit is lower than required")
	}

	payload := make([]byte, 32)
	for i, v := range in.Request.Payload {
		payload[i] = byte(v)
	}

	key := m.DerivedPrivateKey(call.SignerID, in.Request.Path)
	sig, err := crypto.Sign(payload, key)
	if err != nil {
		return nil, err
	}

	return SignatureResponse(sig), nil
}

// SignatureResponse renders a 65 byte [R || S || V] signature the way the
// signer contract returns it.
func SignatureResponse(sig []byte) map[string]any {
	// the parity prefix of big_r is not used by the relay
	return map[string]any{
		"big_r":       map[string]string{"affine_point": "02" + hex.EncodeToString(sig[:32])},
		"s":           map[string]string{"scalar": hex.EncodeToString(sig[32:64])},
		"recovery_id": sig[64],
	}
}
