package chainsig

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signature is an ECDSA secp256k1 signature in Ethereum form.
type Signature struct {
	R *big.Int
	S *big.Int
	// V is the recovery id, 0 or 1.
	V uint8
}

// Bytes returns the 65 byte [R || S || V] form expected by go-ethereum signers.
func (s *Signature) Bytes() []byte {
	out := make([]byte, crypto.SignatureLength)
	s.R.FillBytes(out[:32])
	s.S.FillBytes(out[32:64])
	out[64] = s.V

	return out
}

// mpcSignature is the return value of the signer contract's sign method.
type mpcSignature struct {
	BigR struct {
		AffinePoint string `json:"affine_point"`
	} `json:"big_r"`
	S struct {
		Scalar string `json:"scalar"`
	} `json:"s"`
	RecoveryID uint8 `json:"recovery_id"`
}

// ParseMPCSignature converts the signer contract response into an Ethereum signature.
// big_r is a compressed curve point, its x coordinate is r.
func ParseMPCSignature(raw []byte) (*Signature, error) {
	var sig mpcSignature
	if err := json.Unmarshal(raw, &sig); err != nil {
		return nil, errors.Wrap(err, "failed to decode MPC signature")
	}

	bigR, err := decodeHex(sig.BigR.AffinePoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid big_r")
	}
	if len(bigR) != 33 {
		return nil, errors.Errorf("invalid big_r length %d", len(bigR))
	}

	s, err := decodeHex(sig.S.Scalar)
	if err != nil {
		return nil, errors.Wrap(err, "invalid s")
	}
	if len(s) == 0 || len(s) > 32 {
		return nil, errors.Errorf("invalid s length %d", len(s))
	}

	if sig.RecoveryID > 1 {
		return nil, errors.Errorf("invalid recovery id %d", sig.RecoveryID)
	}

	return &Signature{
		R: new(big.Int).SetBytes(bigR[1:]),
		S: new(big.Int).SetBytes(s),
		V: sig.RecoveryID,
	}, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}
