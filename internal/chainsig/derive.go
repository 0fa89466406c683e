package chainsig

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	// EpsilonDerivationPrefix is the domain separator used by the MPC network
	// when tweaking the root key for a (predecessor, path) pair.
	EpsilonDerivationPrefix = "near-mpc-recovery v0.1.0 epsilon derivation:"

	secp256k1Prefix = "secp256k1:"
)

// DeriveEpsilon returns the additive tweak for predecessor and path.
func DeriveEpsilon(predecessor string, path string) *big.Int {
	h := sha3.New256()
	h.Write([]byte(EpsilonDerivationPrefix + predecessor + "," + path))

	return new(big.Int).SetBytes(h.Sum(nil))
}

// DeriveChildPublicKey computes root + epsilon*G.
func DeriveChildPublicKey(root *ecdsa.PublicKey, predecessor string, path string) (*ecdsa.PublicKey, error) {
	if root == nil || root.X == nil || root.Y == nil {
		return nil, errors.New("root public key is required")
	}

	curve := crypto.S256()
	if !curve.IsOnCurve(root.X, root.Y) {
		return nil, errors.New("root public key is not on secp256k1")
	}

	epsilon := DeriveEpsilon(predecessor, path)
	epsilon.Mod(epsilon, curve.Params().N)

	ex, ey := curve.ScalarBaseMult(epsilon.Bytes())
	x, y := curve.Add(root.X, root.Y, ex, ey)

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// ParsePublicKey parses a key in the "secp256k1:<base58>" format returned by the
// signer contract. The payload may be the 64 byte X||Y form, the 65 byte
// uncompressed form or the 33 byte compressed form.
func ParsePublicKey(encoded string) (*ecdsa.PublicKey, error) {
	encoded = strings.TrimSpace(encoded)
	if !strings.HasPrefix(encoded, secp256k1Prefix) {
		return nil, errors.Errorf("unsupported public key %q, expected secp256k1 key", encoded)
	}

	raw, err := base58.Decode(strings.TrimPrefix(encoded, secp256k1Prefix))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode public key")
	}

	switch len(raw) {
	case 64:
		raw = append([]byte{0x04}, raw...)
	case 65:
	case 33:
		pub, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid compressed public key")
		}
		return pub, nil
	default:
		return nil, errors.Errorf("invalid public key length %d", len(raw))
	}

	pub, err := crypto.UnmarshalPubkey(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid public key")
	}

	return pub, nil
}

// FormatPublicKey renders pub in the "secp256k1:<base58 X||Y>" format.
func FormatPublicKey(pub *ecdsa.PublicKey) string {
	return secp256k1Prefix + base58.Encode(crypto.FromECDSAPub(pub)[1:])
}
