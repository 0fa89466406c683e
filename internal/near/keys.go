package near

import (
	"crypto/ed25519"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	ed25519Prefix = "ed25519:"

	keyTypeED25519 uint8 = 0
)

// PublicKey is an ed25519 NEAR public key.
type PublicKey struct {
	Data [ed25519.PublicKeySize]byte
}

// String renders the key the way NEAR RPC expects it ("ed25519:<base58>").
func (k PublicKey) String() string {
	return ed25519Prefix + base58.Encode(k.Data[:])
}

// KeyPair signs NEAR transactions for a single access key.
type KeyPair struct {
	privateKey ed25519.PrivateKey
}

// ParseKeyPair parses a NEAR secret key in the "ed25519:<base58>" format.
// Both the 64 byte expanded form written by near-cli and a bare 32 byte seed are accepted.
func ParseKeyPair(encoded string) (*KeyPair, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("empty private key")
	}

	if !strings.HasPrefix(encoded, ed25519Prefix) {
		return nil, errors.New("unsupported key type, expected ed25519 key")
	}

	raw, err := base58.Decode(strings.TrimPrefix(encoded, ed25519Prefix))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode private key")
	}

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return &KeyPair{privateKey: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return &KeyPair{privateKey: ed25519.NewKeyFromSeed(raw)}, nil
	default:
		return nil, errors.Errorf("invalid private key length %d", len(raw))
	}
}

// NewKeyPair wraps an existing ed25519 private key.
func NewKeyPair(privateKey ed25519.PrivateKey) *KeyPair {
	return &KeyPair{privateKey: privateKey}
}

func (k *KeyPair) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk.Data[:], k.privateKey.Public().(ed25519.PublicKey))

	return pk
}

func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.privateKey, message)
}

// String renders the secret key in the "ed25519:<base58>" format.
func (k *KeyPair) String() string {
	return ed25519Prefix + base58.Encode(k.privateKey)
}
