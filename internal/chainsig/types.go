package chainsig

import (
	"context"
	"crypto/ecdsa"
	"math/big"
)

// Contract is a handle on the MPC signer contract.
type Contract interface {
	// ContractID is the NEAR account the signer contract is deployed to.
	ContractID() string
	// PublicKey returns the root key of the MPC network.
	PublicKey(ctx context.Context) (*ecdsa.PublicKey, error)
	// DerivedPublicKey returns the key controlled by predecessor for path.
	DerivedPublicKey(ctx context.Context, path string, predecessor string) (*ecdsa.PublicKey, error)
	// SignatureDeposit returns the deposit attached to sign requests.
	SignatureDeposit(ctx context.Context) (*big.Int, error)
	// Sign requests a signature over a 32 byte payload.
	Sign(ctx context.Context, req SignRequest) (*Signature, error)
}

// SignRequest is a request to sign Payload with the key derived for Path.
type SignRequest struct {
	Payload    [32]byte
	Path       string
	KeyVersion uint32
}
