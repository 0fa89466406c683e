package near

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math/big"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

const u128Bits = 128

// FunctionCall invokes a contract method.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *big.Int
}

// Transaction is an unsigned NEAR transaction carrying function call actions.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []FunctionCall
}

// borsh layouts of nearcore's transaction types

type wirePublicKey struct {
	KeyType uint8
	Data    [32]byte
}

type wireSignature struct {
	KeyType uint8
	Data    [ed25519.SignatureSize]byte
}

type wireCreateAccount struct{}

type wireDeployContract struct {
	Code []byte
}

type wireFunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    big.Int
}

// wireAction is the Action enum up to its FunctionCall variant (index 2).
type wireAction struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  wireCreateAccount
	DeployContract wireDeployContract
	FunctionCall   wireFunctionCall
}

const actionFunctionCall borsh.Enum = 2

type wireTransaction struct {
	SignerID   string
	PublicKey  wirePublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []wireAction
}

type wireSignedTransaction struct {
	Transaction wireTransaction
	Signature   wireSignature
}

func (tx *Transaction) wire() (wireTransaction, error) {
	out := wireTransaction{
		SignerID:   tx.SignerID,
		PublicKey:  wirePublicKey{KeyType: keyTypeED25519, Data: tx.PublicKey.Data},
		Nonce:      tx.Nonce,
		ReceiverID: tx.ReceiverID,
		BlockHash:  tx.BlockHash,
		Actions:    make([]wireAction, len(tx.Actions)),
	}

	for i, action := range tx.Actions {
		fc := wireFunctionCall{
			MethodName: action.MethodName,
			Args:       action.Args,
			Gas:        action.Gas,
		}
		if action.Deposit != nil {
			if action.Deposit.Sign() < 0 || action.Deposit.BitLen() > u128Bits {
				return wireTransaction{}, errors.Errorf("invalid deposit of action %d: %s does not fit into u128", i, action.Deposit)
			}
			fc.Deposit.Set(action.Deposit)
		}

		out.Actions[i] = wireAction{Enum: actionFunctionCall, FunctionCall: fc}
	}

	return out, nil
}

// MarshalBorsh returns the borsh serialization of the transaction.
func (tx *Transaction) MarshalBorsh() ([]byte, error) {
	w, err := tx.wire()
	if err != nil {
		return nil, err
	}

	encoded, err := borsh.Serialize(w)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize transaction")
	}

	return encoded, nil
}

// Hash is the sha256 of the borsh encoded transaction, which is also what gets signed.
func (tx *Transaction) Hash() ([32]byte, error) {
	encoded, err := tx.MarshalBorsh()
	if err != nil {
		return [32]byte{}, err
	}

	return sha256.Sum256(encoded), nil
}

// SignTransaction signs tx with key and returns the borsh encoded SignedTransaction
// together with the transaction hash.
func SignTransaction(tx *Transaction, key *KeyPair) ([]byte, [32]byte, error) {
	w, err := tx.wire()
	if err != nil {
		return nil, [32]byte{}, err
	}

	encoded, err := borsh.Serialize(w)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(err, "failed to serialize transaction")
	}

	hash := sha256.Sum256(encoded)

	signed := wireSignedTransaction{
		Transaction: w,
		Signature:   wireSignature{KeyType: keyTypeED25519},
	}
	copy(signed.Signature.Data[:], key.Sign(hash[:]))

	out, err := borsh.Serialize(signed)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(err, "failed to serialize signed transaction")
	}

	return out, hash, nil
}
