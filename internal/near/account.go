package near

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RPC is the subset of Client an Account needs.
type RPC interface {
	CallFunction(ctx context.Context, accountID string, methodName string, args any) ([]byte, error)
	ViewAccessKey(ctx context.Context, accountID string, publicKey PublicKey) (*AccessKeyView, error)
	BroadcastTxCommit(ctx context.Context, signedTx []byte) (*FinalExecutionOutcome, error)
}

// Account submits function call transactions on behalf of a NEAR account.
type Account struct {
	rpc       RPC
	accountID string
	key       *KeyPair
}

func NewAccount(rpc RPC, accountID string, key *KeyPair) (*Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, errors.New("account id is required")
	}
	if key == nil {
		return nil, errors.New("key pair is required")
	}

	return &Account{
		rpc:       rpc,
		accountID: accountID,
		key:       key,
	}, nil
}

func (a *Account) AccountID() string {
	return a.accountID
}

func (a *Account) PublicKey() PublicKey {
	return a.key.PublicKey()
}

// ViewFunction calls a view method through the account's RPC.
func (a *Account) ViewFunction(ctx context.Context, contractID string, methodName string, args any) ([]byte, error) {
	return a.rpc.CallFunction(ctx, contractID, methodName, args)
}

// FunctionCall signs and broadcasts a single function call and returns the
// decoded return value of the call once the transaction is final.
func (a *Account) FunctionCall(ctx context.Context, receiverID string, methodName string, args any, gas uint64, deposit *big.Int) ([]byte, *FinalExecutionOutcome, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode function call args")
	}

	signed, txHash, err := a.signFunctionCall(ctx, receiverID, FunctionCall{
		MethodName: methodName,
		Args:       argsJSON,
		Gas:        gas,
		Deposit:    deposit,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Ctx(ctx).Debug().
		Str("signer_id", a.accountID).
		Str("receiver_id", receiverID).
		Str("method", methodName).
		Str("tx_hash", base58.Encode(txHash[:])).
		Msg("Broadcasting NEAR function call")

	outcome, err := a.rpc.BroadcastTxCommit(ctx, signed)
	if err != nil {
		return nil, nil, err
	}

	value, err := outcome.SuccessValue()
	if err != nil {
		return nil, outcome, errors.Wrapf(err, "function call %s.%s failed", receiverID, methodName)
	}

	return value, outcome, nil
}

func (a *Account) signFunctionCall(ctx context.Context, receiverID string, action FunctionCall) ([]byte, [32]byte, error) {
	accessKey, err := a.rpc.ViewAccessKey(ctx, a.accountID, a.key.PublicKey())
	if err != nil {
		return nil, [32]byte{}, err
	}

	rawBlockHash, err := base58.Decode(accessKey.BlockHash)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(err, "failed to decode block hash")
	}
	if len(rawBlockHash) != 32 {
		return nil, [32]byte{}, errors.Errorf("invalid block hash length %d", len(rawBlockHash))
	}

	tx := &Transaction{
		SignerID:   a.accountID,
		PublicKey:  a.key.PublicKey(),
		Nonce:      accessKey.Nonce + 1,
		ReceiverID: receiverID,
		Actions:    []FunctionCall{action},
	}
	copy(tx.BlockHash[:], rawBlockHash)

	return SignTransaction(tx, a.key)
}
