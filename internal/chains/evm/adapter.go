package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/util"
)

// Name is the registry key of the EVM adapter.
const Name = "evm"

// Options configures an Adapter.
type Options struct {
	// ChainID is used as-is when > 0, otherwise it is queried from the backend.
	ChainID int64
	// GasMultiplier scales gas estimates.
	GasMultiplier float64
}

// Adapter builds, signs through the MPC contract and submits EVM transactions.
type Adapter struct {
	backend       Backend
	contract      chainsig.Contract
	chainID       *big.Int
	gasMultiplier float64
}

// TransactionRequest describes the transaction to build. GasLimit 0 means estimate.
type TransactionRequest struct {
	From     common.Address
	To       *common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

// UnsignedTransaction is a prepared transaction waiting for its signature.
type UnsignedTransaction struct {
	Tx     *types.Transaction
	Signer types.Signer
	From   common.Address
}

func NewAdapter(backend Backend, contract chainsig.Contract, opts Options) (*Adapter, error) {
	if backend == nil {
		return nil, errors.New("EVM backend is required")
	}
	if contract == nil {
		return nil, errors.New("chain signature contract is required")
	}

	a := &Adapter{
		backend:       backend,
		contract:      contract,
		gasMultiplier: opts.GasMultiplier,
	}
	if opts.ChainID > 0 {
		a.chainID = big.NewInt(opts.ChainID)
	}

	return a, nil
}

func (a *Adapter) Name() string {
	return Name
}

// Close releases the backend connections if the backend owns any.
func (a *Adapter) Close() {
	if closer, ok := a.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

// ChainID returns the configured chain id or asks the backend for it.
func (a *Adapter) ChainID(ctx context.Context) (*big.Int, error) {
	if a.chainID != nil {
		return new(big.Int).Set(a.chainID), nil
	}

	chainID, err := a.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	a.chainID = chainID

	return new(big.Int).Set(chainID), nil
}

// DeriveAddressAndPublicKey returns the EVM address controlled by predecessor for path.
func (a *Adapter) DeriveAddressAndPublicKey(ctx context.Context, predecessor string, path string) (common.Address, *ecdsa.PublicKey, error) {
	pub, err := a.contract.DerivedPublicKey(ctx, path, predecessor)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "failed to derive public key")
	}

	return crypto.PubkeyToAddress(*pub), pub, nil
}

func (a *Adapter) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	return a.backend.BalanceAt(ctx, address, nil)
}

// PrepareTransactionForSigning builds an EIP-1559 transaction for req and returns
// it together with the hash the MPC network has to sign.
func (a *Adapter) PrepareTransactionForSigning(ctx context.Context, req TransactionRequest) (*UnsignedTransaction, [32]byte, error) {
	log := util.LogFromContext(ctx)

	chainID, err := a.ChainID(ctx)
	if err != nil {
		return nil, [32]byte{}, err
	}

	nonce, err := a.backend.PendingNonceAt(ctx, req.From)
	if err != nil {
		return nil, [32]byte{}, err
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gas := req.GasLimit
	if gas == 0 {
		estimate, err := a.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  req.From,
			To:    req.To,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			return nil, [32]byte{}, err
		}

		gas, err = applyGasMultiplier(estimate, a.gasMultiplier)
		if err != nil {
			return nil, [32]byte{}, err
		}
	}

	fee, err := suggestFees(ctx, a.backend)
	if err != nil {
		return nil, [32]byte{}, err
	}

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: fee.TipCap,
		GasFeeCap: fee.FeeCap,
		Gas:       gas,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	})

	signer := types.LatestSignerForChainID(chainID)
	hash := signer.Hash(tx)

	log.Debug().
		Str("chain_id", chainID.String()).
		Str("from", req.From.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Str("max_fee_per_gas", fee.FeeCap.String()).
		Str("max_priority_fee_per_gas", fee.TipCap.String()).
		Msg("Prepared EVM transaction for signing")

	return &UnsignedTransaction{Tx: tx, Signer: signer, From: req.From}, hash, nil
}

// FinalizeTransactionSigning attaches sig and checks that it recovers to the expected sender.
func (a *Adapter) FinalizeTransactionSigning(unsigned *UnsignedTransaction, sig *chainsig.Signature) (*types.Transaction, error) {
	if unsigned == nil || sig == nil {
		return nil, errors.New("unsigned transaction and signature are required")
	}

	signed, err := unsigned.Tx.WithSignature(unsigned.Signer, sig.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach signature")
	}

	sender, err := types.Sender(unsigned.Signer, signed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recover transaction sender")
	}

	if sender != unsigned.From {
		return nil, errors.Errorf("signature recovers to %s, expected %s", sender.Hex(), unsigned.From.Hex())
	}

	return signed, nil
}

// BroadcastTx submits tx and returns its hash.
func (a *Adapter) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, error) {
	if err := a.backend.SendTransaction(ctx, tx); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}
