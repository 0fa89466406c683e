package executor

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/util"
)

// EVMTransactionParams are the per-request inputs of ExecuteEVMTransaction.
type EVMTransactionParams struct {
	Contract      chainsig.Contract
	EVM           *evm.Adapter
	PredecessorID string
}

// Executor submits the configured EVM transaction signed through the MPC contract.
type Executor struct {
	cfg        config.EVM
	keyVersion uint32
}

func New(cfg config.Server) *Executor {
	return &Executor{
		cfg:        cfg.EVM,
		keyVersion: cfg.Near.KeyVersion,
	}
}

// ExecuteEVMTransaction derives the sender for PredecessorID, builds the
// transaction, has the MPC network sign it and broadcasts it. It returns the
// transaction hash.
func (e *Executor) ExecuteEVMTransaction(ctx context.Context, params EVMTransactionParams) (string, error) {
	log := util.LogFromContext(ctx)

	err := vala.BeginValidation().Validate(
		vala.IsNotNil(params.Contract, "Contract"),
		vala.StringNotEmpty(params.PredecessorID, "PredecessorID"),
		vala.StringNotEmpty(e.cfg.DerivationPath, "DerivationPath"),
	).Check()
	if err != nil {
		return "", errors.Wrap(err, "invalid EVM transaction params")
	}
	if params.EVM == nil {
		return "", errors.New("invalid EVM transaction params: EVM adapter is nil")
	}

	path := e.cfg.DerivationPath

	from, _, err := params.EVM.DeriveAddressAndPublicKey(ctx, params.PredecessorID, path)
	if err != nil {
		return "", err
	}

	req, err := e.transactionRequest(from)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("predecessor", params.PredecessorID).
		Str("path", path).
		Str("from", from.Hex()).
		Str("to", req.To.Hex()).
		Str("value_wei", req.Value.String()).
		Msg("Executing EVM transaction")

	unsigned, payload, err := params.EVM.PrepareTransactionForSigning(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "failed to prepare EVM transaction")
	}

	sig, err := params.Contract.Sign(ctx, chainsig.SignRequest{
		Payload:    payload,
		Path:       path,
		KeyVersion: e.keyVersion,
	})
	if err != nil {
		return "", err
	}

	signed, err := params.EVM.FinalizeTransactionSigning(unsigned, sig)
	if err != nil {
		return "", err
	}

	txHash, err := params.EVM.BroadcastTx(ctx, signed)
	if err != nil {
		return "", errors.Wrap(err, "failed to broadcast EVM transaction")
	}

	log.Info().Str("tx_hash", txHash).Str("from", from.Hex()).Msg("EVM transaction broadcast")

	return txHash, nil
}

// transactionRequest builds the request from config. An empty recipient sends to from.
func (e *Executor) transactionRequest(from common.Address) (evm.TransactionRequest, error) {
	to := from
	if raw := strings.TrimSpace(e.cfg.ToAddress); raw != "" {
		if !common.IsHexAddress(raw) {
			return evm.TransactionRequest{}, errors.Errorf("invalid EVM_TO_ADDRESS %q", raw)
		}
		to = common.HexToAddress(raw)
	}

	value := new(big.Int)
	if raw := strings.TrimSpace(e.cfg.ValueWei); raw != "" {
		if _, ok := value.SetString(raw, 10); !ok || value.Sign() < 0 {
			return evm.TransactionRequest{}, errors.Errorf("invalid EVM_VALUE_WEI %q", raw)
		}
	}

	var data []byte
	if raw := strings.TrimSpace(e.cfg.Data); raw != "" {
		decoded, err := hexutil.Decode(raw)
		if err != nil {
			return evm.TransactionRequest{}, errors.Wrapf(err, "invalid EVM_DATA %q", raw)
		}
		data = decoded
	}

	return evm.TransactionRequest{
		From:     from,
		To:       &to,
		Value:    value,
		Data:     data,
		GasLimit: e.cfg.GasLimit,
	}, nil
}
