package chainsig

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/near"
	"github/chapool/chainsig-relay/internal/util"
)

// Caller is the NEAR account a contract submits sign requests from.
type Caller interface {
	AccountID() string
	ViewFunction(ctx context.Context, contractID string, methodName string, args any) ([]byte, error)
	FunctionCall(ctx context.Context, receiverID string, methodName string, args any, gas uint64, deposit *big.Int) ([]byte, error)
}

type nearContract struct {
	caller     Caller
	contractID string

	derivationMode string
	signGas        uint64
	deposit        *big.Int
}

// Options configures a contract handle.
type Options struct {
	ContractID     string
	DerivationMode string
	SignGas        uint64
	// SignDeposit is used when the contract does not report a signature deposit.
	SignDeposit *big.Int
}

//nolint:ireturn
func NewContract(caller Caller, opts Options) (Contract, error) {
	if caller == nil {
		return nil, errors.New("caller is required")
	}
	if opts.ContractID == "" {
		return nil, errors.New("contract id is required")
	}

	switch opts.DerivationMode {
	case "":
		opts.DerivationMode = config.DerivationModeLocal
	case config.DerivationModeLocal, config.DerivationModeContract:
	default:
		return nil, errors.Errorf("unknown derivation mode %q", opts.DerivationMode)
	}

	if opts.SignGas == 0 {
		return nil, errors.New("sign gas must be greater than zero")
	}

	deposit := opts.SignDeposit
	if deposit == nil {
		deposit = big.NewInt(1)
	}

	return &nearContract{
		caller:         caller,
		contractID:     opts.ContractID,
		derivationMode: opts.DerivationMode,
		signGas:        opts.SignGas,
		deposit:        deposit,
	}, nil
}

func (c *nearContract) ContractID() string {
	return c.contractID
}

func (c *nearContract) view(ctx context.Context, method string, args any, out any) error {
	raw, err := c.caller.ViewFunction(ctx, c.contractID, method, args)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s result", method)
	}

	return nil
}

func (c *nearContract) PublicKey(ctx context.Context) (*ecdsa.PublicKey, error) {
	var encoded string
	if err := c.view(ctx, "public_key", struct{}{}, &encoded); err != nil {
		return nil, errors.Wrap(err, "failed to fetch MPC public key")
	}

	return ParsePublicKey(encoded)
}

func (c *nearContract) DerivedPublicKey(ctx context.Context, path string, predecessor string) (*ecdsa.PublicKey, error) {
	if c.derivationMode == config.DerivationModeContract {
		var encoded string
		err := c.view(ctx, "derived_public_key", map[string]string{
			"path":        path,
			"predecessor": predecessor,
		}, &encoded)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch derived public key")
		}

		return ParsePublicKey(encoded)
	}

	root, err := c.PublicKey(ctx)
	if err != nil {
		return nil, err
	}

	return DeriveChildPublicKey(root, predecessor, path)
}

func (c *nearContract) SignatureDeposit(ctx context.Context) (*big.Int, error) {
	var raw json.RawMessage
	if err := c.view(ctx, "experimental_signature_deposit", struct{}{}, &raw); err != nil {
		if !near.IsMethodNotFound(err) {
			return nil, errors.Wrap(err, "failed to fetch signature deposit")
		}

		util.LogFromContext(ctx).Debug().Err(err).Str("deposit", c.deposit.String()).Msg("Contract has no signature deposit view, using configured deposit")
		return new(big.Int).Set(c.deposit), nil
	}

	// the deposit is a yoctoNEAR amount, rendered as a string or a number
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		str = string(raw)
	}

	deposit, ok := new(big.Int).SetString(str, 10)
	if !ok || deposit.Sign() < 0 {
		return nil, errors.Errorf("invalid signature deposit %s", string(raw))
	}

	if deposit.Cmp(c.deposit) < 0 {
		return new(big.Int).Set(c.deposit), nil
	}

	return deposit, nil
}

type signArgs struct {
	Request signArgsRequest `json:"request"`
}

type signArgsRequest struct {
	Payload    []int  `json:"payload"`
	Path       string `json:"path"`
	KeyVersion uint32 `json:"key_version"`
}

func (c *nearContract) Sign(ctx context.Context, req SignRequest) (*Signature, error) {
	log := util.LogFromContext(ctx)

	deposit, err := c.SignatureDeposit(ctx)
	if err != nil {
		return nil, err
	}

	payload := make([]int, len(req.Payload))
	for i, b := range req.Payload {
		payload[i] = int(b)
	}

	log.Debug().
		Str("contract_id", c.contractID).
		Str("predecessor", c.caller.AccountID()).
		Str("path", req.Path).
		Uint32("key_version", req.KeyVersion).
		Str("deposit", deposit.String()).
		Msg("Requesting MPC signature")

	raw, err := c.caller.FunctionCall(ctx, c.contractID, "sign", signArgs{
		Request: signArgsRequest{
			Payload:    payload,
			Path:       req.Path,
			KeyVersion: req.KeyVersion,
		},
	}, c.signGas, deposit)
	if err != nil {
		return nil, errors.Wrap(err, "MPC sign request failed")
	}

	sig, err := ParseMPCSignature(raw)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("contract_id", c.contractID).Msg("Received MPC signature")

	return sig, nil
}
