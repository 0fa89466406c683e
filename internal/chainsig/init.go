package chainsig

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/config"
	"github/chapool/chainsig-relay/internal/near"
	"github/chapool/chainsig-relay/internal/util"
)

// Initializer builds contract handles from the NEAR configuration.
type Initializer struct {
	cfg config.Near
}

func NewInitializer(cfg config.Server) *Initializer {
	return &Initializer{cfg: cfg.Near}
}

// InitContract returns a handle on the configured signer contract.
// It does not perform any network round trip.
//
//nolint:ireturn
func (i *Initializer) InitContract(ctx context.Context) (Contract, error) {
	cfg := i.cfg

	if strings.TrimSpace(cfg.AccountID) == "" {
		return nil, errors.New("NEAR_ACCOUNT_ID is not set")
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, errors.New("NEAR_PRIVATE_KEY is not set")
	}

	key, err := near.ParseKeyPair(cfg.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid NEAR_PRIVATE_KEY")
	}

	client, err := near.NewClient(cfg.RPCURL, near.WithTimeout(cfg.RPCTimeout))
	if err != nil {
		return nil, err
	}

	account, err := near.NewAccount(client, cfg.AccountID, key)
	if err != nil {
		return nil, err
	}

	deposit, ok := new(big.Int).SetString(strings.TrimSpace(cfg.SignDeposit), 10)
	if !ok || deposit.Sign() < 0 {
		return nil, errors.Errorf("invalid NEAR_SIGN_DEPOSIT %q", cfg.SignDeposit)
	}

	contract, err := NewContract(accountCaller{account}, Options{
		ContractID:     cfg.ContractID,
		DerivationMode: cfg.DerivationMode,
		SignGas:        cfg.SignGas,
		SignDeposit:    deposit,
	})
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("network_id", cfg.NetworkID).
		Str("rpc_url", client.URL()).
		Str("account_id", account.AccountID()).
		Str("contract_id", contract.ContractID()).
		Msg("Initialized chain signature contract")

	return contract, nil
}

type accountCaller struct {
	*near.Account
}

func (a accountCaller) FunctionCall(ctx context.Context, receiverID string, methodName string, args any, gas uint64, deposit *big.Int) ([]byte, error) {
	value, outcome, err := a.Account.FunctionCall(ctx, receiverID, methodName, args, gas, deposit)
	if outcome != nil {
		util.LogFromContext(ctx).Debug().Str("near_tx_hash", outcome.Transaction.Hash).Msg("NEAR function call finished")
	}

	return value, err
}
