package evm

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
)

// Used when the latest header carries no base fee (pre-London chains, some L2s).
var defaultBaseFee = big.NewInt(params.GWei)

const baseFeeMultiplier = 2

// fees holds EIP-1559 fee caps for a transaction.
type fees struct {
	TipCap *big.Int
	FeeCap *big.Int
}

// suggestFees returns tip = eth_maxPriorityFeePerGas and feeCap = 2*baseFee + tip.
func suggestFees(ctx context.Context, backend Backend) (*fees, error) {
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}

	header, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	baseFee := defaultBaseFee
	if header.BaseFee != nil && header.BaseFee.Sign() > 0 {
		baseFee = header.BaseFee
	}

	feeCap := new(big.Int).Mul(baseFee, big.NewInt(baseFeeMultiplier))
	feeCap.Add(feeCap, tip)

	return &fees{TipCap: tip, FeeCap: feeCap}, nil
}

// applyGasMultiplier scales an estimate, rounding up. Multipliers below 1 are ignored.
func applyGasMultiplier(gas uint64, multiplier float64) (uint64, error) {
	if multiplier <= 1 {
		return gas, nil
	}

	scaled := math.Ceil(float64(gas) * multiplier)
	if scaled >= math.MaxUint64 {
		return 0, errors.Errorf("gas limit overflow for estimate %d", gas)
	}

	return uint64(scaled), nil
}
