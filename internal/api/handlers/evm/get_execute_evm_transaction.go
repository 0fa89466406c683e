package evm

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/chainsig-relay/internal/api"
	"github/chapool/chainsig-relay/internal/executor"
	"github/chapool/chainsig-relay/internal/types"
	"github/chapool/chainsig-relay/internal/util"
)

const (
	MessageSuccess = "EVM transaction executed successfully"
	MessageFailure = "Failed to execute EVM transaction"
)

func GetExecuteEVMTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/", getExecuteEVMTransactionHandler(s))
}

// getExecuteEVMTransactionHandler submits one new EVM transaction per request.
// It is not idempotent.
func getExecuteEVMTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		start := s.Clock.Now()
		txHash, err := executeEVMTransaction(ctx, s)
		s.Metrics.ObserveEVMTransaction(err, s.Clock.Now().Sub(start))

		if err != nil {
			log.Error().Err(err).Msg(MessageFailure)

			return util.ValidateAndReturn(c, http.StatusInternalServerError, &types.ExecuteEVMTransactionErrorResponse{
				Error:   swag.String(MessageFailure),
				Details: swag.String(util.ErrorDetails(err)),
			})
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.ExecuteEVMTransactionResponse{
			Message: swag.String(MessageSuccess),
			TxHash:  swag.String(txHash),
		})
	}
}

// executeEVMTransaction runs the contract -> chains -> executor pipeline. A panic
// raised by any step is reported like a returned error.
func executeEVMTransaction(ctx context.Context, s *api.Server) (txHash string, err error) {
	defer func() {
		if r := recover(); r != nil {
			util.LogFromContext(ctx).Error().Str("stack", string(debug.Stack())).Interface("panic", r).Msg("Recovered from panic while executing EVM transaction")

			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New(util.ErrorDetails(r))
			}
		}
	}()

	contract, err := s.Contracts.InitContract(ctx)
	if err != nil {
		return "", err
	}

	registry, err := s.Chains.InitChains(ctx, contract)
	if err != nil {
		return "", err
	}
	defer registry.Close()

	return s.Executor.ExecuteEVMTransaction(ctx, executor.EVMTransactionParams{
		Contract:      contract,
		EVM:           registry.EVM,
		PredecessorID: s.Config.Near.AccountID,
	})
}
