package evm_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github/chapool/chainsig-relay/internal/api"
	handlersevm "github/chapool/chainsig-relay/internal/api/handlers/evm"
	"github/chapool/chainsig-relay/internal/chains"
	"github/chapool/chainsig-relay/internal/chains/evm"
	"github/chapool/chainsig-relay/internal/chainsig"
	"github/chapool/chainsig-relay/internal/executor"
	"github/chapool/chainsig-relay/internal/test"
	"github/chapool/chainsig-relay/internal/test/mocks"
	"github/chapool/chainsig-relay/internal/types"
)

func TestGetExecuteEVMTransactionSuccess(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.ExecuteEVMTransactionResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, handlersevm.MessageSuccess, *response.Message)
		assert.Regexp(t, "^0x[0-9a-f]{64}$", *response.TxHash)

		relay.Chain.Commit()

		receipt, err := relay.Chain.Client.TransactionReceipt(t.Context(), common.HexToHash(*response.TxHash))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), receipt.Status)

		tx, _, err := relay.Chain.Client.TransactionByHash(t.Context(), common.HexToHash(*response.TxHash))
		require.NoError(t, err)
		assert.Equal(t, relay.Sender, *tx.To())

		submitted := relay.NearRPC.Submitted()
		require.Len(t, submitted, 1)
		assert.Equal(t, test.RelayAccountID, submitted[0].SignerID)
		assert.Equal(t, test.RelayContractID, submitted[0].ReceiverID)
	})
}

func TestGetExecuteEVMTransactionNotIdempotent(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		hashes := make(map[string]struct{})

		for range 2 {
			res := test.PerformRequest(t, s, "GET", "/", nil, nil)
			require.Equal(t, http.StatusOK, res.Result().StatusCode)

			var response types.ExecuteEVMTransactionResponse
			test.ParseResponseAndValidate(t, res, &response)
			hashes[*response.TxHash] = struct{}{}

			relay.Chain.Commit()
		}

		assert.Len(t, hashes, 2)
		assert.Equal(t, int64(2), relay.MPC.SignCount())
	})
}

func TestGetExecuteEVMTransactionSignFailure(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		relay.MPC.FailSign("Signature request has timed out.")

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)

		var response types.ExecuteEVMTransactionErrorResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, handlersevm.MessageFailure, *response.Error)
		assert.Contains(t, *response.Details, "Signature request has timed out.")
	})
}

func TestGetExecuteEVMTransactionMissingAccount(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, _ *test.Relay) {
		contracts := &mocks.ContractInitializer{}
		contracts.On("InitContract", mock.Anything).Return(nil, errors.New("NEAR_ACCOUNT_ID is not set"))
		s.Contracts = contracts

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)

		var response types.ExecuteEVMTransactionErrorResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, handlersevm.MessageFailure, *response.Error)
		assert.Equal(t, "NEAR_ACCOUNT_ID is not set", *response.Details)
		contracts.AssertExpectations(t)
	})
}

func TestGetExecuteEVMTransactionExecutorErrorUnchanged(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, _ *test.Relay) {
		exec := &mocks.TransactionExecutor{}
		exec.On("ExecuteEVMTransaction", mock.Anything, mock.MatchedBy(func(params executor.EVMTransactionParams) bool {
			return params.PredecessorID == test.RelayAccountID && params.Contract != nil && params.EVM != nil
		})).Return("", errors.New("insufficient funds for gas * price + value"))
		s.Executor = exec

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)
		assert.JSONEq(t, `{"error":"Failed to execute EVM transaction","details":"insufficient funds for gas * price + value"}`, res.Body.String())

		exec.AssertExpectations(t)
	})
}

type stringer struct{}

func (stringer) String() string {
	return "stringer panic"
}

func TestGetExecuteEVMTransactionPanics(t *testing.T) {
	tests := map[string]struct {
		value   any
		details string
	}{
		"string":   {value: "boom", details: "boom"},
		"error":    {value: errors.New("rpc exploded"), details: "rpc exploded"},
		"stringer": {value: stringer{}, details: "stringer panic"},
		"number":   {value: 42, details: "42"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			test.WithTestRelay(t, func(s *api.Server, _ *test.Relay) {
				exec := &mocks.TransactionExecutor{}
				exec.On("ExecuteEVMTransaction", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
					panic(tt.value)
				})
				s.Executor = exec

				res := test.PerformRequest(t, s, "GET", "/", nil, nil)
				require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)

				var response types.ExecuteEVMTransactionErrorResponse
				test.ParseResponseAndValidate(t, res, &response)
				assert.Equal(t, handlersevm.MessageFailure, *response.Error)
				assert.Equal(t, tt.details, *response.Details)
			})
		})
	}
}

// closingBackend counts Close calls of the per request EVM backend.
type closingBackend struct {
	simulated.Client
	closed *atomic.Int64
}

func (b *closingBackend) Close() {
	b.closed.Add(1)
}

func TestGetExecuteEVMTransactionReleasesRegistry(t *testing.T) {
	var closed atomic.Int64

	test.WithTestRelay(t, func(s *api.Server, relay *test.Relay) {
		s.Chains = chains.NewInitializer(s.Config, chains.WithDialer(func(context.Context, []string) (evm.Backend, error) {
			return &closingBackend{Client: relay.Chain.Client, closed: &closed}, nil
		}))

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Equal(t, int64(1), closed.Load())

		relay.MPC.FailSign("rejected")

		res = test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)
		assert.Equal(t, int64(2), closed.Load())
	})
}

func TestGetExecuteEVMTransactionChainInitFailure(t *testing.T) {
	test.WithTestRelay(t, func(s *api.Server, _ *test.Relay) {
		chainInitializer := &mocks.ChainInitializer{}
		chainInitializer.On("InitChains", mock.Anything, mock.MatchedBy(func(c chainsig.Contract) bool {
			return c.ContractID() == test.RelayContractID
		})).Return(nil, fmt.Errorf("failed to connect to EVM RPC: %w", errors.New("dial tcp: connection refused")))
		s.Chains = chainInitializer

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)

		var response types.ExecuteEVMTransactionErrorResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, "failed to connect to EVM RPC: dial tcp: connection refused", *response.Details)
	})
}

func TestGetExecuteEVMTransactionMockedCollaborators(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		contracts := &mocks.ContractInitializer{}
		contracts.On("InitContract", mock.Anything).Return(nil, nil)
		chainInitializer := &mocks.ChainInitializer{}
		chainInitializer.On("InitChains", mock.Anything, mock.Anything).Return(&chains.Registry{}, nil)
		exec := &mocks.TransactionExecutor{}
		exec.On("ExecuteEVMTransaction", mock.Anything, mock.Anything).Return("0xabc123", nil)

		s.Contracts = contracts
		s.Chains = chainInitializer
		s.Executor = exec

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.JSONEq(t, `{"message":"EVM transaction executed successfully","txHash":"0xabc123"}`, res.Body.String())

		contracts.AssertExpectations(t)
		chainInitializer.AssertExpectations(t)
		exec.AssertExpectations(t)
	})
}

func TestGetExecuteEVMTransactionMockedInsufficientFunds(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		contracts := &mocks.ContractInitializer{}
		contracts.On("InitContract", mock.Anything).Return(nil, nil)
		chainInitializer := &mocks.ChainInitializer{}
		chainInitializer.On("InitChains", mock.Anything, mock.Anything).Return(&chains.Registry{}, nil)
		exec := &mocks.TransactionExecutor{}
		exec.On("ExecuteEVMTransaction", mock.Anything, mock.Anything).Return("", errors.New("insufficient funds"))

		s.Contracts = contracts
		s.Chains = chainInitializer
		s.Executor = exec

		res := test.PerformRequest(t, s, "GET", "/", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)
		assert.JSONEq(t, `{"error":"Failed to execute EVM transaction","details":"insufficient funds"}`, res.Body.String())
	})
}

func TestGetExecuteEVMTransactionRejectsMalformedBody(t *testing.T) {
	tests := map[string]struct {
		contentType string
		body        string
	}{
		"malformed json": {contentType: echo.MIMEApplicationJSON, body: `{bad json`},
		"oversized body": {contentType: echo.MIMEApplicationJSON, body: `{"data":"` + strings.Repeat("a", 2<<20) + `"}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			test.WithTestServer(t, func(s *api.Server) {
				exec := &mocks.TransactionExecutor{}
				s.Executor = exec

				headers := http.Header{echo.HeaderContentType: []string{tt.contentType}}
				res := test.PerformRequestWithRawBody(t, s, "GET", "/", strings.NewReader(tt.body), headers)

				require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)
				assert.Equal(t, "Something broke!", res.Body.String())
				exec.AssertNotCalled(t, "ExecuteEVMTransaction", mock.Anything, mock.Anything)
			})
		})
	}
}

func TestGetExecuteEVMTransactionAcceptsJSONBody(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		contracts := &mocks.ContractInitializer{}
		contracts.On("InitContract", mock.Anything).Return(nil, nil)
		chainInitializer := &mocks.ChainInitializer{}
		chainInitializer.On("InitChains", mock.Anything, mock.Anything).Return(&chains.Registry{}, nil)
		exec := &mocks.TransactionExecutor{}
		exec.On("ExecuteEVMTransaction", mock.Anything, mock.Anything).Return("0xabc123", nil)

		s.Contracts = contracts
		s.Chains = chainInitializer
		s.Executor = exec

		headers := http.Header{echo.HeaderContentType: []string{echo.MIMEApplicationJSON}}
		res := test.PerformRequestWithRawBody(t, s, "GET", "/", strings.NewReader(`{"ignored":true}`), headers)

		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.JSONEq(t, `{"message":"EVM transaction executed successfully","txHash":"0xabc123"}`, res.Body.String())
	})
}
