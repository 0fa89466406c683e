package near

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout = 2 * time.Minute

	finalityFinal = "final"
)

// Client is a minimal NEAR JSON-RPC client.
type Client struct {
	url        string
	httpClient *http.Client
	requestID  atomic.Uint64
}

type Option func(c *Client)

// WithTimeout sets the overall timeout of a single RPC call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a client for the NEAR RPC endpoint at url.
func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("NEAR RPC URL is required")
	}

	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// URL returns the RPC endpoint.
func (c *Client) URL() string {
	return c.url
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is the error object returned by nearcore.
type RPCError struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Cause   *struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info"`
	} `json:"cause"`
}

func (e *RPCError) Error() string {
	var b strings.Builder
	b.WriteString("near rpc error")

	if e.Cause != nil && e.Cause.Name != "" {
		fmt.Fprintf(&b, " %s", e.Cause.Name)
	} else if e.Name != "" {
		fmt.Fprintf(&b, " %s", e.Name)
	}

	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}

	if len(e.Data) > 0 && string(e.Data) != "null" {
		var data string
		if err := json.Unmarshal(e.Data, &data); err != nil {
			data = string(e.Data)
		}
		fmt.Fprintf(&b, " (%s)", data)
	}

	return b.String()
}

// QueryError is a failure nearcore reports inside the result of a view call.
type QueryError struct {
	AccountID  string
	MethodName string
	Message    string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to call %s.%s: %s", e.AccountID, e.MethodName, e.Message)
}

// IsMethodNotFound reports whether err says the called account has no such
// method or no contract code at all.
func IsMethodNotFound(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Cause != nil {
			if rpcErr.Cause.Name == "NO_CONTRACT_CODE" {
				return true
			}
			if mentionsMissingMethod(string(rpcErr.Cause.Info)) {
				return true
			}
		}

		return mentionsMissingMethod(rpcErr.Error())
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return mentionsMissingMethod(queryErr.Message)
	}

	return false
}

func mentionsMissingMethod(s string) bool {
	return strings.Contains(s, "MethodNotFound") || strings.Contains(s, "CodeDoesNotExist")
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create rpc request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "near rpc %s failed", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read near rpc %s response", method)
	}

	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return errors.Wrapf(err, "near rpc %s returned status %d with undecodable body", method, resp.StatusCode)
	}

	if decoded.Error != nil {
		return decoded.Error
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("near rpc %s returned status %d", method, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return errors.Wrapf(err, "failed to decode near rpc %s result", method)
	}

	return nil
}

type callFunctionResult struct {
	RawResult   []int    `json:"result"`
	Logs        []string `json:"logs"`
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
	Error       string   `json:"error"`
}

// CallFunction runs a view method and returns its raw return value.
func (c *Client) CallFunction(ctx context.Context, accountID string, methodName string, args any) ([]byte, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode function args")
	}

	var res callFunctionResult
	err = c.call(ctx, "query", map[string]any{
		"request_type": "call_function",
		"finality":     finalityFinal,
		"account_id":   accountID,
		"method_name":  methodName,
		"args_base64":  base64.StdEncoding.EncodeToString(argsJSON),
	}, &res)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s.%s", accountID, methodName)
	}

	if res.Error != "" {
		return nil, &QueryError{AccountID: accountID, MethodName: methodName, Message: res.Error}
	}

	out := make([]byte, len(res.RawResult))
	for i, v := range res.RawResult {
		out[i] = byte(v)
	}

	return out, nil
}

// AccessKeyView is the state of an access key at the queried block.
type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
	Error       string          `json:"error"`
}

// ViewAccessKey returns nonce and reference block hash for an access key.
func (c *Client) ViewAccessKey(ctx context.Context, accountID string, publicKey PublicKey) (*AccessKeyView, error) {
	var res AccessKeyView
	err := c.call(ctx, "query", map[string]any{
		"request_type": "view_access_key",
		"finality":     finalityFinal,
		"account_id":   accountID,
		"public_key":   publicKey.String(),
	}, &res)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to view access key of %s", accountID)
	}

	if res.Error != "" {
		return nil, errors.Errorf("failed to view access key of %s: %s", accountID, res.Error)
	}

	return &res, nil
}

// BroadcastTxCommit submits a borsh encoded signed transaction and waits for its final outcome.
func (c *Client) BroadcastTxCommit(ctx context.Context, signedTx []byte) (*FinalExecutionOutcome, error) {
	var outcome FinalExecutionOutcome
	err := c.call(ctx, "broadcast_tx_commit", []string{base64.StdEncoding.EncodeToString(signedTx)}, &outcome)
	if err != nil {
		return nil, errors.Wrap(err, "failed to broadcast transaction")
	}

	log.Debug().
		Str("tx_hash", outcome.Transaction.Hash).
		Str("signer_id", outcome.Transaction.SignerID).
		Msg("NEAR transaction committed")

	return &outcome, nil
}

// NodeStatus is the subset of the status RPC the relay uses for health checks.
type NodeStatus struct {
	ChainID  string `json:"chain_id"`
	SyncInfo struct {
		LatestBlockHeight uint64 `json:"latest_block_height"`
		LatestBlockHash   string `json:"latest_block_hash"`
		Syncing           bool   `json:"syncing"`
	} `json:"sync_info"`
}

func (c *Client) Status(ctx context.Context) (*NodeStatus, error) {
	var status NodeStatus
	if err := c.call(ctx, "status", []any{}, &status); err != nil {
		return nil, errors.Wrap(err, "failed to get node status")
	}

	return &status, nil
}
