// Package fakenear provides an in-process NEAR JSON-RPC endpoint for tests.
package fakenear

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github/chapool/chainsig-relay/internal/near"
)

// Handler answers a view call with a JSON encodable value.
type Handler func(args json.RawMessage) (any, error)

// CallHandler answers a change call with a JSON encodable value.
type CallHandler func(call Call) (any, error)

// Call is a decoded function call submitted through broadcast_tx_commit.
type Call struct {
	SignerID   string
	Nonce      uint64
	ReceiverID string
	MethodName string
	Args       json.RawMessage
	Gas        uint64
	Deposit    *big.Int
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nonce     uint64
	blockHash [32]byte
	views     map[string]Handler
	calls     map[string]CallHandler
	submitted []Call
	chainID   string
}

// New starts a fake RPC that is closed on test cleanup.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		nonce:   41,
		views:   make(map[string]Handler),
		calls:   make(map[string]CallHandler),
		chainID: "testnet",
	}
	for i := range s.blockHash {
		s.blockHash[i] = byte(i + 1)
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

func key(accountID, method string) string {
	return accountID + "." + method
}

// HandleView registers a view method answered by the query call_function request.
func (s *Server) HandleView(accountID, method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[key(accountID, method)] = h
}

// HandleCall registers a change method answered by broadcast_tx_commit.
func (s *Server) HandleCall(accountID, method string, h CallHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key(accountID, method)] = h
}

// Submitted returns all function calls broadcast so far.
func (s *Server) Submitted() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.submitted...)
}

type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcError struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
	Cause   struct {
		Name string `json:"name"`
	} `json:"cause"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, rpcErr := s.dispatch(req)

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newRPCError(name string, cause string, msg string) *rpcError {
	e := &rpcError{Name: name, Code: -32000, Message: "Server error", Data: msg}
	e.Cause.Name = cause

	return e
}

func (s *Server) dispatch(req request) (any, *rpcError) {
	switch req.Method {
	case "status":
		return map[string]any{
			"chain_id": s.chainID,
			"sync_info": map[string]any{
				"latest_block_height": 100,
				"latest_block_hash":   base58.Encode(s.blockHash[:]),
				"syncing":             false,
			},
		}, nil
	case "query":
		return s.query(req.Params)
	case "broadcast_tx_commit":
		return s.broadcast(req.Params)
	default:
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "METHOD_NOT_FOUND", req.Method)
	}
}

func (s *Server) query(params json.RawMessage) (any, *rpcError) {
	var q struct {
		RequestType string `json:"request_type"`
		AccountID   string `json:"account_id"`
		MethodName  string `json:"method_name"`
		ArgsBase64  string `json:"args_base64"`
	}
	if err := json.Unmarshal(params, &q); err != nil {
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "PARSE_ERROR", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch q.RequestType {
	case "view_access_key":
		return map[string]any{
			"nonce":        s.nonce,
			"permission":   "FullAccess",
			"block_height": 100,
			"block_hash":   base58.Encode(s.blockHash[:]),
		}, nil
	case "call_function":
		h, ok := s.views[key(q.AccountID, q.MethodName)]
		if !ok {
			return nil, newRPCError("HANDLER_ERROR", "CONTRACT_EXECUTION_ERROR", "MethodNotFound "+q.MethodName)
		}

		args, err := base64.StdEncoding.DecodeString(q.ArgsBase64)
		if err != nil {
			return nil, newRPCError("REQUEST_VALIDATION_ERROR", "PARSE_ERROR", err.Error())
		}

		value, err := h(args)
		if err != nil {
			return nil, newRPCError("HANDLER_ERROR", "CONTRACT_EXECUTION_ERROR", err.Error())
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, newRPCError("INTERNAL_ERROR", "INTERNAL_ERROR", err.Error())
		}

		ints := make([]int, len(encoded))
		for i, b := range encoded {
			ints[i] = int(b)
		}

		return map[string]any{
			"result":       ints,
			"logs":         []string{},
			"block_height": 100,
			"block_hash":   base58.Encode(s.blockHash[:]),
		}, nil
	default:
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "PARSE_ERROR", "unsupported request_type "+q.RequestType)
	}
}

func (s *Server) broadcast(params json.RawMessage) (any, *rpcError) {
	var encoded []string
	if err := json.Unmarshal(params, &encoded); err != nil || len(encoded) != 1 {
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "PARSE_ERROR", "expected one base64 transaction")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded[0])
	if err != nil {
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "PARSE_ERROR", err.Error())
	}

	call, err := decodeFunctionCall(raw)
	if err != nil {
		return nil, newRPCError("REQUEST_VALIDATION_ERROR", "INVALID_TRANSACTION", err.Error())
	}

	s.mu.Lock()
	if call.Nonce <= s.nonce {
		s.mu.Unlock()
		return nil, newRPCError("HANDLER_ERROR", "INVALID_TRANSACTION", "InvalidNonce")
	}
	s.nonce = call.Nonce
	s.submitted = append(s.submitted, call)
	h, ok := s.calls[key(call.ReceiverID, call.MethodName)]
	s.mu.Unlock()

	sum := sha256.Sum256(raw)
	txHash := base58.Encode(sum[:])
	outcome := map[string]any{
		"transaction": map[string]any{
			"hash":        txHash,
			"signer_id":   call.SignerID,
			"receiver_id": call.ReceiverID,
			"nonce":       call.Nonce,
		},
		"transaction_outcome": map[string]any{
			"id":      txHash,
			"outcome": map[string]any{"status": map[string]any{"SuccessReceiptId": txHash}},
		},
		"receipts_outcome": []any{},
	}

	if !ok {
		outcome["status"] = map[string]any{"Failure": map[string]any{
			"ActionError": map[string]any{"kind": map[string]any{"FunctionCallError": map[string]any{
				"MethodResolveError": "MethodNotFound",
			}}},
		}}
		return outcome, nil
	}

	value, err := h(call)
	if err != nil {
		outcome["status"] = map[string]any{"Failure": map[string]any{
			"ActionError": map[string]any{"kind": map[string]any{"FunctionCallError": map[string]any{
				"ExecutionError": err.Error(),
			}}},
		}}
		return outcome, nil
	}

	ret, err := json.Marshal(value)
	if err != nil {
		return nil, newRPCError("INTERNAL_ERROR", "INTERNAL_ERROR", err.Error())
	}
	outcome["status"] = map[string]any{"SuccessValue": base64.StdEncoding.EncodeToString(ret)}

	return outcome, nil
}

type reader struct {
	buf []byte
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = errors.New("unexpected end of transaction")
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]

	return b
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

func (r *reader) vec() []byte {
	return r.take(int(r.u32()))
}

func decodeFunctionCall(raw []byte) (Call, error) {
	r := &reader{buf: raw}
	var c Call

	c.SignerID = string(r.vec())
	r.take(1 + 32)
	c.Nonce = r.u64()
	c.ReceiverID = string(r.vec())
	r.take(32)

	if n := r.u32(); r.err == nil && n != 1 {
		return c, fmt.Errorf("expected one action, got %d", n)
	}
	if kind := r.take(1); r.err == nil && kind[0] != 2 {
		return c, fmt.Errorf("expected function call action, got %d", kind[0])
	}

	c.MethodName = string(r.vec())
	c.Args = append(json.RawMessage(nil), r.vec()...)
	c.Gas = r.u64()

	le := r.take(16)
	if r.err != nil {
		return c, r.err
	}
	be := make([]byte, 16)
	for i := range le {
		be[15-i] = le[i]
	}
	c.Deposit = new(big.Int).SetBytes(be)

	return c, nil
}

// AccountKey returns a fixed ed25519 secret key in NEAR format for test accounts.
func AccountKey() string {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(0x40 + i)
	}

	return near.NewKeyPair(ed25519.NewKeyFromSeed(seed)).String()
}
