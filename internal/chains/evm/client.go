package evm

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Backend is the subset of an Ethereum JSON-RPC client the adapter needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// RPCClient wraps one ethclient per configured URL and fails over between them.
type RPCClient struct {
	urls    []string
	clients []*ethclient.Client
	mu      sync.Mutex
	current int
}

var _ Backend = (*RPCClient)(nil)

// Dial connects to every url. Endpoints that fail to dial are retried lazily on use.
func Dial(ctx context.Context, urls []string) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one EVM RPC URL is required")
	}

	clients := make([]*ethclient.Client, len(urls))
	connected := 0
	for i, url := range urls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to EVM RPC node, will retry on use")
			continue
		}
		clients[i] = client
		connected++
	}

	if connected == 0 {
		return nil, errors.New("failed to connect to any EVM RPC node")
	}

	return &RPCClient{
		urls:    urls,
		clients: clients,
	}, nil
}

func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client != nil {
			client.Close()
			c.clients[i] = nil
		}
	}
}

// getClient returns the first healthy client, starting at the last one that worked.
// A client is healthy if it answers eth_chainId.
func (c *RPCClient) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.clients {
		idx := (c.current + i) % len(c.clients)

		if c.clients[idx] == nil {
			client, err := ethclient.DialContext(ctx, c.urls[idx])
			if err != nil {
				log.Warn().Str("url", c.urls[idx]).Err(err).Msg("Failed to reconnect to EVM RPC node")
				continue
			}
			c.clients[idx] = client
		}

		client := c.clients[idx]
		if _, err := client.ChainID(ctx); err != nil {
			log.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("EVM RPC health check failed, trying next node")

			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "EVM RPC health check aborted")
			}
			continue
		}

		c.current = idx
		return client, nil
	}

	return nil, errors.New("all EVM RPC nodes are unavailable")
}

func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return chainID, nil
}

func (c *RPCClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	header, err := client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get block header")
	}

	return header, nil
}

func (c *RPCClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest gas tip cap")
	}

	return tipCap, nil
}

func (c *RPCClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}

	nonce, err := client.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pending nonce")
	}

	return nonce, nil
}

func (c *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}

	gas, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, errors.Wrap(err, "failed to estimate gas")
	}

	return gas, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	client, err := c.getClient(ctx)
	if err != nil {
		return err
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return errors.Wrap(err, "failed to send transaction")
	}

	return nil
}

func (c *RPCClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := client.BalanceAt(ctx, account, blockNumber)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}

	return balance, nil
}
