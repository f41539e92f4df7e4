package venue

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sniper-hq/sniperwatch/pkg/config"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
)

// Client provides read/write access to the execution venue: intent
// submission and cancellation, direct intent reads, the event log and
// the guidance price feed. Writes are never retried here; retry policy
// belongs to the orchestrator.
type Client struct {
	cfg      *config.Config
	client   *ethclient.Client
	wsClient *ethclient.Client

	hookAddr common.Address
	hook     *contracts.SniperHook
	hookWS   *contracts.SniperHook
	tokenIn  *contracts.ERC20
	oracle   *contracts.Aggregator

	auth   *bind.TransactOpts
	authMu sync.Mutex

	gasMultiplier float64
	maxGasPrice   *big.Int

	logger logger.Logger
}

// New connects to the venue described by cfg. When cfg carries a
// websocket endpoint, live subscriptions use it and range queries stay
// on the HTTP endpoint; otherwise both share one connection.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = &logger.EmptyLogger{}
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to venue RPC: %v", err)
	}

	wsClient := client
	if cfg.WSRPCURL != "" {
		wsClient, err = ethclient.Dial(cfg.WSRPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to venue websocket RPC: %v", err)
		}
	}

	c := &Client{
		cfg:           cfg,
		client:        client,
		wsClient:      wsClient,
		hookAddr:      common.HexToAddress(cfg.HookAddress),
		gasMultiplier: cfg.GasMultiplier,
		maxGasPrice:   cfg.MaxGasPrice,
		logger:        log,
	}

	c.hook, err = contracts.NewSniperHook(c.hookAddr, client)
	if err != nil {
		return nil, fmt.Errorf("failed to bind venue contract: %v", err)
	}
	c.hookWS, err = contracts.NewSniperHook(c.hookAddr, wsClient)
	if err != nil {
		return nil, fmt.Errorf("failed to bind venue contract on subscription endpoint: %v", err)
	}
	c.tokenIn, err = contracts.NewERC20(common.HexToAddress(cfg.TokenInAddress), client)
	if err != nil {
		return nil, fmt.Errorf("failed to bind source token contract: %v", err)
	}
	c.oracle, err = contracts.NewAggregator(common.HexToAddress(cfg.OracleAddress), client)
	if err != nil {
		return nil, fmt.Errorf("failed to bind reference feed contract: %v", err)
	}

	if cfg.PrivateKey != "" {
		auth, err := createAuthenticator(ctx, client, cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticator: %v", err)
		}
		c.auth = auth
	}

	return c, nil
}

// ReadOnly reports whether the session can submit writes.
func (c *Client) ReadOnly() bool {
	return c.auth == nil
}

// Owner returns the session's signing account, or the zero address for
// a read-only session.
func (c *Client) Owner() common.Address {
	if c.auth == nil {
		return common.Address{}
	}
	return c.auth.From
}

// HookAddress returns the venue contract address.
func (c *Client) HookAddress() common.Address {
	return c.hookAddr
}

// LatestBlockNumber gets the latest block number from the chain
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// suggestGasPrice reads the network gas price, applies the configured
// multiplier and caps the result at MaxGasPrice.
func (c *Client) suggestGasPrice(ctx context.Context) (*big.Int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gasPrice, err := c.client.SuggestGasPrice(timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	// Apply gas multiplier (e.g. 1.1 = 10% buffer)
	multiplied := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(c.gasMultiplier),
	)
	final := new(big.Int)
	multiplied.Int(final)

	if c.maxGasPrice != nil && final.Cmp(c.maxGasPrice) > 0 {
		c.logger.DebugWithScope(logger.Venue, "Gas price %s capped at %s", final.String(), c.maxGasPrice.String())
		final = new(big.Int).Set(c.maxGasPrice)
	}
	return final, nil
}

// Helper function to create authenticator
func createAuthenticator(ctx context.Context, client *ethclient.Client, privateKeyHex string) (*bind.TransactOpts, error) {
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}

	return auth, nil
}
