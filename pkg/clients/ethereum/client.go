package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	goEthereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/orbs-network/pos-analytics/internal/config"
	"go.uber.org/zap"
)

// Seconds subtracted from the latest header, a block is roughly 13 seconds behind the head.
const currentBlockTimeOffset = 13

type EthereumClientConfig struct {
	BaseUrl    string
	HttpClient *http.Client
}

func DefaultHttpClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
	}
}

func ConvertGlobalConfigToEthereumConfig(cfg *config.EthereumRpcConfig) *EthereumClientConfig {
	return &EthereumClientConfig{
		BaseUrl:    cfg.RpcUrl,
		HttpClient: DefaultHttpClient(),
	}
}

// Client wraps ethclient with the handful of calls the analytics service needs.
type Client struct {
	BaseUrl   string
	ethClient *ethclient.Client
	rpcClient *rpc.Client
	Logger    *zap.Logger
}

func NewClient(ctx context.Context, cfg *EthereumClientConfig, l *zap.Logger) (*Client, error) {
	if cfg.BaseUrl == "" {
		return nil, fmt.Errorf("ethereum rpc url is required")
	}
	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = DefaultHttpClient()
	}
	rpcClient, err := rpc.DialOptions(ctx, cfg.BaseUrl, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}
	l.Sugar().Infow("Created ethereum client", zap.String("url", cfg.BaseUrl))

	return &Client{
		BaseUrl:   cfg.BaseUrl,
		ethClient: ethclient.NewClient(rpcClient),
		rpcClient: rpcClient,
		Logger:    l,
	}, nil
}

func (c *Client) GetBlockNumberUint64(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// GetCurrentBlock returns the block queries are pinned to: one behind the head,
// timestamped one block earlier than the head.
func (c *Client) GetCurrentBlock(ctx context.Context) (config.BlockRef, error) {
	header, err := c.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return config.BlockRef{}, fmt.Errorf("failed to get latest header: %w", err)
	}
	number := header.Number.Uint64()
	if number == 0 {
		return config.BlockRef{}, fmt.Errorf("chain head is at genesis")
	}
	return config.BlockRef{
		Number: number - 1,
		Time:   int64(header.Time) - currentBlockTimeOffset,
	}, nil
}

func (c *Client) FilterLogs(ctx context.Context, q goEthereum.FilterQuery) ([]types.Log, error) {
	return c.ethClient.FilterLogs(ctx, q)
}

// ContractCaller exposes the client to abigen style bound contracts.
func (c *Client) ContractCaller() bind.ContractCaller {
	return c.ethClient
}

func (c *Client) Close() {
	c.ethClient.Close()
}
