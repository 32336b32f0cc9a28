// Package fetcher retrieves event logs from an Ethereum node. Oversized windows
// are split into smaller chunks fetched in parallel, and transient failures are
// retried with exponential backoff.
package fetcher

import (
	"cmp"
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	goEthereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultChunkSize        uint64 = 100000
	DefaultMinChunkSize     uint64 = 10
	DefaultParallelRequests        = 4
)

// LogClient is the part of the ethereum client the fetcher needs.
type LogClient interface {
	FilterLogs(ctx context.Context, q goEthereum.FilterQuery) ([]types.Log, error)
}

// FetcherConfig contains the configuration specific to the Fetcher
type FetcherConfig struct {
	// ChunkSize is the first window size used once a query is rejected as too large
	ChunkSize uint64
	// MinChunkSize is the window size at which splitting gives up
	MinChunkSize uint64
	// ParallelRequests bounds the number of chunks fetched at once
	ParallelRequests int
	// RetryDelays are the pauses between attempts on transient failures
	RetryDelays []time.Duration
}

// DefaultRetryDelays backs off 1, 2, 4 ... 64 seconds.
func DefaultRetryDelays() []time.Duration {
	retries := []int{1, 2, 4, 8, 16, 32, 64}
	delays := make([]time.Duration, 0, len(retries))
	for _, r := range retries {
		delays = append(delays, time.Duration(r)*time.Second)
	}
	return delays
}

func ConvertGlobalConfigToFetcherConfig(cfg *config.EthereumRpcConfig) *FetcherConfig {
	fc := &FetcherConfig{
		ChunkSize:        cfg.ChunkSize,
		MinChunkSize:     cfg.MinChunkSize,
		ParallelRequests: cfg.ParallelRequests,
		RetryDelays:      DefaultRetryDelays(),
	}
	if cfg.MaxRetries >= 0 && cfg.MaxRetries < len(fc.RetryDelays) {
		fc.RetryDelays = fc.RetryDelays[:cfg.MaxRetries]
	}
	return fc
}

func (fc *FetcherConfig) withDefaults() *FetcherConfig {
	out := *fc
	if out.ChunkSize == 0 {
		out.ChunkSize = DefaultChunkSize
	}
	if out.MinChunkSize == 0 {
		out.MinChunkSize = DefaultMinChunkSize
	}
	if out.ParallelRequests <= 0 {
		out.ParallelRequests = DefaultParallelRequests
	}
	return &out
}

// LogQuery selects logs emitted by any of Addresses within [FromBlock, ToBlock].
type LogQuery struct {
	Addresses []common.Address
	Topics    [][]common.Hash
	FromBlock uint64
	ToBlock   uint64
	// Label tags metrics and logs, usually the contract kind
	Label string
}

// Fetcher is responsible for retrieving event logs from Ethereum nodes.
type Fetcher struct {
	LogClient     LogClient
	Logger        *zap.Logger
	FetcherConfig *FetcherConfig
	metricsSink   *metrics.MetricsSink
}

// NewFetcher creates a new Fetcher with the provided log client, configuration, and logger.
func NewFetcher(client LogClient, cfg *FetcherConfig, ms *metrics.MetricsSink, l *zap.Logger) *Fetcher {
	cfg = cfg.withDefaults()
	l.Sugar().Infow("Created fetcher", zap.Any("config", cfg))
	return &Fetcher{
		LogClient:     client,
		Logger:        l,
		FetcherConfig: cfg,
		metricsSink:   ms,
	}
}

// IsQueryLimitError reports whether the node rejected a query for returning too many results.
func IsQueryLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"query returned more than",
		"exceed maximum block range",
		"block range is too wide",
		"response size exceeded",
		"log response size exceeded",
		"too many results",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// FetchLogs returns every log matching the query, without duplicates and in chain order.
func (f *Fetcher) FetchLogs(ctx context.Context, q *LogQuery) ([]types.Log, error) {
	if q.FromBlock > q.ToBlock {
		return []types.Log{}, nil
	}
	if len(q.Addresses) == 0 {
		return []types.Log{}, nil
	}
	logs, err := f.fetchWindow(ctx, q, q.FromBlock, q.ToBlock, f.FetcherConfig.ChunkSize)
	if err != nil {
		return nil, err
	}
	logs = SortAndDeduplicate(logs)

	_ = f.metricsSink.Incr(metricsTypes.Metric_Incr_LogsFetched, []metricsTypes.MetricsLabel{
		{Name: "contract", Value: q.Label},
	}, float64(len(logs)))

	f.Logger.Sugar().Debugw("Fetched logs",
		zap.String("label", q.Label),
		zap.Uint64("fromBlock", q.FromBlock),
		zap.Uint64("toBlock", q.ToBlock),
		zap.Int("count", len(logs)),
	)
	return logs, nil
}

func (f *Fetcher) fetchWindow(ctx context.Context, q *LogQuery, from uint64, to uint64, pace uint64) ([]types.Log, error) {
	logs, err := f.filterLogsWithRetries(ctx, q, from, to)
	if err == nil {
		return logs, nil
	}
	if !IsQueryLimitError(err) {
		return nil, err
	}

	// a window that already fits one chunk would be fetched unchanged
	span := to - from + 1
	for pace >= span && pace > f.FetcherConfig.MinChunkSize {
		pace /= 10
	}
	if pace <= f.FetcherConfig.MinChunkSize {
		return nil, fmt.Errorf("looking for events slowed down to %d - fail: %w", pace, err)
	}

	f.Logger.Sugar().Infow("read events slowing down",
		zap.String("label", q.Label),
		zap.Uint64("fromBlock", from),
		zap.Uint64("toBlock", to),
		zap.Uint64("pace", pace),
	)
	_ = f.metricsSink.Incr(metricsTypes.Metric_Incr_WindowSplit, []metricsTypes.MetricsLabel{
		{Name: "pace", Value: fmt.Sprintf("%d", pace)},
	}, 1)

	chunks := splitWindow(from, to, pace)
	results := make([][]types.Log, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.FetcherConfig.ParallelRequests)
	for i, c := range chunks {
		g.Go(func() error {
			chunkLogs, err := f.fetchWindow(gctx, q, c[0], c[1], pace/10)
			if err != nil {
				return err
			}
			results[i] = chunkLogs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collected := make([]types.Log, 0)
	for _, r := range results {
		collected = append(collected, r...)
	}
	return collected, nil
}

// splitWindow cuts [from, to] into inclusive, non overlapping windows of at most pace blocks.
func splitWindow(from uint64, to uint64, pace uint64) [][2]uint64 {
	chunks := make([][2]uint64, 0)
	for start := from; start <= to; start += pace {
		end := start + pace - 1
		if end > to || end < start {
			end = to
		}
		chunks = append(chunks, [2]uint64{start, end})
		if end == to {
			break
		}
	}
	return chunks
}

// filterLogsWithRetries retries transient failures, a query limit error is returned immediately.
func (f *Fetcher) filterLogsWithRetries(ctx context.Context, q *LogQuery, from uint64, to uint64) ([]types.Log, error) {
	query := goEthereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: q.Addresses,
		Topics:    q.Topics,
	}

	var e error
	for i := 0; ; i++ {
		logs, err := f.LogClient.FilterLogs(ctx, query)
		if err == nil {
			if i > 0 {
				f.Logger.Sugar().Infow("successfully fetched logs for range after retries",
					zap.Uint64("startBlock", from),
					zap.Uint64("endBlock", to),
					zap.Int("retries", i),
				)
			}
			return logs, nil
		}
		e = err
		if IsQueryLimitError(err) || ctx.Err() != nil || i >= len(f.FetcherConfig.RetryDelays) {
			break
		}
		delay := f.FetcherConfig.RetryDelays[i]
		f.Logger.Sugar().Infow("failed to fetch logs for range",
			zap.Uint64("startBlock", from),
			zap.Uint64("endBlock", to),
			zap.Duration("sleepTime", delay),
			zap.Error(err),
		)
		_ = f.metricsSink.Incr(metricsTypes.Metric_Incr_RpcRetry, nil, 1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if !IsQueryLimitError(e) {
		f.Logger.Sugar().Errorw("failed to fetch logs for range, exhausted all retries",
			zap.Uint64("startBlock", from),
			zap.Uint64("endBlock", to),
			zap.Error(e),
		)
		return nil, errors.Wrap(e, "failed to fetch logs")
	}
	return nil, e
}

type logKey struct {
	txHash common.Hash
	index  uint
}

// SortAndDeduplicate drops removed and repeated logs and orders the rest by
// block, transaction index and log index.
func SortAndDeduplicate(logs []types.Log) []types.Log {
	seen := make(map[logKey]bool, len(logs))
	out := make([]types.Log, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		k := logKey{txHash: lg.TxHash, index: lg.Index}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, lg)
	}
	slices.SortStableFunc(out, func(a, b types.Log) int {
		if a.BlockNumber != b.BlockNumber {
			return cmp.Compare(a.BlockNumber, b.BlockNumber)
		}
		if a.TxIndex != b.TxIndex {
			return cmp.Compare(a.TxIndex, b.TxIndex)
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}
