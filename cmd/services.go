package cmd

import (
	"context"
	"fmt"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/blockTime"
	"github.com/orbs-network/pos-analytics/pkg/cache"
	"github.com/orbs-network/pos-analytics/pkg/clients/ethereum"
	"github.com/orbs-network/pos-analytics/pkg/clients/managementService"
	"github.com/orbs-network/pos-analytics/pkg/contractCaller/boundContractCaller"
	"github.com/orbs-network/pos-analytics/pkg/contractRegistry"
	"github.com/orbs-network/pos-analytics/pkg/eventReader"
	"github.com/orbs-network/pos-analytics/pkg/fetcher"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/service/posDataService"
	"github.com/orbs-network/pos-analytics/pkg/stateReader"
	"github.com/orbs-network/pos-analytics/pkg/transactionLogParser"
	"go.uber.org/zap"
)

// registryCacheSize bounds the resolved contract sets kept, one per registry address.
const registryCacheSize = 16

// newMetricsSink fans out to every metrics client enabled in cfg.
func newMetricsSink(cfg *config.Config, l *zap.Logger) (*metrics.MetricsSink, error) {
	metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to setup metrics clients: %w", err)
	}
	return metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
}

// newPosDataService wires the chain readers and the network client into the
// query service. The returned close func releases the ethereum client.
func newPosDataService(ctx context.Context, cfg *config.Config, sink *metrics.MetricsSink, l *zap.Logger) (*posDataService.PosDataService, func(), error) {
	chainConfig, err := cfg.GetChainConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := ethereum.NewClient(ctx, ethereum.ConvertGlobalConfigToEthereumConfig(&cfg.EthereumRpcConfig), l)
	if err != nil {
		return nil, nil, err
	}

	logParser, err := transactionLogParser.NewTransactionLogParser(l)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create log parser: %w", err)
	}

	registryCache, err := cache.NewLRU(registryCacheSize)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	f := fetcher.NewFetcher(client, fetcher.ConvertGlobalConfigToFetcherConfig(&cfg.EthereumRpcConfig), sink, l)
	registry := contractRegistry.NewContractRegistry(f, logParser, chainConfig, registryCache, sink, l)
	er := eventReader.NewEventReader(registry, f, logParser, l)

	caller := boundContractCaller.NewBoundContractCaller(client.ContractCaller(), registry, l)
	sr := stateReader.NewStateReader(caller, l)

	mcfg := managementService.DefaultClientConfig()
	if cfg.ManagementServiceConfig.Timeout > 0 {
		mcfg.Timeout = cfg.ManagementServiceConfig.Timeout
	}
	network := managementService.NewClient(mcfg, l)

	pds := posDataService.NewPosDataService(
		client,
		er,
		sr,
		caller,
		network,
		blockTime.NewClock(chainConfig),
		cfg,
		sink,
		l,
	)
	return pds, client.Close, nil
}
