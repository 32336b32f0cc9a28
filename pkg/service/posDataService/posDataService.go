// Package posDataService answers the staking, delegation and reward queries of
// the API. Every query pins one block, reads the live state and the event
// history up to that block concurrently, then assembles the result.
package posDataService

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/blockTime"
	"github.com/orbs-network/pos-analytics/pkg/clients/managementService"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/eventReader"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"github.com/orbs-network/pos-analytics/pkg/model"
	"github.com/orbs-network/pos-analytics/pkg/rewards"
	"github.com/orbs-network/pos-analytics/pkg/service/baseDataService"
	"github.com/orbs-network/pos-analytics/pkg/stateReader"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// balanceReadLimit caps the concurrent token balance reads of one guardian's delegators.
const balanceReadLimit = 16

// BalanceReader reads the unstaked token balance of an address.
type BalanceReader interface {
	BalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error)
}

// NetworkStatusReader reads the management status of the first network node that answers.
type NetworkStatusReader interface {
	FetchFirstStatus(ctx context.Context, urls []string, what string) (*managementService.Status, error)
}

// RewardsQueryOptions bound a reward reconstruction. FromBlock 0 or -1 starts at
// the start of rewards, other negative values count back from the current block.
type RewardsQueryOptions struct {
	FromBlock int64
}

type PosDataService struct {
	baseDataService.BaseDataService
	eventReader  eventReader.IEventReader
	stateReader  stateReader.IStateReader
	balances     BalanceReader
	network      NetworkStatusReader
	clock        *blockTime.Clock
	globalConfig *config.Config
	metricsSink  *metrics.MetricsSink
	logger       *zap.Logger
}

func NewPosDataService(
	blocks baseDataService.BlockSource,
	er eventReader.IEventReader,
	sr stateReader.IStateReader,
	balances BalanceReader,
	network NetworkStatusReader,
	clock *blockTime.Clock,
	globalConfig *config.Config,
	ms *metrics.MetricsSink,
	logger *zap.Logger,
) *PosDataService {
	return &PosDataService{
		BaseDataService: baseDataService.BaseDataService{
			Blocks: blocks,
		},
		eventReader:  er,
		stateReader:  sr,
		balances:     balances,
		network:      network,
		clock:        clock,
		globalConfig: globalConfig,
		metricsSink:  ms,
		logger:       logger,
	}
}

func (pds *PosDataService) observe(query string, start time.Time) {
	_ = pds.metricsSink.Timing(metricsTypes.Metric_Timing_QueryDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "query", Value: query},
	})
}

// readEvents schedules an event read on the batch.
func (pds *PosDataService) readEvents(
	g *errgroup.Group,
	ctx context.Context,
	kind contractAbi.ContractKind,
	topics [][]common.Hash,
	fromBlock uint64,
	toBlock uint64,
	out *[]events.Event,
) {
	g.Go(func() error {
		evs, err := pds.eventReader.ReadEvents(ctx, kind, topics, fromBlock, toBlock)
		if err != nil {
			return err
		}
		*out = evs
		return nil
	})
}

// readGuardianAssignments reads the reward checkpoints of every guardian a
// delegator was attributed to, each within its own transition.
func (pds *PosDataService) readGuardianAssignments(ctx context.Context, transitions []rewards.GuardianTransition) ([]events.Event, error) {
	results := make([][]events.Event, len(transitions))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range transitions {
		topics := eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, t.Guardian, string(events.Kind_GuardianRewardAssigned))
		pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards, topics, t.FromBlock, t.ToBlock, &results[i])
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to read guardian reward assignments")
	}

	out := make([]events.Event, 0)
	for _, evs := range results {
		out = append(out, evs...)
	}
	return out, nil
}

// GetGuardians lists the registered guardians as published by the network nodes.
func (pds *PosDataService) GetGuardians(ctx context.Context) ([]model.Guardian, error) {
	defer pds.observe("get_guardians", time.Now())

	status, err := pds.network.FetchFirstStatus(ctx, pds.globalConfig.GetManagementServiceUrls(), "list of Guardians")
	if err != nil {
		return nil, err
	}
	return managementService.GuardiansFromStatus(status), nil
}

// GetOverview summarizes the network: stake, committee and candidates, and the committee history.
func (pds *PosDataService) GetOverview(ctx context.Context) (*model.PosOverview, error) {
	defer pds.observe("get_overview", time.Now())

	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}
	status, err := pds.network.FetchFirstStatus(ctx, pds.globalConfig.GetManagementServiceUrls(), "PoS Overview")
	if err != nil {
		return nil, err
	}
	return managementService.OverviewFromStatus(status, block), nil
}
