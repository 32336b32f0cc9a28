// Package contractRegistry discovers the addresses the PoS contracts lived at over
// time by replaying the contract registry's update events.
package contractRegistry

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/cache"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/fetcher"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"go.uber.org/zap"
)

// OpenEndBlock marks the range of the address currently in use.
const OpenEndBlock uint64 = math.MaxUint64

type ContractRange struct {
	Address    string
	StartBlock uint64
	EndBlock   uint64
}

func (r ContractRange) IsOpen() bool {
	return r.EndBlock == OpenEndBlock
}

// ContractSet maps every contract kind to its address history, oldest first.
type ContractSet struct {
	ranges map[contractAbi.ContractKind][]ContractRange
}

func newContractSet() *ContractSet {
	return &ContractSet{ranges: make(map[contractAbi.ContractKind][]ContractRange)}
}

// NewContractSet builds a set from known address histories.
func NewContractSet(ranges map[contractAbi.ContractKind][]ContractRange) *ContractSet {
	cs := newContractSet()
	for k, rs := range ranges {
		for _, r := range rs {
			r.Address = strings.ToLower(r.Address)
			cs.ranges[k] = append(cs.ranges[k], r)
		}
	}
	return cs
}

func (cs *ContractSet) clone() *ContractSet {
	out := newContractSet()
	for k, v := range cs.ranges {
		out.ranges[k] = append([]ContractRange{}, v...)
	}
	return out
}

func (cs *ContractSet) open(kind contractAbi.ContractKind, address string, startBlock uint64) {
	cs.ranges[kind] = append(cs.ranges[kind], ContractRange{
		Address:    strings.ToLower(address),
		StartBlock: startBlock,
		EndBlock:   OpenEndBlock,
	})
}

// replace closes the current range of kind at block and opens the new address right after it.
func (cs *ContractSet) replace(kind contractAbi.ContractKind, address string, block uint64) {
	if rs := cs.ranges[kind]; len(rs) > 0 {
		rs[len(rs)-1].EndBlock = block
	}
	cs.open(kind, address, block+1)
}

func (cs *ContractSet) Ranges(kind contractAbi.ContractKind) []ContractRange {
	return append([]ContractRange{}, cs.ranges[kind]...)
}

// Latest returns the address currently in use for kind.
func (cs *ContractSet) Latest(kind contractAbi.ContractKind) (string, error) {
	rs := cs.ranges[kind]
	if len(rs) == 0 {
		return "", fmt.Errorf("no known address for contract '%s'", kind)
	}
	return rs[len(rs)-1].Address, nil
}

// Addresses returns every address kind ever had; old contracts keep emitting
// events after they are replaced, so reads are never clipped to a range.
func (cs *ContractSet) Addresses(kind contractAbi.ContractKind) []common.Address {
	rs := cs.ranges[kind]
	out := make([]common.Address, 0, len(rs))
	seen := make(map[string]bool)
	for _, r := range rs {
		if seen[r.Address] {
			continue
		}
		seen[r.Address] = true
		out = append(out, common.HexToAddress(r.Address))
	}
	return out
}

// KindOf returns the kind an address has been registered as.
func (cs *ContractSet) KindOf(address string) (contractAbi.ContractKind, bool) {
	address = strings.ToLower(address)
	for k, rs := range cs.ranges {
		for _, r := range rs {
			if r.Address == address {
				return k, true
			}
		}
	}
	return "", false
}

type LogFetcher interface {
	FetchLogs(ctx context.Context, q *fetcher.LogQuery) ([]types.Log, error)
}

type LogParser interface {
	ParseLogs(logs []types.Log) ([]events.Event, error)
}

// IContractRegistry resolves the contract set valid up to a block.
type IContractRegistry interface {
	Resolve(ctx context.Context, toBlock uint64) (*ContractSet, error)
}

// discovery is the cached, incrementally extended result of a registry scan.
type discovery struct {
	set             *ContractSet
	currentRegistry string
	nextFromBlock   uint64
}

type ContractRegistry struct {
	fetcher     LogFetcher
	parser      LogParser
	chainConfig *config.ChainConfig
	cache       *cache.LRU
	metricsSink *metrics.MetricsSink
	logger      *zap.Logger

	mu sync.Mutex
}

func NewContractRegistry(
	f LogFetcher,
	p LogParser,
	cc *config.ChainConfig,
	c *cache.LRU,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *ContractRegistry {
	return &ContractRegistry{
		fetcher:     f,
		parser:      p,
		chainConfig: cc,
		cache:       c,
		metricsSink: ms,
		logger:      l,
	}
}

func (cr *ContractRegistry) bootstrap() *discovery {
	contracts := cr.chainConfig.Contracts
	set := newContractSet()
	set.open(contractAbi.ContractKind_Erc20, contracts.Erc20.Address, contracts.Erc20.StartBlock)
	set.open(contractAbi.ContractKind_Stake, contracts.Stake.Address, contracts.Stake.StartBlock)
	set.open(contractAbi.ContractKind_ContractRegistry, contracts.ContractRegistry.Address, contracts.ContractRegistry.StartBlock)
	return &discovery{
		set:             set,
		currentRegistry: strings.ToLower(contracts.ContractRegistry.Address),
		nextFromBlock:   contracts.ContractRegistry.StartBlock,
	}
}

// Resolve returns a snapshot of the contract addresses known up to toBlock.
func (cr *ContractRegistry) Resolve(ctx context.Context, toBlock uint64) (*ContractSet, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := strings.ToLower(cr.chainConfig.Contracts.ContractRegistry.Address)

	var d *discovery
	if cr.cache != nil {
		if v, ok := cr.cache.Get(key); ok {
			d = v.(*discovery)
		}
	}
	if d != nil && d.nextFromBlock > toBlock {
		_ = cr.metricsSink.Incr(metricsTypes.Metric_Incr_RegistryCacheHit, nil, 1)
		return d.set.clone(), nil
	}
	_ = cr.metricsSink.Incr(metricsTypes.Metric_Incr_RegistryCacheMiss, nil, 1)

	if d == nil {
		d = cr.bootstrap()
	} else {
		d = &discovery{set: d.set.clone(), currentRegistry: d.currentRegistry, nextFromBlock: d.nextFromBlock}
	}
	if err := cr.scan(ctx, d, toBlock); err != nil {
		return nil, err
	}
	if cr.cache != nil {
		cr.cache.Add(key, d)
	}
	return d.set.clone(), nil
}

func (cr *ContractRegistry) scan(ctx context.Context, d *discovery, toBlock uint64) error {
	topics, err := contractAbi.EventTopics(contractAbi.ContractKind_ContractRegistry, "ContractAddressUpdated", "ContractRegistryUpdated")
	if err != nil {
		return err
	}

	for d.nextFromBlock <= toBlock {
		cr.logger.Sugar().Debugw("Scanning contract registry",
			zap.String("registry", d.currentRegistry),
			zap.Uint64("fromBlock", d.nextFromBlock),
			zap.Uint64("toBlock", toBlock),
		)
		logs, err := cr.fetcher.FetchLogs(ctx, &fetcher.LogQuery{
			Addresses: []common.Address{common.HexToAddress(d.currentRegistry)},
			Topics:    [][]common.Hash{topics},
			FromBlock: d.nextFromBlock,
			ToBlock:   toBlock,
			Label:     contractAbi.ContractKind_ContractRegistry.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to read contract registry %s: %w", d.currentRegistry, err)
		}
		evs, err := cr.parser.ParseLogs(logs)
		if err != nil {
			return fmt.Errorf("failed to parse contract registry logs: %w", err)
		}

		if moved := cr.apply(d, events.SortAscending(evs)); !moved {
			d.nextFromBlock = toBlock + 1
		}
	}
	return nil
}

// apply replays registry events in order and reports whether the registry itself moved.
func (cr *ContractRegistry) apply(d *discovery, evs []events.Event) bool {
	for _, e := range evs {
		switch ev := e.(type) {
		case *events.ContractAddressUpdated:
			kind := contractAbi.ContractKind(ev.ContractName)
			if !slices.Contains(contractAbi.RegistryManagedKinds, kind) {
				continue
			}
			d.set.replace(kind, ev.Addr, ev.BlockNumber)
			cr.logger.Sugar().Debugw("Contract address updated",
				zap.String("contract", ev.ContractName),
				zap.String("address", ev.Addr),
				zap.Uint64("block", ev.BlockNumber),
			)
		case *events.ContractRegistryUpdated:
			next := strings.ToLower(ev.NewContractRegistry)
			if next == d.currentRegistry {
				continue
			}
			d.set.replace(contractAbi.ContractKind_ContractRegistry, next, ev.BlockNumber)
			d.currentRegistry = next
			d.nextFromBlock = ev.BlockNumber
			cr.logger.Sugar().Infow("Contract registry moved",
				zap.String("registry", next),
				zap.Uint64("block", ev.BlockNumber),
			)
			return true
		}
	}
	return false
}

// StaticContractRegistry serves a fixed contract set, for deployments known up front.
type StaticContractRegistry struct {
	set *ContractSet
}

func NewStaticContractRegistry(set *ContractSet) *StaticContractRegistry {
	return &StaticContractRegistry{set: set}
}

func (s *StaticContractRegistry) Resolve(ctx context.Context, toBlock uint64) (*ContractSet, error) {
	return s.set.clone(), nil
}
