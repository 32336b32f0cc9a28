// Package eventReader answers "which events of this contract family match" over
// every address the family ever had.
package eventReader

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/contractRegistry"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/fetcher"
	"github.com/orbs-network/pos-analytics/pkg/utils"
	"go.uber.org/zap"
)

// IEventReader reads decoded events of a contract kind in chain order.
type IEventReader interface {
	ReadEvents(ctx context.Context, kind contractAbi.ContractKind, topics [][]common.Hash, fromBlock uint64, toBlock uint64) ([]events.Event, error)
}

type LogFetcher interface {
	FetchLogs(ctx context.Context, q *fetcher.LogQuery) ([]types.Log, error)
}

type LogParser interface {
	ParseLogs(logs []types.Log) ([]events.Event, error)
}

type EventReader struct {
	registry contractRegistry.IContractRegistry
	fetcher  LogFetcher
	parser   LogParser
	logger   *zap.Logger
}

func NewEventReader(
	registry contractRegistry.IContractRegistry,
	f LogFetcher,
	p LogParser,
	l *zap.Logger,
) *EventReader {
	return &EventReader{
		registry: registry,
		fetcher:  f,
		parser:   p,
		logger:   l,
	}
}

func (er *EventReader) ReadEvents(
	ctx context.Context,
	kind contractAbi.ContractKind,
	topics [][]common.Hash,
	fromBlock uint64,
	toBlock uint64,
) ([]events.Event, error) {
	if fromBlock > toBlock {
		return []events.Event{}, nil
	}
	set, err := er.registry.Resolve(ctx, toBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contracts: %w", err)
	}
	addresses := set.Addresses(kind)
	if len(addresses) == 0 {
		er.logger.Sugar().Debugw("No addresses known for contract kind", zap.String("kind", kind.String()))
		return []events.Event{}, nil
	}

	logs, err := er.fetcher.FetchLogs(ctx, &fetcher.LogQuery{
		Addresses: addresses,
		Topics:    topics,
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Label:     kind.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s events: %w", kind, err)
	}
	evs, err := er.parser.ParseLogs(logs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s events: %w", kind, err)
	}
	return events.SortAscending(evs), nil
}

// Filter builds a topic filter. No event names matches every event of the
// contract; an empty address leaves the first indexed argument unfiltered.
func Filter(kind contractAbi.ContractKind, address string, eventNames ...string) ([][]common.Hash, error) {
	var first []common.Hash
	if len(eventNames) > 0 {
		topics, err := contractAbi.EventTopics(kind, eventNames...)
		if err != nil {
			return nil, err
		}
		first = topics
	}
	if address == "" {
		if first == nil {
			return nil, nil
		}
		return [][]common.Hash{first}, nil
	}
	return [][]common.Hash{first, {utils.AddressToTopic(address)}}, nil
}

// MustFilter is Filter for the event names declared in contractAbi.
func MustFilter(kind contractAbi.ContractKind, address string, eventNames ...string) [][]common.Hash {
	f, err := Filter(kind, address, eventNames...)
	if err != nil {
		panic(err)
	}
	return f
}
