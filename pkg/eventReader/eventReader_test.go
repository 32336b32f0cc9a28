package eventReader

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/tests"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/contractRegistry"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/fetcher"
	"github.com/orbs-network/pos-analytics/pkg/transactionLogParser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	registry      = "0x1000000000000000000000000000000000000001"
	delegationsV1 = "0x3000000000000000000000000000000000000003"
	delegationsV2 = "0x4000000000000000000000000000000000000004"
	delegator     = "0xaaaa00000000000000000000000000000000aaaa"
	guardianA     = "0xbbbb00000000000000000000000000000000bbbb"
	guardianB     = "0xcccc00000000000000000000000000000000cccc"
)

type fakeFetcher struct {
	logs    []types.Log
	queries []*fetcher.LogQuery
}

func (f *fakeFetcher) FetchLogs(ctx context.Context, q *fetcher.LogQuery) ([]types.Log, error) {
	f.queries = append(f.queries, q)
	out := make([]types.Log, 0)
	for _, lg := range f.logs {
		if lg.BlockNumber < q.FromBlock || lg.BlockNumber > q.ToBlock {
			continue
		}
		for _, a := range q.Addresses {
			if a == lg.Address {
				out = append(out, lg)
			}
		}
	}
	return out, nil
}

func delegated(contract string, block uint64, from string, to string) types.Log {
	return tests.MustBuildLog(contractAbi.ContractKind_Delegations, "Delegated", tests.LogPosition{
		Contract: contract, Block: block,
	}, map[string]interface{}{
		"from": common.HexToAddress(from),
		"to":   common.HexToAddress(to),
	})
}

func addressUpdated(block uint64, addr string) types.Log {
	return tests.MustBuildLog(contractAbi.ContractKind_ContractRegistry, "ContractAddressUpdated", tests.LogPosition{
		Contract: registry, Block: block,
	}, map[string]interface{}{
		"contractName":    "delegations",
		"addr":            common.HexToAddress(addr),
		"managedContract": true,
	})
}

func Test_EventReader(t *testing.T) {
	l := tests.GetLogger()
	tlp, err := transactionLogParser.NewTransactionLogParser(l)
	require.Nil(t, err)

	cc := tests.GetChainConfig()
	cc.Contracts.ContractRegistry.Address = registry
	cc.Contracts.ContractRegistry.StartBlock = 100

	t.Run("Should read events from every address of a contract kind", func(t *testing.T) {
		f := &fakeFetcher{logs: []types.Log{
			addressUpdated(110, delegationsV1),
			addressUpdated(300, delegationsV2),
			delegated(delegationsV2, 400, delegator, guardianB),
			delegated(delegationsV1, 200, delegator, guardianA),
			// emitted by the old contract after it was replaced
			delegated(delegationsV1, 350, delegator, guardianA),
		}}
		cr := contractRegistry.NewContractRegistry(f, tlp, cc, nil, nil, l)
		er := NewEventReader(cr, f, tlp, l)

		evs, err := er.ReadEvents(context.Background(), contractAbi.ContractKind_Delegations, nil, 150, 1000)
		require.Nil(t, err)
		require.Len(t, evs, 3)

		typed := events.OfType[*events.Delegated](evs)
		require.Len(t, typed, 3)
		assert.Equal(t, uint64(200), typed[0].BlockNumber)
		assert.Equal(t, uint64(350), typed[1].BlockNumber)
		assert.Equal(t, guardianB, typed[2].To)

		last := f.queries[len(f.queries)-1]
		assert.Equal(t, contractAbi.ContractKind_Delegations.String(), last.Label)
		assert.Len(t, last.Addresses, 2)
		assert.Equal(t, uint64(150), last.FromBlock)
	})

	t.Run("Should return nothing for a kind without addresses", func(t *testing.T) {
		f := &fakeFetcher{}
		cr := contractRegistry.NewContractRegistry(f, tlp, cc, nil, nil, l)
		er := NewEventReader(cr, f, tlp, l)

		evs, err := er.ReadEvents(context.Background(), contractAbi.ContractKind_StakingRewards, nil, 100, 1000)
		require.Nil(t, err)
		assert.Len(t, evs, 0)
	})

	t.Run("Should return nothing for an inverted window", func(t *testing.T) {
		f := &fakeFetcher{}
		cr := contractRegistry.NewContractRegistry(f, tlp, cc, nil, nil, l)
		er := NewEventReader(cr, f, tlp, l)

		evs, err := er.ReadEvents(context.Background(), contractAbi.ContractKind_Delegations, nil, 1000, 100)
		require.Nil(t, err)
		assert.Len(t, evs, 0)
		assert.Len(t, f.queries, 0)
	})
}

func Test_Filter(t *testing.T) {
	t.Run("Should match any event without names or address", func(t *testing.T) {
		f, err := Filter(contractAbi.ContractKind_Stake, "")
		require.Nil(t, err)
		assert.Nil(t, f)
	})
	t.Run("Should filter the first indexed argument", func(t *testing.T) {
		f, err := Filter(contractAbi.ContractKind_Stake, delegator, "Staked", "Unstaked")
		require.Nil(t, err)
		require.Len(t, f, 2)
		assert.Len(t, f[0], 2)
		assert.Equal(t, contractAbi.MustEventTopic(contractAbi.ContractKind_Stake, "Staked"), f[0][0])
		assert.Equal(t, common.HexToHash(delegator), f[1][0])
	})
	t.Run("Should leave topic0 open for an address only filter", func(t *testing.T) {
		f := MustFilter(contractAbi.ContractKind_StakingRewards, guardianA)
		require.Len(t, f, 2)
		assert.Nil(t, f[0])
	})
	t.Run("Should reject an unknown event", func(t *testing.T) {
		_, err := Filter(contractAbi.ContractKind_Stake, "", "Nope")
		assert.NotNil(t, err)
	})
}
