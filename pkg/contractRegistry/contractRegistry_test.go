package contractRegistry

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/tests"
	"github.com/orbs-network/pos-analytics/pkg/cache"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/fetcher"
	"github.com/orbs-network/pos-analytics/pkg/transactionLogParser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	registryV1    = "0x1000000000000000000000000000000000000001"
	registryV2    = "0x2000000000000000000000000000000000000002"
	delegationsV1 = "0x3000000000000000000000000000000000000003"
	delegationsV2 = "0x4000000000000000000000000000000000000004"
	rewardsV1     = "0x5000000000000000000000000000000000000005"
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

func addressUpdated(registry string, block uint64, name string, addr string) types.Log {
	return tests.MustBuildLog(contractAbi.ContractKind_ContractRegistry, "ContractAddressUpdated", tests.LogPosition{
		Contract: registry, Block: block,
	}, map[string]interface{}{
		"contractName":    name,
		"addr":            common.HexToAddress(addr),
		"managedContract": true,
	})
}

func registryUpdated(registry string, block uint64, next string) types.Log {
	return tests.MustBuildLog(contractAbi.ContractKind_ContractRegistry, "ContractRegistryUpdated", tests.LogPosition{
		Contract: registry, Block: block, LogIndex: 9,
	}, map[string]interface{}{
		"newContractRegistry": common.HexToAddress(next),
	})
}

func testChainConfig() *config.ChainConfig {
	cc := tests.GetChainConfig()
	cc.Contracts.ContractRegistry = config.ContractBootstrap{Address: registryV1, StartBlock: 100}
	return cc
}

func Test_ContractRegistry(t *testing.T) {
	l := tests.GetLogger()
	tlp, err := transactionLogParser.NewTransactionLogParser(l)
	require.Nil(t, err)

	t.Run("Should discover addresses across a registry migration", func(t *testing.T) {
		f := &fakeFetcher{logs: []types.Log{
			addressUpdated(registryV1, 110, "delegations", delegationsV1),
			addressUpdated(registryV1, 111, "stakingRewards", rewardsV1),
			addressUpdated(registryV1, 112, "unknownContract", rewardsV1),
			registryUpdated(registryV1, 150, registryV2),
			// the old registry keeps emitting but is no longer authoritative
			addressUpdated(registryV1, 160, "delegations", rewardsV1),
			addressUpdated(registryV2, 170, "delegations", delegationsV2),
		}}
		cr := NewContractRegistry(f, tlp, testChainConfig(), nil, nil, l)

		set, err := cr.Resolve(context.Background(), 1000)
		require.Nil(t, err)

		ranges := set.Ranges(contractAbi.ContractKind_Delegations)
		require.Len(t, ranges, 2)
		assert.Equal(t, ContractRange{Address: delegationsV1, StartBlock: 111, EndBlock: 170}, ranges[0])
		assert.Equal(t, delegationsV2, ranges[1].Address)
		assert.Equal(t, uint64(171), ranges[1].StartBlock)
		assert.True(t, ranges[1].IsOpen())

		latest, err := set.Latest(contractAbi.ContractKind_StakingRewards)
		require.Nil(t, err)
		assert.Equal(t, rewardsV1, latest)

		latestRegistry, err := set.Latest(contractAbi.ContractKind_ContractRegistry)
		require.Nil(t, err)
		assert.Equal(t, registryV2, latestRegistry)

		assert.Len(t, set.Addresses(contractAbi.ContractKind_Delegations), 2)
		_, err = set.Latest(contractAbi.ContractKind_FeesAndBootstrapRewards)
		assert.NotNil(t, err)

		kind, ok := set.KindOf(strings.ToUpper(delegationsV2))
		assert.True(t, ok)
		assert.Equal(t, contractAbi.ContractKind_Delegations, kind)
	})

	t.Run("Should extend a cached discovery incrementally", func(t *testing.T) {
		f := &fakeFetcher{logs: []types.Log{
			addressUpdated(registryV1, 110, "delegations", delegationsV1),
			addressUpdated(registryV1, 300, "delegations", delegationsV2),
		}}
		lru, err := cache.NewLRU(8)
		require.Nil(t, err)
		cr := NewContractRegistry(f, tlp, testChainConfig(), lru, nil, l)

		first, err := cr.Resolve(context.Background(), 200)
		require.Nil(t, err)
		assert.Len(t, first.Ranges(contractAbi.ContractKind_Delegations), 1)
		require.Len(t, f.queries, 1)

		_, err = cr.Resolve(context.Background(), 150)
		require.Nil(t, err)
		assert.Len(t, f.queries, 1)

		second, err := cr.Resolve(context.Background(), 400)
		require.Nil(t, err)
		assert.Len(t, second.Ranges(contractAbi.ContractKind_Delegations), 2)
		require.Len(t, f.queries, 2)
		assert.Equal(t, uint64(201), f.queries[1].FromBlock)

		// snapshots handed out earlier are never mutated
		assert.Len(t, first.Ranges(contractAbi.ContractKind_Delegations), 1)
		assert.True(t, first.Ranges(contractAbi.ContractKind_Delegations)[0].IsOpen())
	})

	t.Run("Should always know the bootstrap contracts", func(t *testing.T) {
		cr := NewContractRegistry(&fakeFetcher{}, tlp, testChainConfig(), nil, nil, l)
		set, err := cr.Resolve(context.Background(), 1000)
		require.Nil(t, err)

		stake, err := set.Latest(contractAbi.ContractKind_Stake)
		require.Nil(t, err)
		assert.Equal(t, tests.GetChainConfig().Contracts.Stake.Address, stake)

		erc20, err := set.Latest(contractAbi.ContractKind_Erc20)
		require.Nil(t, err)
		assert.Equal(t, tests.GetChainConfig().Contracts.Erc20.Address, erc20)
	})
}
