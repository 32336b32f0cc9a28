package transactionLogParser

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/tests"
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stakeContract   = "0x01d59af68e2dcb44e04c50e05f62e7043f2656c3"
	rewardsContract = "0xb5303c22396333d9d27dc45bd8d2ee3ef8c2ba4a"
	guardianAddr    = "0x1a2b3c4d5e6f708192a3b4c5d6e7f80910111213"
	delegatorAddr   = "0x99887766554433221100ffeeddccbbaa99887766"
)

func Test_TransactionLogParser(t *testing.T) {
	tlp, err := NewTransactionLogParser(tests.GetLogger())
	require.Nil(t, err)

	t.Run("Should decode a stake event", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_Stake, "Staked", tests.LogPosition{
			Contract: stakeContract, Block: 10, TxIndex: 2, LogIndex: 5,
		}, map[string]interface{}{
			"stakeOwner":        common.HexToAddress(delegatorAddr),
			"amount":            tests.Wei(100),
			"totalStakedAmount": tests.Wei(100),
		})

		e, err := tlp.ParseLog(&lg)
		require.Nil(t, err)

		staked, ok := e.(*events.StakeChanged)
		require.True(t, ok)
		assert.Equal(t, events.Kind_Staked, staked.Kind)
		assert.Equal(t, delegatorAddr, staked.StakeOwner)
		assert.Equal(t, stakeContract, staked.Contract)
		assert.True(t, staked.Amount.Equal(numbers.Tokens(100)))
		assert.Equal(t, uint64(10), staked.BlockNumber)
		assert.Equal(t, uint64(2), staked.TransactionIndex)
		assert.Equal(t, uint64(5), staked.LogIndex)
	})

	t.Run("Should map indexed topics to the right inputs", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_Delegations, "DelegatedStakeChanged", tests.LogPosition{
			Contract: stakeContract, Block: 11,
		}, map[string]interface{}{
			"addr":                      common.HexToAddress(guardianAddr),
			"selfDelegatedStake":        tests.Wei(1000),
			"delegatedStake":            tests.Wei(1500),
			"delegator":                 common.HexToAddress(delegatorAddr),
			"delegatorContributedStake": tests.Wei(500),
		})

		e, err := tlp.ParseLog(&lg)
		require.Nil(t, err)

		dsc, ok := e.(*events.DelegatedStakeChanged)
		require.True(t, ok)
		assert.Equal(t, guardianAddr, dsc.Guardian)
		assert.Equal(t, delegatorAddr, dsc.Delegator)
		assert.True(t, dsc.SelfDelegatedStake.Equal(numbers.Tokens(1000)))
		assert.True(t, dsc.DelegatedStake.Equal(numbers.Tokens(1500)))
		assert.True(t, dsc.DelegatorContributedStake.Equal(numbers.Tokens(500)))
	})

	t.Run("Should decode a delegation with no data", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_Delegations, "Delegated", tests.LogPosition{
			Contract: stakeContract, Block: 12,
		}, map[string]interface{}{
			"from": common.HexToAddress(delegatorAddr),
			"to":   common.HexToAddress(guardianAddr),
		})
		assert.Len(t, lg.Data, 0)

		e, err := tlp.ParseLog(&lg)
		require.Nil(t, err)
		d := e.(*events.Delegated)
		assert.Equal(t, delegatorAddr, d.From)
		assert.Equal(t, guardianAddr, d.To)
	})

	t.Run("Should decode reward checkpoints", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_StakingRewards, "DelegatorStakingRewardsAssigned", tests.LogPosition{
			Contract: rewardsContract, Block: 13,
		}, map[string]interface{}{
			"delegator":                     common.HexToAddress(delegatorAddr),
			"amount":                        tests.Wei(3),
			"totalAwarded":                  tests.Wei(30),
			"guardian":                      common.HexToAddress(guardianAddr),
			"delegatorRewardsPerToken":      big.NewInt(777),
			"delegatorRewardsPerTokenDelta": big.NewInt(7),
		})
		e, err := tlp.ParseLog(&lg)
		require.Nil(t, err)

		dra := e.(*events.DelegatorRewardAssigned)
		assert.Equal(t, events.Kind_DelegatorRewardAssigned, dra.Kind)
		assert.Equal(t, guardianAddr, dra.Guardian)
		assert.Equal(t, int64(777), dra.DelegatorRewardsPerToken.IntPart())
		assert.Equal(t, int64(7), dra.DelegatorRewardsPerTokenDelta.IntPart())
		assert.True(t, dra.TotalAwarded.Equal(numbers.Tokens(30)))
	})

	t.Run("Should decode registry strings and bools", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_ContractRegistry, "ContractAddressUpdated", tests.LogPosition{
			Contract: rewardsContract, Block: 14,
		}, map[string]interface{}{
			"contractName":    "stakingRewards",
			"addr":            common.HexToAddress(rewardsContract),
			"managedContract": true,
		})
		e, err := tlp.ParseLog(&lg)
		require.Nil(t, err)

		cau := e.(*events.ContractAddressUpdated)
		assert.Equal(t, "stakingRewards", cau.ContractName)
		assert.Equal(t, rewardsContract, cau.Addr)
		assert.True(t, cau.ManagedContract)
	})

	t.Run("Should skip unknown signatures", func(t *testing.T) {
		known := tests.MustBuildLog(contractAbi.ContractKind_StakingRewards, "StakingRewardsAllocated", tests.LogPosition{
			Contract: rewardsContract, Block: 15,
		}, map[string]interface{}{
			"allocatedRewards":        tests.Wei(1),
			"stakingRewardsPerWeight": big.NewInt(42),
		})
		unknown := types.Log{
			Address: common.HexToAddress(rewardsContract),
			Topics:  []common.Hash{common.HexToHash("0xdeadbeef")},
		}
		anonymous := types.Log{Address: common.HexToAddress(rewardsContract)}

		evs, err := tlp.ParseLogs([]types.Log{unknown, known, anonymous})
		require.Nil(t, err)
		require.Len(t, evs, 1)
		assert.Equal(t, events.Kind_StakingRewardsAllocated, evs[0].Header().Kind)
	})

	t.Run("Should fail when an indexed topic is missing", func(t *testing.T) {
		lg := tests.MustBuildLog(contractAbi.ContractKind_Stake, "Withdrew", tests.LogPosition{
			Contract: stakeContract, Block: 16,
		}, map[string]interface{}{
			"stakeOwner":        common.HexToAddress(delegatorAddr),
			"amount":            tests.Wei(1),
			"totalStakedAmount": tests.Wei(1),
		})
		lg.Topics = lg.Topics[:1]

		_, err := tlp.ParseLogs([]types.Log{lg})
		assert.NotNil(t, err)
	})
}

func Test_ReadBool(t *testing.T) {
	word := make([]byte, 32)
	v, err := readBool(word)
	assert.Nil(t, err)
	assert.False(t, v)

	word[31] = 1
	v, err = readBool(word)
	assert.Nil(t, err)
	assert.True(t, v)

	word[0] = 1
	_, err = readBool(word)
	assert.NotNil(t, err)

	_, err = readBool([]byte{1})
	assert.NotNil(t, err)
}
