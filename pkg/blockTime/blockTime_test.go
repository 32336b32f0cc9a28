package blockTime

import (
	"testing"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChainConfig(t *testing.T, chain config.Chain) *config.ChainConfig {
	cc, err := config.GetChainConfig(chain)
	require.Nil(t, err)
	return cc
}

func Test_Clock(t *testing.T) {
	t.Run("Should estimate the reference blocks exactly", func(t *testing.T) {
		cc := mustChainConfig(t, config.Chain_Ethereum)
		c := NewClock(cc)

		assert.Equal(t, cc.StartOfPos.Time, c.EstimatedTime(cc.StartOfPos.Number))
		assert.Equal(t, cc.RefBlock.Time, c.EstimatedTime(cc.RefBlock.Number))
		assert.InDelta(t, 13.3, c.AverageBlockTime(), 0.5)
	})

	t.Run("Should interpolate and extrapolate linearly", func(t *testing.T) {
		cc := &config.ChainConfig{
			ChainId:    1,
			StartOfPos: config.BlockRef{Number: 100, Time: 1000},
			RefBlock:   config.BlockRef{Number: 200, Time: 2300},
		}
		c := NewClock(cc)
		assert.Equal(t, int64(1650), c.EstimatedTime(150))
		assert.Equal(t, int64(3600), c.EstimatedTime(300))
		assert.Equal(t, int64(987), c.EstimatedTime(99))
	})

	t.Run("Should estimate a missing genesis time on polygon", func(t *testing.T) {
		cc := mustChainConfig(t, config.Chain_Polygon)
		c := NewClock(cc)

		rewards := c.StartOfRewards()
		assert.Equal(t, cc.StartOfRewards.Number, rewards.Number)
		assert.Equal(t, c.EstimatedTime(rewards.Number), rewards.Time)
		assert.True(t, rewards.Time > cc.StartOfPos.Time)

		eth := NewClock(mustChainConfig(t, config.Chain_Ethereum))
		assert.Equal(t, int64(1604459620), eth.StartOfRewards().Time)
	})
}

func Test_QueryWindows(t *testing.T) {
	cc := mustChainConfig(t, config.Chain_Ethereum)
	c := NewClock(cc)
	now := uint64(15000000)

	tests := []struct {
		name      string
		potential int64
		want      uint64
	}{
		{"zero is genesis", 0, cc.StartOfRewards.Number},
		{"minus one is genesis", -1, cc.StartOfRewards.Number},
		{"negative counts back from now", -1000, now - 1000},
		{"positive is absolute", 12000000, 12000000},
		{"clamped to genesis", 5, cc.StartOfRewards.Number},
		{"far back is clamped to genesis", -20000000, cc.StartOfRewards.Number},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.QueryRewardsBlock(tt.potential, now))
		})
	}

	assert.Equal(t, cc.StartOfPos.Number, c.QueryPosBlock(0, now))
	assert.Equal(t, cc.StartOfDelegation.Number, c.QueryDelegationBlock(-1, now))
	assert.Equal(t, uint64(14000000), c.QueryDelegationBlock(14000000, now))
}

func Test_TxLink(t *testing.T) {
	eth := NewClock(&config.ChainConfig{ChainId: 1})
	polygon := NewClock(&config.ChainConfig{ChainId: 137})
	custom := NewClock(&config.ChainConfig{ChainId: 5, TxExplorerUrl: "https://explorer.example/tx/"})

	assert.Equal(t, "https://etherscan.io/tx/0xabc", eth.TxLink("0xabc"))
	assert.Equal(t, "https://polygonscan.com/tx/0xabc", polygon.TxLink("0xabc"))
	assert.Equal(t, "https://explorer.example/tx/0xabc", custom.TxLink("0xabc"))
	assert.Equal(t, "", eth.TxLink(""))
}
