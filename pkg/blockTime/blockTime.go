// Package blockTime estimates block timestamps from two reference blocks and
// resolves the block windows queries start from.
package blockTime

import (
	"math"

	"github.com/orbs-network/pos-analytics/internal/config"
)

const (
	etherscanTxUrl   = "https://etherscan.io/tx/"
	polygonscanTxUrl = "https://polygonscan.com/tx/"
)

// Clock estimates times on one chain assuming a constant average block time
// between the start of PoS and the reference block.
type Clock struct {
	chainConfig  *config.ChainConfig
	avgBlockTime float64
}

func NewClock(cc *config.ChainConfig) *Clock {
	start, ref := cc.StartOfPos, cc.RefBlock
	avg := 0.0
	if ref.Number != start.Number {
		avg = float64(ref.Time-start.Time) / (float64(ref.Number) - float64(start.Number))
	}
	return &Clock{
		chainConfig:  cc,
		avgBlockTime: avg,
	}
}

func (c *Clock) AverageBlockTime() float64 {
	return c.avgBlockTime
}

// EstimatedTime returns the estimated unix time of a block.
func (c *Clock) EstimatedTime(blockNumber uint64) int64 {
	start := c.chainConfig.StartOfPos
	blocks := float64(blockNumber) - float64(start.Number)
	return start.Time + int64(math.Round(blocks*c.avgBlockTime))
}

// withTime fills a missing reference time with the estimate.
func (c *Clock) withTime(b config.BlockRef) config.BlockRef {
	if b.Time == 0 {
		b.Time = c.EstimatedTime(b.Number)
	}
	return b
}

func (c *Clock) StartOfPos() config.BlockRef {
	return c.withTime(c.chainConfig.StartOfPos)
}

func (c *Clock) StartOfRewards() config.BlockRef {
	return c.withTime(c.chainConfig.StartOfRewards)
}

func (c *Clock) StartOfDelegation() config.BlockRef {
	return c.withTime(c.chainConfig.StartOfDelegation)
}

// resolveStart maps a requested start onto a block: 0 and -1 mean genesis,
// other negative values count back from now. The result never precedes genesis.
func resolveStart(genesis uint64, potentialStart int64, nowBlock uint64) uint64 {
	if potentialStart == 0 || potentialStart == -1 {
		return genesis
	}
	var start int64
	if potentialStart < 0 {
		start = int64(nowBlock) + potentialStart
	} else {
		start = potentialStart
	}
	if start < 0 || uint64(start) < genesis {
		return genesis
	}
	return uint64(start)
}

func (c *Clock) QueryPosBlock(potentialStart int64, nowBlock uint64) uint64 {
	return resolveStart(c.chainConfig.StartOfPos.Number, potentialStart, nowBlock)
}

func (c *Clock) QueryRewardsBlock(potentialStart int64, nowBlock uint64) uint64 {
	return resolveStart(c.chainConfig.StartOfRewards.Number, potentialStart, nowBlock)
}

func (c *Clock) QueryDelegationBlock(potentialStart int64, nowBlock uint64) uint64 {
	return resolveStart(c.chainConfig.StartOfDelegation.Number, potentialStart, nowBlock)
}

// TxLink returns the block explorer page of a transaction, or nothing for synthetic points.
func (c *Clock) TxLink(txHash string) string {
	if txHash == "" {
		return ""
	}
	if c.chainConfig.TxExplorerUrl != "" {
		return c.chainConfig.TxExplorerUrl + txHash
	}
	if c.chainConfig.ChainId == 1 {
		return etherscanTxUrl + txHash
	}
	return polygonscanTxUrl + txHash
}
