// Package rewards reconstructs the staking reward history of guardians and
// delegators. Starting from the live contract state it replays the reward
// events backwards, newest first, and derives the accrued total at every
// event block.
package rewards

import (
	"github.com/shopspring/decimal"
)

const (
	ClaimEvent_Guardian  = "GuardianStakingRewardsClaimed"
	ClaimEvent_Delegator = "DelegatorStakingRewardsClaimed"
)

// AccountingState is the reward accounting of one address at a block. At the
// live block every field is contract ground truth, earlier states are derived.
type AccountingState struct {
	BlockNumber     uint64
	TransactionHash string
	Guardian        string
	TotalAwarded    decimal.Decimal
	DeltaAwarded    decimal.Decimal
	RPW             decimal.Decimal
	DeltaRPW        decimal.Decimal
	RPT             decimal.Decimal
	DeltaRPT        decimal.Decimal
}

// newPoint is a derived state carrying only what the series need.
func newPoint(block uint64, txHash string, guardian string, total decimal.Decimal) AccountingState {
	return AccountingState{
		BlockNumber:     block,
		TransactionHash: txHash,
		Guardian:        guardian,
		TotalAwarded:    total,
	}
}

// DelegatorSnapshot pairs a delegator's live accounting with the accrual of its guardian.
type DelegatorSnapshot struct {
	// Delegator carries TotalAwarded, DeltaAwarded (the reward accrued since the
	// last checkpoint), DeltaRPT and Guardian
	Delegator AccountingState
	// Guardian carries RPW, DeltaRPW, RPT and DeltaRPT
	Guardian AccountingState
}

// GuardianTransition is the block range a delegator was attributed to a guardian, inclusive.
type GuardianTransition struct {
	Guardian  string
	FromBlock uint64
	ToBlock   uint64
}

// RPTCheckpoint is a guardian's reward per token at a block.
type RPTCheckpoint struct {
	BlockNumber     uint64
	TransactionHash string
	RPT             decimal.Decimal
}

type ClaimAction struct {
	Contract        string
	Event           string
	BlockNumber     uint64
	TransactionHash string
	Amount          decimal.Decimal
}

// Window bounds a reconstruction. The zero point at Genesis is only part of the
// series when the window reaches back to it.
type Window struct {
	FromBlock uint64
	Genesis   uint64
}

func (w Window) ReachesGenesis() bool {
	return w.FromBlock <= w.Genesis
}
