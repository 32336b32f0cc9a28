package rewards

import (
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/shopspring/decimal"
)

// GuardianLastAwarded is the reward accrued since the guardian's newest checkpoint.
// Without any checkpoint all of liveTotal is still unsettled.
func GuardianLastAwarded(liveTotal decimal.Decimal, own []*events.GuardianRewardAssigned) decimal.Decimal {
	if len(own) == 0 {
		return liveTotal
	}
	newest := own[0]
	for _, ev := range own[1:] {
		if events.Less(newest, ev) {
			newest = ev
		}
	}
	return liveTotal.Sub(newest.TotalAwarded)
}

// ReconstructGuardianRewards replays merged, newest first, from the live state
// and returns the guardian's accrued total at the snapshot, at every event and,
// when the window reaches it, the zero point at genesis.
//
// merged must hold the guardian's own checkpoints and the global allocations,
// one event per block, descending. live.DeltaAwarded is GuardianLastAwarded.
func ReconstructGuardianRewards(live AccountingState, merged []events.Event, window Window) []AccountingState {
	guardian := live.Guardian
	totalAwarded := live.TotalAwarded
	deltaAwarded := live.DeltaAwarded
	deltaRPW := live.DeltaRPW
	rpw := live.RPW

	out := make([]AccountingState, 0, len(merged)+2)
	out = append(out, newPoint(live.BlockNumber, "", guardian, totalAwarded))

	for _, e := range merged {
		switch ev := e.(type) {
		case *events.GuardianRewardAssigned:
			totalAwarded = ev.TotalAwarded
			deltaAwarded = ev.Amount
			deltaRPW = ev.StakingRewardsPerWeightDelta
			rpw = ev.StakingRewardsPerWeight
		case *events.StakingRewardsAllocated:
			if !deltaRPW.IsZero() {
				cur := numbers.MulDiv(deltaAwarded, rpw.Sub(ev.StakingRewardsPerWeight), deltaRPW)
				totalAwarded = totalAwarded.Sub(cur)
				deltaAwarded = deltaAwarded.Sub(cur)
			}
			deltaRPW = deltaRPW.Sub(rpw).Add(ev.StakingRewardsPerWeight)
			rpw = ev.StakingRewardsPerWeight
		default:
			continue
		}
		h := e.Header()
		out = append(out, newPoint(h.BlockNumber, h.TransactionHash, guardian, totalAwarded))
	}

	if window.ReachesGenesis() {
		out = append(out, newPoint(window.Genesis, "", guardian, decimal.Zero))
	}
	return out
}
