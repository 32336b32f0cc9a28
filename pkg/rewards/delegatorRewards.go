package rewards

import (
	"strings"

	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/shopspring/decimal"
)

// GuardianRPTCheckpoints replays merged, newest first, from the guardian's live
// accrual and returns the guardian reward per token after every event that
// leaves a non zero reward per weight delta, descending.
func GuardianRPTCheckpoints(live AccountingState, merged []events.Event) []RPTCheckpoint {
	deltaRPW := live.DeltaRPW
	rpw := live.RPW
	deltaRPT := live.DeltaRPT
	rpt := live.RPT

	out := make([]RPTCheckpoint, 0, len(merged))
	for _, e := range merged {
		switch ev := e.(type) {
		case *events.GuardianRewardAssigned:
			deltaRPW = ev.StakingRewardsPerWeightDelta
			rpw = ev.StakingRewardsPerWeight
			deltaRPT = ev.DelegatorRewardsPerTokenDelta
			rpt = ev.DelegatorRewardsPerToken
		case *events.StakingRewardsAllocated:
			if !deltaRPW.IsZero() {
				added := numbers.MulDiv(rpw.Sub(ev.StakingRewardsPerWeight), deltaRPT, deltaRPW)
				deltaRPW = deltaRPW.Sub(rpw).Add(ev.StakingRewardsPerWeight)
				deltaRPT = deltaRPT.Sub(added)
				rpt = rpt.Sub(added)
			}
			rpw = ev.StakingRewardsPerWeight
		default:
			continue
		}
		if !deltaRPW.IsZero() {
			h := e.Header()
			out = append(out, RPTCheckpoint{BlockNumber: h.BlockNumber, TransactionHash: h.TransactionHash, RPT: rpt})
		}
	}
	return out
}

// ReconstructDelegatorRewards returns the delegator's accrued total at the
// snapshot, at every checkpoint of its own and at every guardian reward per
// token checkpoint in between, newest first.
//
// Between two of its own checkpoints a delegator accrues in proportion to the
// growth of its guardian's reward per token, so every guardian checkpoint
// interpolates the settled amount of the period it falls into. Checkpoints
// older than the oldest own checkpoint are extrapolated from that period and
// never go below the total it started from.
//
// merged is the guardians' checkpoints and the global allocations, one event
// per block, descending.
func ReconstructDelegatorRewards(snap DelegatorSnapshot, delegatorEvents []*events.DelegatorRewardAssigned, merged []events.Event, window Window) []AccountingState {
	checkpoints := GuardianRPTCheckpoints(snap.Guardian, merged)
	own := reversed(UniqueBlockEvents(delegatorEvents))

	totalAwarded := snap.Delegator.TotalAwarded
	awarded := snap.Delegator.DeltaAwarded
	deltaRPT := snap.Delegator.DeltaRPT
	guardianRPT := snap.Guardian.RPT
	guardian := strings.ToLower(snap.Delegator.Guardian)

	out := make([]AccountingState, 0, len(checkpoints)+len(own)+2)
	out = append(out, newPoint(snap.Delegator.BlockNumber, "", guardian, totalAwarded))

	next := 0
	for _, ev := range own {
		for ; next < len(checkpoints); next++ {
			cp := checkpoints[next]
			if cp.BlockNumber < ev.BlockNumber {
				break
			}
			prevRPT := guardianRPT
			guardianRPT = cp.RPT
			if cp.BlockNumber == ev.BlockNumber {
				next++
				break
			}
			if !deltaRPT.IsZero() {
				totalAwarded = totalAwarded.Sub(numbers.MulDiv(prevRPT.Sub(guardianRPT), awarded, deltaRPT))
				out = append(out, newPoint(cp.BlockNumber, cp.TransactionHash, guardian, totalAwarded))
			}
		}

		totalAwarded = ev.TotalAwarded
		guardian = strings.ToLower(ev.Guardian)
		awarded = ev.Amount
		deltaRPT = ev.DelegatorRewardsPerTokenDelta
		guardianRPT = ev.DelegatorRewardsPerToken
		out = append(out, newPoint(ev.BlockNumber, ev.TransactionHash, guardian, totalAwarded))
	}

	floor := decimal.Max(totalAwarded.Sub(awarded), decimal.Zero)
	for ; next < len(checkpoints); next++ {
		cp := checkpoints[next]
		prevRPT := guardianRPT
		guardianRPT = cp.RPT
		if deltaRPT.IsZero() {
			continue
		}
		totalAwarded = decimal.Max(totalAwarded.Sub(numbers.MulDiv(prevRPT.Sub(guardianRPT), awarded, deltaRPT)), floor)
		out = append(out, newPoint(cp.BlockNumber, cp.TransactionHash, guardian, totalAwarded))
	}

	if window.ReachesGenesis() {
		out = append(out, newPoint(window.Genesis, "", guardian, decimal.Zero))
	}
	return out
}
