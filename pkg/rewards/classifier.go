package rewards

import (
	"strings"

	"github.com/orbs-network/pos-analytics/pkg/events"
)

// UniqueBlockEvents sorts the events into chain order and keeps the first event of every block.
func UniqueBlockEvents[E events.Event](evs []E) []E {
	sorted := events.SortAscending(evs)
	out := make([]E, 0, len(sorted))
	for _, e := range sorted {
		if len(out) > 0 && out[len(out)-1].Header().BlockNumber >= e.Header().BlockNumber {
			continue
		}
		out = append(out, e)
	}
	return out
}

func reversed[E any](in []E) []E {
	out := make([]E, len(in))
	for i, e := range in {
		out[len(in)-1-i] = e
	}
	return out
}

// MergeUniqueByBlock merges two event lists into one list, newest block first,
// holding a single event per block. On a shared block the lead event wins.
func MergeUniqueByBlock(lead []events.Event, follower []events.Event) []events.Event {
	l := reversed(UniqueBlockEvents(lead))
	f := reversed(UniqueBlockEvents(follower))

	out := make([]events.Event, 0, len(l)+len(f))
	i, j := 0, 0
	for i < len(l) && j < len(f) {
		lb, fb := l[i].Header().BlockNumber, f[j].Header().BlockNumber
		switch {
		case lb > fb:
			out = append(out, l[i])
			i++
		case fb > lb:
			out = append(out, f[j])
			j++
		default:
			out = append(out, l[i])
			i++
			j++
		}
	}
	out = append(out, l[i:]...)
	out = append(out, f[j:]...)
	return out
}

// SeparatedRewardEvents is the reward stream of one address split by role.
type SeparatedRewardEvents struct {
	// GuardianEvents and DelegatorEvents are ascending with one event per block
	GuardianEvents  []*events.GuardianRewardAssigned
	DelegatorEvents []*events.DelegatorRewardAssigned
	ClaimActions    []ClaimAction
	Transitions     []GuardianTransition
}

// SeparateRewardEvents splits the reward events of an address. Claims become
// claim actions, the guardian side only when the address is a guardian.
// snapshot is the live block and guardian the address is attributed to,
// startOfRewards is where the first transition opens.
func SeparateRewardEvents(evs []events.Event, snapshotBlock uint64, snapshotGuardian string, startOfRewards uint64, isGuardian bool) *SeparatedRewardEvents {
	out := &SeparatedRewardEvents{
		GuardianEvents:  make([]*events.GuardianRewardAssigned, 0),
		DelegatorEvents: make([]*events.DelegatorRewardAssigned, 0),
		ClaimActions:    make([]ClaimAction, 0),
	}

	for _, e := range events.SortAscending(evs) {
		switch ev := e.(type) {
		case *events.GuardianRewardAssigned:
			if n := len(out.GuardianEvents); n == 0 || out.GuardianEvents[n-1].BlockNumber < ev.BlockNumber {
				out.GuardianEvents = append(out.GuardianEvents, ev)
			}
		case *events.DelegatorRewardAssigned:
			if n := len(out.DelegatorEvents); n == 0 || out.DelegatorEvents[n-1].BlockNumber < ev.BlockNumber {
				out.DelegatorEvents = append(out.DelegatorEvents, ev)
			}
		case *events.StakingRewardsClaimed:
			out.ClaimActions = append(out.ClaimActions, claimActions(ev, isGuardian)...)
		}
	}
	out.Transitions = GuardianTransitions(out.DelegatorEvents, snapshotBlock, snapshotGuardian, startOfRewards)
	return out
}

// ClaimActions converts claims into actions, in the order given.
func ClaimActions(claims []*events.StakingRewardsClaimed, isGuardian bool) []ClaimAction {
	out := make([]ClaimAction, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimActions(c, isGuardian)...)
	}
	return out
}

func claimActions(c *events.StakingRewardsClaimed, isGuardian bool) []ClaimAction {
	out := make([]ClaimAction, 0, 2)
	if isGuardian {
		out = append(out, ClaimAction{
			Contract:        strings.ToLower(c.Contract),
			Event:           ClaimEvent_Guardian,
			BlockNumber:     c.BlockNumber,
			TransactionHash: c.TransactionHash,
			Amount:          c.ClaimedGuardianRewards,
		})
	}
	return append(out, ClaimAction{
		Contract:        strings.ToLower(c.Contract),
		Event:           ClaimEvent_Delegator,
		BlockNumber:     c.BlockNumber,
		TransactionHash: c.TransactionHash,
		Amount:          c.ClaimedDelegatorRewards,
	})
}

// GuardianTransitions derives which guardian a delegator was attributed to over time.
//
// Every delegator checkpoint names the guardian of the period it settled, so
// consecutive checkpoints naming the same guardian form one run closing at the
// last of them. The first run opens at startOfRewards and the last transition
// always belongs to the snapshot guardian, ending at the snapshot block.
// delegatorEvents must be ascending.
func GuardianTransitions(delegatorEvents []*events.DelegatorRewardAssigned, snapshotBlock uint64, snapshotGuardian string, startOfRewards uint64) []GuardianTransition {
	snapshotGuardian = strings.ToLower(snapshotGuardian)

	runs := make([]GuardianTransition, 0)
	for _, ev := range delegatorEvents {
		g := strings.ToLower(ev.Guardian)
		if n := len(runs); n > 0 && runs[n-1].Guardian == g {
			runs[n-1].ToBlock = ev.BlockNumber
			continue
		}
		from := startOfRewards
		if n := len(runs); n > 0 {
			from = max(runs[n-1].ToBlock+1, startOfRewards)
		}
		runs = append(runs, GuardianTransition{Guardian: g, FromBlock: from, ToBlock: ev.BlockNumber})
	}

	if n := len(runs); n > 0 && runs[n-1].Guardian == snapshotGuardian {
		runs[n-1].ToBlock = snapshotBlock
	} else {
		from := startOfRewards
		if n > 0 {
			if runs[n-1].ToBlock >= snapshotBlock && snapshotBlock > 0 {
				runs[n-1].ToBlock = snapshotBlock - 1
			}
			from = max(runs[n-1].ToBlock+1, startOfRewards)
		}
		runs = append(runs, GuardianTransition{Guardian: snapshotGuardian, FromBlock: from, ToBlock: snapshotBlock})
	}

	out := make([]GuardianTransition, 0, len(runs))
	for _, r := range runs {
		if r.FromBlock > r.ToBlock {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Guardian == r.Guardian {
			out[n-1].ToBlock = r.ToBlock
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		// the snapshot precedes the start of rewards
		out = append(out, GuardianTransition{Guardian: snapshotGuardian, FromBlock: snapshotBlock, ToBlock: snapshotBlock})
	}
	return out
}
