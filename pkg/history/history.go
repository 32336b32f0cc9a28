// Package history folds stake, delegation and fee events of an address into
// time series and actions. Series are returned newest first; bounding them
// with the live head and genesis tail is left to the caller.
package history

import (
	"sort"
	"strings"

	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/utils"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	ActionEvent_FeesClaimed             = "FeesClaimed"
	ActionEvent_BootstrapRewardsClaimed = "BootstrapRewardsClaimed"
)

// Action is a user visible operation. Amount, CurrentStake and To are only set
// for the kinds of actions carrying them.
type Action struct {
	Contract        string
	Event           string
	BlockNumber     uint64
	TransactionHash string
	Amount          decimal.NullDecimal
	CurrentStake    decimal.NullDecimal
	To              string
}

type StakePoint struct {
	BlockNumber     uint64
	TransactionHash string
	Stake           decimal.Decimal
	Cooldown        decimal.Decimal
}

// RewardPoint is a checkpoint of a reward balance. GuardianFrom is only set on
// delegator rewards.
type RewardPoint struct {
	BlockNumber     uint64
	TransactionHash string
	Amount          decimal.Decimal
	TotalAwarded    decimal.Decimal
	GuardianFrom    string
}

func newAction(m events.Meta, event string) Action {
	return Action{
		Contract:        strings.ToLower(m.Contract),
		Event:           event,
		BlockNumber:     m.BlockNumber,
		TransactionHash: m.TransactionHash,
	}
}

// SortActionsDescending orders actions newest block first, keeping the order of same block actions.
func SortActionsDescending(actions []Action) []Action {
	out := append([]Action{}, actions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BlockNumber > out[j].BlockNumber
	})
	return out
}

// Bound puts the live head in front of a descending series and the genesis tail, if any, behind it.
func Bound[T any](series []T, head T, tail *T) []T {
	out := make([]T, 0, len(series)+2)
	out = append(out, head)
	out = append(out, series...)
	if tail != nil {
		out = append(out, *tail)
	}
	return out
}

// StakeHistory replays the stake events of one owner in chain order.
// Cooldown is not clamped, a negative cooldown is reported as is.
func StakeHistory(evs []*events.StakeChanged) ([]StakePoint, []Action) {
	total := decimal.Zero
	cooldown := decimal.Zero

	points := make([]StakePoint, 0, len(evs))
	actions := make([]Action, 0, len(evs))
	for _, ev := range events.SortAscending(evs) {
		switch ev.Kind {
		case events.Kind_Staked:
			total = total.Add(ev.Amount)
		case events.Kind_Restaked:
			total = total.Add(ev.Amount)
			cooldown = cooldown.Sub(ev.Amount)
		case events.Kind_Unstaked:
			total = total.Sub(ev.Amount)
			cooldown = cooldown.Add(ev.Amount)
		case events.Kind_Withdrew:
			cooldown = cooldown.Sub(ev.Amount)
		default:
			continue
		}
		a := newAction(ev.Meta, ev.Kind.String())
		a.Amount = decimal.NewNullDecimal(ev.Amount)
		a.CurrentStake = decimal.NewNullDecimal(total)
		actions = append(actions, a)
		points = append(points, StakePoint{
			BlockNumber:     ev.BlockNumber,
			TransactionHash: ev.TransactionHash,
			Stake:           total,
			Cooldown:        cooldown,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].BlockNumber > points[j].BlockNumber
	})
	return points, actions
}

func DelegateActions(evs []*events.Delegated) []Action {
	out := make([]Action, 0, len(evs))
	for _, ev := range events.SortAscending(evs) {
		a := newAction(ev.Meta, ev.Kind.String())
		a.To = utils.NormalizeAddress(ev.To)
		out = append(out, a)
	}
	return out
}

// GuardianRewardPoints lists the guardian checkpoints that settled a reward, newest first.
func GuardianRewardPoints(evs []*events.GuardianRewardAssigned) []RewardPoint {
	out := make([]RewardPoint, 0, len(evs))
	for _, ev := range events.SortDescendingByBlock(evs) {
		if ev.Amount.IsZero() {
			continue
		}
		out = append(out, RewardPoint{
			BlockNumber:     ev.BlockNumber,
			TransactionHash: ev.TransactionHash,
			Amount:          ev.Amount,
			TotalAwarded:    ev.TotalAwarded,
		})
	}
	return out
}

// DelegatorRewardPoints lists the delegator checkpoints, newest first.
// Zero amount checkpoints are kept unless skipZero is set.
func DelegatorRewardPoints(evs []*events.DelegatorRewardAssigned, skipZero bool) []RewardPoint {
	out := make([]RewardPoint, 0, len(evs))
	for _, ev := range events.SortDescendingByBlock(evs) {
		if skipZero && ev.Amount.IsZero() {
			continue
		}
		out = append(out, RewardPoint{
			BlockNumber:     ev.BlockNumber,
			TransactionHash: ev.TransactionHash,
			Amount:          ev.Amount,
			TotalAwarded:    ev.TotalAwarded,
			GuardianFrom:    utils.NormalizeAddress(ev.Guardian),
		})
	}
	return out
}

// FeeBootstrapHistory splits the fee and bootstrap events of a guardian into
// the two reward series, newest first, and the withdrawal actions.
func FeeBootstrapHistory(evs []events.Event) ([]RewardPoint, []RewardPoint, []Action) {
	fees := make([]RewardPoint, 0)
	bootstraps := make([]RewardPoint, 0)
	withdrawals := make([]Action, 0)

	for _, e := range events.SortDescendingByBlock(evs) {
		switch ev := e.(type) {
		case *events.FeeBootstrapAssigned:
			p := RewardPoint{
				BlockNumber:     ev.BlockNumber,
				TransactionHash: ev.TransactionHash,
				Amount:          ev.Amount,
				TotalAwarded:    ev.TotalAwarded,
			}
			if ev.Kind == events.Kind_FeesAssigned {
				fees = append(fees, p)
			} else {
				bootstraps = append(bootstraps, p)
			}
		case *events.FeeBootstrapWithdrawn:
			name := ActionEvent_BootstrapRewardsClaimed
			if ev.Kind == events.Kind_FeesWithdrawn {
				name = ActionEvent_FeesClaimed
			}
			a := newAction(ev.Meta, name)
			a.Amount = decimal.NewNullDecimal(ev.Amount)
			withdrawals = append(withdrawals, a)
		}
	}
	return fees, bootstraps, withdrawals
}

type DelegationPoint struct {
	BlockNumber    uint64
	SelfStake      decimal.Decimal
	DelegatedStake decimal.Decimal
	NDelegates     int
}

// DelegatorRecord is the latest known contribution of one delegator to a guardian.
type DelegatorRecord struct {
	LastChangeBlock uint64
	Address         string
	Stake           decimal.Decimal
}

type Delegations struct {
	// Points is descending, one point per block
	Points []DelegationPoint
	// Delegators holds every address that ever delegated, in order of first delegation
	Delegators *orderedmap.OrderedMap[string, *DelegatorRecord]
}

// GuardianDelegations replays the delegated stake changes of a guardian. Every
// event is a full snapshot of the guardian's stake, events sharing a block
// collapse into the last of them.
func GuardianDelegations(guardian string, evs []*events.DelegatedStakeChanged) *Delegations {
	guardian = utils.NormalizeAddress(guardian)
	delegators := orderedmap.New[string, *DelegatorRecord]()
	points := make([]DelegationPoint, 0, len(evs))

	for _, ev := range events.SortAscending(evs) {
		addr := utils.NormalizeAddress(ev.Delegator)
		if addr != guardian {
			delegators.Set(addr, &DelegatorRecord{
				LastChangeBlock: ev.BlockNumber,
				Address:         addr,
				Stake:           ev.DelegatorContributedStake,
			})
		}
		p := DelegationPoint{
			BlockNumber:    ev.BlockNumber,
			SelfStake:      ev.SelfDelegatedStake,
			DelegatedStake: ev.DelegatedStake.Sub(ev.SelfDelegatedStake),
			NDelegates:     delegators.Len(),
		}
		if n := len(points); n > 0 && points[n-1].BlockNumber == ev.BlockNumber {
			points[n-1] = p
			continue
		}
		points = append(points, p)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return &Delegations{Points: points, Delegators: delegators}
}

// LatestDelegates is the delegator count of the newest point.
func (d *Delegations) LatestDelegates() int {
	if len(d.Points) == 0 {
		return 0
	}
	return d.Points[0].NDelegates
}

// Active returns the delegators still contributing stake, largest first.
func (d *Delegations) Active() []*DelegatorRecord {
	out := make([]*DelegatorRecord, 0)
	for pair := d.Delegators.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.Stake.IsZero() {
			out = append(out, pair.Value)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stake.GreaterThan(out[j].Stake)
	})
	return out
}

// Left returns the delegators that withdrew their whole contribution, in order of first delegation.
func (d *Delegations) Left() []*DelegatorRecord {
	out := make([]*DelegatorRecord, 0)
	for pair := d.Delegators.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Stake.IsZero() {
			out = append(out, pair.Value)
		}
	}
	return out
}

// Addresses lists every delegator, in order of first delegation.
func (d *Delegations) Addresses() []string {
	out := make([]string, 0, d.Delegators.Len())
	for pair := d.Delegators.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
