// Package events defines the typed contract events the analytics engine consumes.
// Every raw log is decoded exactly once into one of these variants; nothing downstream
// inspects raw log data.
package events

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Kind_Staked                    Kind = "Staked"
	Kind_Restaked                  Kind = "Restaked"
	Kind_Unstaked                  Kind = "Unstaked"
	Kind_Withdrew                  Kind = "Withdrew"
	Kind_Delegated                 Kind = "Delegated"
	Kind_DelegatedStakeChanged     Kind = "DelegatedStakeChanged"
	Kind_GuardianRewardAssigned    Kind = "GuardianStakingRewardsAssigned"
	Kind_DelegatorRewardAssigned   Kind = "DelegatorStakingRewardsAssigned"
	Kind_StakingRewardsAllocated   Kind = "StakingRewardsAllocated"
	Kind_StakingRewardsClaimed     Kind = "StakingRewardsClaimed"
	Kind_FeesAssigned              Kind = "FeesAssigned"
	Kind_FeesWithdrawn             Kind = "FeesWithdrawn"
	Kind_BootstrapRewardsAssigned  Kind = "BootstrapRewardsAssigned"
	Kind_BootstrapRewardsWithdrawn Kind = "BootstrapRewardsWithdrawn"
	Kind_ContractAddressUpdated    Kind = "ContractAddressUpdated"
	Kind_ContractRegistryUpdated   Kind = "ContractRegistryUpdated"
)

func (k Kind) String() string {
	return string(k)
}

// Meta is the position of an event on chain. Kind doubles as the solidity event name.
type Meta struct {
	Kind             Kind
	Contract         string
	BlockNumber      uint64
	TransactionIndex uint64
	LogIndex         uint64
	TransactionHash  string
}

// Header lets every variant embedding Meta satisfy Event.
func (m Meta) Header() Meta {
	return m
}

type Event interface {
	Header() Meta
}

// StakeChanged covers Staked, Restaked, Unstaked and Withdrew.
type StakeChanged struct {
	Meta
	StakeOwner        string
	Amount            decimal.Decimal
	TotalStakedAmount decimal.Decimal
}

type Delegated struct {
	Meta
	From string
	To   string
}

type DelegatedStakeChanged struct {
	Meta
	Guardian                  string
	SelfDelegatedStake        decimal.Decimal
	DelegatedStake            decimal.Decimal
	Delegator                 string
	DelegatorContributedStake decimal.Decimal
}

// GuardianRewardAssigned is an exact checkpoint of a guardian's reward accounting.
type GuardianRewardAssigned struct {
	Meta
	Guardian                      string
	Amount                        decimal.Decimal
	TotalAwarded                  decimal.Decimal
	DelegatorRewardsPerToken      decimal.Decimal
	DelegatorRewardsPerTokenDelta decimal.Decimal
	StakingRewardsPerWeight       decimal.Decimal
	StakingRewardsPerWeightDelta  decimal.Decimal
}

// DelegatorRewardAssigned is an exact checkpoint of a delegator's reward accounting.
// Guardian is the guardian the settled period was attributed to.
type DelegatorRewardAssigned struct {
	Meta
	Delegator                     string
	Amount                        decimal.Decimal
	TotalAwarded                  decimal.Decimal
	Guardian                      string
	DelegatorRewardsPerToken      decimal.Decimal
	DelegatorRewardsPerTokenDelta decimal.Decimal
}

// StakingRewardsAllocated is the protocol wide allocation moving the global RPW.
type StakingRewardsAllocated struct {
	Meta
	AllocatedRewards        decimal.Decimal
	StakingRewardsPerWeight decimal.Decimal
}

type StakingRewardsClaimed struct {
	Meta
	Addr                         string
	ClaimedDelegatorRewards      decimal.Decimal
	ClaimedGuardianRewards       decimal.Decimal
	TotalClaimedDelegatorRewards decimal.Decimal
	TotalClaimedGuardianRewards  decimal.Decimal
}

// FeeBootstrapAssigned covers FeesAssigned and BootstrapRewardsAssigned.
type FeeBootstrapAssigned struct {
	Meta
	Guardian     string
	Amount       decimal.Decimal
	TotalAwarded decimal.Decimal
}

// FeeBootstrapWithdrawn covers FeesWithdrawn and BootstrapRewardsWithdrawn.
type FeeBootstrapWithdrawn struct {
	Meta
	Guardian       string
	Amount         decimal.Decimal
	TotalWithdrawn decimal.Decimal
}

type ContractAddressUpdated struct {
	Meta
	ContractName    string
	Addr            string
	ManagedContract bool
}

type ContractRegistryUpdated struct {
	Meta
	NewContractRegistry string
}

// Less reports chain order: block, then transaction index, then log index.
func Less(a, b Event) bool {
	ha, hb := a.Header(), b.Header()
	if ha.BlockNumber != hb.BlockNumber {
		return ha.BlockNumber < hb.BlockNumber
	}
	if ha.TransactionIndex != hb.TransactionIndex {
		return ha.TransactionIndex < hb.TransactionIndex
	}
	return ha.LogIndex < hb.LogIndex
}

// SortAscending sorts a copy of the events into chain order.
func SortAscending[E Event](evs []E) []E {
	out := make([]E, len(evs))
	copy(out, evs)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// SortDescendingByBlock sorts a copy of the events newest block first, keeping
// the relative order of events in the same block.
func SortDescendingByBlock[E Event](evs []E) []E {
	out := make([]E, len(evs))
	copy(out, evs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Header().BlockNumber > out[j].Header().BlockNumber
	})
	return out
}

// OfType returns the events of the list that are of variant T, in order.
func OfType[T Event](evs []Event) []T {
	out := make([]T, 0)
	for _, e := range evs {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// Upcast widens a typed slice back into the union.
func Upcast[T Event](evs []T) []Event {
	out := make([]Event, 0, len(evs))
	for _, e := range evs {
		out = append(out, e)
	}
	return out
}
