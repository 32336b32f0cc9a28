package history

import (
	"fmt"
	"testing"

	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stakeContract = "0x01D59AF68E2DCB44E04C50E05F62E7043F2656C3"
	owner         = "0x1111000000000000000000000000000000000001"
	guardian      = "0x2222000000000000000000000000000000000002"
	delegatorA    = "0x3333000000000000000000000000000000000003"
	delegatorB    = "0x4444000000000000000000000000000000000004"
)

func d(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func meta(kind events.Kind, block uint64, logIndex uint64) events.Meta {
	return events.Meta{
		Kind:            kind,
		Contract:        stakeContract,
		BlockNumber:     block,
		LogIndex:        logIndex,
		TransactionHash: fmt.Sprintf("0x%064x", block*100+logIndex),
	}
}

func stakeEvent(kind events.Kind, block uint64, amount int64) *events.StakeChanged {
	return &events.StakeChanged{Meta: meta(kind, block, 0), StakeOwner: owner, Amount: d(amount)}
}

func stakeChanged(block uint64, logIndex uint64, delegator string, self, all, contributed int64) *events.DelegatedStakeChanged {
	return &events.DelegatedStakeChanged{
		Meta:                      meta(events.Kind_DelegatedStakeChanged, block, logIndex),
		Guardian:                  guardian,
		SelfDelegatedStake:        d(self),
		DelegatedStake:            d(all),
		Delegator:                 delegator,
		DelegatorContributedStake: d(contributed),
	}
}

func Test_StakeHistory(t *testing.T) {
	t.Run("Should accumulate stake and cooldown", func(t *testing.T) {
		points, actions := StakeHistory([]*events.StakeChanged{
			stakeEvent(events.Kind_Unstaked, 30, 30),
			stakeEvent(events.Kind_Staked, 10, 100),
			stakeEvent(events.Kind_Restaked, 20, 20),
		})

		require.Len(t, points, 3)
		type stakeCooldown struct {
			Block    uint64
			Stake    string
			Cooldown string
		}
		got := make([]stakeCooldown, 0)
		for _, p := range points {
			got = append(got, stakeCooldown{p.BlockNumber, p.Stake.String(), p.Cooldown.String()})
		}
		// restaking more than is cooling down leaves the cooldown negative
		assert.Equal(t, []stakeCooldown{{30, "90", "10"}, {20, "120", "-20"}, {10, "100", "0"}}, got)

		require.Len(t, actions, 3)
		assert.Equal(t, "Staked", actions[0].Event)
		assert.Equal(t, "0x01d59af68e2dcb44e04c50e05f62e7043f2656c3", actions[0].Contract)
		assert.True(t, actions[2].CurrentStake.Valid)
		assert.Equal(t, "90", actions[2].CurrentStake.Decimal.String())
		assert.Equal(t, "30", actions[2].Amount.Decimal.String())
	})

	t.Run("Should drain a withdrawal from cooldown only", func(t *testing.T) {
		points, _ := StakeHistory([]*events.StakeChanged{
			stakeEvent(events.Kind_Staked, 10, 100),
			stakeEvent(events.Kind_Unstaked, 20, 40),
			stakeEvent(events.Kind_Withdrew, 30, 40),
		})
		require.Len(t, points, 3)
		assert.Equal(t, "60", points[0].Stake.String())
		assert.Equal(t, "0", points[0].Cooldown.String())
	})

	t.Run("Should be empty without events", func(t *testing.T) {
		points, actions := StakeHistory(nil)
		assert.Len(t, points, 0)
		assert.Len(t, actions, 0)
	})
}

func Test_DelegateActions(t *testing.T) {
	out := DelegateActions([]*events.Delegated{
		{Meta: meta(events.Kind_Delegated, 20, 0), From: owner, To: "0x2222000000000000000000000000000000000002"},
		{Meta: meta(events.Kind_Delegated, 10, 0), From: owner, To: "0xABCD000000000000000000000000000000000009"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, uint64(10), out[0].BlockNumber)
	assert.Equal(t, "0xabcd000000000000000000000000000000000009", out[0].To)
	assert.Equal(t, "Delegated", out[0].Event)
	assert.False(t, out[0].Amount.Valid)
}

func Test_RewardPoints(t *testing.T) {
	t.Run("Should skip guardian checkpoints that settled nothing", func(t *testing.T) {
		out := GuardianRewardPoints([]*events.GuardianRewardAssigned{
			{Meta: meta(events.Kind_GuardianRewardAssigned, 10, 0), Amount: d(5), TotalAwarded: d(5)},
			{Meta: meta(events.Kind_GuardianRewardAssigned, 20, 0), Amount: d(0), TotalAwarded: d(5)},
			{Meta: meta(events.Kind_GuardianRewardAssigned, 30, 0), Amount: d(3), TotalAwarded: d(8)},
		})
		require.Len(t, out, 2)
		assert.Equal(t, uint64(30), out[0].BlockNumber)
		assert.Equal(t, uint64(10), out[1].BlockNumber)
	})

	t.Run("Should keep the guardian of delegator checkpoints", func(t *testing.T) {
		evs := []*events.DelegatorRewardAssigned{
			{Meta: meta(events.Kind_DelegatorRewardAssigned, 10, 0), Guardian: "0x2222000000000000000000000000000000000002", Amount: d(0)},
			{Meta: meta(events.Kind_DelegatorRewardAssigned, 20, 0), Guardian: "0x2222000000000000000000000000000000000002", Amount: d(4), TotalAwarded: d(4)},
		}
		assert.Len(t, DelegatorRewardPoints(evs, false), 2)

		out := DelegatorRewardPoints(evs, true)
		require.Len(t, out, 1)
		assert.Equal(t, guardian, out[0].GuardianFrom)
	})
}

func Test_FeeBootstrapHistory(t *testing.T) {
	fees, bootstraps, withdrawals := FeeBootstrapHistory([]events.Event{
		&events.FeeBootstrapAssigned{Meta: meta(events.Kind_FeesAssigned, 10, 0), Guardian: guardian, Amount: d(1), TotalAwarded: d(1)},
		&events.FeeBootstrapAssigned{Meta: meta(events.Kind_BootstrapRewardsAssigned, 10, 1), Guardian: guardian, Amount: d(2), TotalAwarded: d(2)},
		&events.FeeBootstrapAssigned{Meta: meta(events.Kind_FeesAssigned, 20, 0), Guardian: guardian, Amount: d(3), TotalAwarded: d(4)},
		&events.FeeBootstrapWithdrawn{Meta: meta(events.Kind_FeesWithdrawn, 30, 0), Guardian: guardian, Amount: d(4), TotalWithdrawn: d(4)},
		&events.FeeBootstrapWithdrawn{Meta: meta(events.Kind_BootstrapRewardsWithdrawn, 40, 0), Guardian: guardian, Amount: d(2), TotalWithdrawn: d(2)},
	})

	require.Len(t, fees, 2)
	assert.Equal(t, uint64(20), fees[0].BlockNumber)
	assert.Equal(t, "4", fees[0].TotalAwarded.String())
	require.Len(t, bootstraps, 1)
	require.Len(t, withdrawals, 2)
	assert.Equal(t, ActionEvent_BootstrapRewardsClaimed, withdrawals[0].Event)
	assert.Equal(t, ActionEvent_FeesClaimed, withdrawals[1].Event)
}

func Test_GuardianDelegations(t *testing.T) {
	evs := []*events.DelegatedStakeChanged{
		stakeChanged(10, 0, guardian, 100, 100, 100),
		stakeChanged(20, 0, delegatorA, 100, 150, 50),
		stakeChanged(20, 1, delegatorB, 100, 180, 30),
		stakeChanged(30, 0, delegatorA, 100, 130, 0),
		stakeChanged(40, 0, "0x4444000000000000000000000000000000000004", 100, 200, 100),
	}
	out := GuardianDelegations("0x2222000000000000000000000000000000000002", evs)

	t.Run("Should collapse same block changes into one point", func(t *testing.T) {
		require.Len(t, out.Points, 4)
		assert.Equal(t, uint64(40), out.Points[0].BlockNumber)
		assert.Equal(t, uint64(20), out.Points[2].BlockNumber)
		assert.Equal(t, "80", out.Points[2].DelegatedStake.String())
		assert.Equal(t, 2, out.Points[2].NDelegates)
		assert.Equal(t, "100", out.Points[3].SelfStake.String())
		assert.Equal(t, 0, out.Points[3].NDelegates)
		assert.Equal(t, 2, out.LatestDelegates())
	})

	t.Run("Should keep delegators in order of first delegation", func(t *testing.T) {
		assert.Equal(t, []string{delegatorA, delegatorB}, out.Addresses())
	})

	t.Run("Should split active delegators from those that left", func(t *testing.T) {
		active := out.Active()
		require.Len(t, active, 1)
		assert.Equal(t, delegatorB, active[0].Address)
		assert.Equal(t, uint64(40), active[0].LastChangeBlock)

		left := out.Left()
		require.Len(t, left, 1)
		assert.Equal(t, delegatorA, left[0].Address)
		assert.Equal(t, uint64(30), left[0].LastChangeBlock)
	})

	t.Run("Should sort active delegators by stake", func(t *testing.T) {
		more := GuardianDelegations(guardian, []*events.DelegatedStakeChanged{
			stakeChanged(10, 0, delegatorA, 0, 10, 10),
			stakeChanged(11, 0, delegatorB, 0, 40, 30),
		})
		active := more.Active()
		require.Len(t, active, 2)
		assert.Equal(t, delegatorB, active[0].Address)
	})
}

func Test_Bound(t *testing.T) {
	tail := 0
	assert.Equal(t, []int{9, 5, 3, 0}, Bound([]int{5, 3}, 9, &tail))
	assert.Equal(t, []int{9}, Bound(nil, 9, nil))
}

func Test_SortActionsDescending(t *testing.T) {
	in := []Action{{BlockNumber: 1, Event: "a"}, {BlockNumber: 3}, {BlockNumber: 1, Event: "b"}}
	out := SortActionsDescending(in)
	assert.Equal(t, uint64(3), out[0].BlockNumber)
	assert.Equal(t, "a", out[1].Event)
	assert.Equal(t, "b", out[2].Event)
	assert.Equal(t, uint64(1), in[0].BlockNumber)
}
