package posDataService

import (
	"context"
	"time"

	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/eventReader"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/history"
	"github.com/orbs-network/pos-analytics/pkg/model"
	"github.com/orbs-network/pos-analytics/pkg/rewards"
	"github.com/orbs-network/pos-analytics/pkg/service/baseDataService"
	"github.com/orbs-network/pos-analytics/pkg/stateReader"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GetDelegator returns the live position of a delegator with its stake history,
// its actions and the reward checkpoints the contract emitted for it.
func (pds *PosDataService) GetDelegator(ctx context.Context, address string) (*model.Delegator, error) {
	defer pds.observe("get_delegator", time.Now())

	address, err := baseDataService.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}

	var state *stateReader.DelegatorState
	var stakeEvents, delegateEvents, rewardEvents []events.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := pds.stateReader.ReadDelegator(gctx, address, block)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	pds.readEvents(g, gctx, contractAbi.ContractKind_Stake,
		eventReader.MustFilter(contractAbi.ContractKind_Stake, address),
		pds.clock.StartOfPos().Number, block.Number, &stakeEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_Delegations,
		eventReader.MustFilter(contractAbi.ContractKind_Delegations, address, string(events.Kind_Delegated)),
		pds.clock.StartOfDelegation().Number, block.Number, &delegateEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, address,
			string(events.Kind_DelegatorRewardAssigned), string(events.Kind_StakingRewardsClaimed)),
		pds.clock.StartOfRewards().Number, block.Number, &rewardEvents)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to read delegator %s", address)
	}

	stakePoints, stakeActions := history.StakeHistory(events.OfType[*events.StakeChanged](stakeEvents))
	actions := append(stakeActions, history.DelegateActions(events.OfType[*events.Delegated](delegateEvents))...)
	claims := events.SortAscending(events.OfType[*events.StakingRewardsClaimed](rewardEvents))
	actions = append(actions, claimsToActions(rewards.ClaimActions(claims, false))...)

	startOfPos := pds.clock.StartOfPos()
	stakes := history.Bound(stakePoints, history.StakePoint{
		BlockNumber: block.Number,
		Stake:       state.Stake.Staked,
		Cooldown:    state.Stake.CooldownStake,
	}, &history.StakePoint{BlockNumber: startOfPos.Number})

	rewardPoints := history.DelegatorRewardPoints(events.OfType[*events.DelegatorRewardAssigned](rewardEvents), false)
	rewardSlices := history.Bound(rewardPoints, history.RewardPoint{
		BlockNumber:  block.Number,
		Amount:       state.Rewards.Balance,
		TotalAwarded: state.Rewards.TotalAwarded(),
		GuardianFrom: state.Rewards.Guardian,
	}, &history.RewardPoint{BlockNumber: pds.clock.StartOfRewards().Number})

	pds.logger.Sugar().Debugw("Assembled delegator",
		zap.String("address", address),
		zap.Uint64("block", block.Number),
		zap.Int("actions", len(actions)),
	)

	return &model.Delegator{
		Address:             address,
		BlockNumber:         block.Number,
		BlockTime:           block.Time,
		TotalStake:          numbers.ToDisplay(state.Stake.Staked),
		CooldownStake:       numbers.ToDisplay(state.Stake.CooldownStake),
		CurrentCooldownTime: state.Stake.CooldownEndTime,
		NonStake:            numbers.ToDisplay(state.Stake.NonStake),
		DelegatedTo:         state.Rewards.Guardian,
		RewardsBalance:      numbers.ToDisplay(state.Rewards.Balance),
		RewardsClaimed:      numbers.ToDisplay(state.Rewards.Claimed),
		TotalRewards:        numbers.ToDisplay(state.Rewards.TotalAwarded()),
		StakeSlices:         pds.toDelegatorStakes(block, stakes),
		Actions:             pds.toActions(block, actions),
		RewardSlices:        pds.toDelegatorRewards(block, rewardSlices),
	}, nil
}

// GetDelegatorStakingRewards reconstructs the accrued rewards of a delegator at
// every checkpoint of its own and of the guardians it was attributed to.
func (pds *PosDataService) GetDelegatorStakingRewards(ctx context.Context, address string, opts *RewardsQueryOptions) (*model.DelegatorStakingRewards, error) {
	defer pds.observe("get_delegator_staking_rewards", time.Now())

	address, err := baseDataService.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}
	window := pds.rewardsWindow(opts, block.Number)

	var state *stateReader.DelegatorState
	var ownEvents, allocations []events.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := pds.stateReader.ReadDelegator(gctx, address, block)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, address,
			string(events.Kind_DelegatorRewardAssigned), string(events.Kind_StakingRewardsClaimed)),
		window.FromBlock, block.Number, &ownEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, "", string(events.Kind_StakingRewardsAllocated)),
		window.FromBlock, block.Number, &allocations)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to read delegator rewards of %s", address)
	}

	separated := rewards.SeparateRewardEvents(ownEvents, block.Number, state.Rewards.Guardian, window.FromBlock, false)
	guardianEvents, err := pds.readGuardianAssignments(ctx, separated.Transitions)
	if err != nil {
		return nil, err
	}
	merged := rewards.MergeUniqueByBlock(guardianEvents, allocations)

	snapshot := rewards.DelegatorSnapshot{
		Delegator: rewards.AccountingState{
			BlockNumber:  block.Number,
			Guardian:     state.Rewards.Guardian,
			TotalAwarded: state.Rewards.TotalAwarded(),
			DeltaAwarded: state.LastAwarded(),
			RPT:          state.Rewards.RPT,
			DeltaRPT:     state.Rewards.DeltaRPT,
		},
		Guardian: guardianAccounting(block.Number, state.Rewards.Guardian, state.GuardianRewards),
	}
	series := rewards.ReconstructDelegatorRewards(snapshot, separated.DelegatorEvents, merged, window)

	pds.logger.Sugar().Debugw("Reconstructed delegator rewards",
		zap.String("address", address),
		zap.Uint64("fromBlock", window.FromBlock),
		zap.Int("transitions", len(separated.Transitions)),
		zap.Int("points", len(series)),
	)

	return &model.DelegatorStakingRewards{
		RewardSlices: pds.toDelegatorRewardSlices(block, series),
		ClaimActions: pds.toActions(block, claimsToActions(separated.ClaimActions)),
	}, nil
}

// GetRewardsClaimActions lists the reward claims of an address, the guardian
// side of every claim included when the address is a guardian.
func (pds *PosDataService) GetRewardsClaimActions(ctx context.Context, address string, isGuardian bool) ([]model.Action, error) {
	defer pds.observe("get_rewards_claim_actions", time.Now())

	address, err := baseDataService.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}

	evs, err := pds.eventReader.ReadEvents(ctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, address, string(events.Kind_StakingRewardsClaimed)),
		pds.clock.StartOfRewards().Number, block.Number)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read reward claims of %s", address)
	}
	claims := events.SortAscending(events.OfType[*events.StakingRewardsClaimed](evs))
	return pds.toActions(block, claimsToActions(rewards.ClaimActions(claims, isGuardian))), nil
}

func (pds *PosDataService) rewardsWindow(opts *RewardsQueryOptions, currentBlock uint64) rewards.Window {
	var from int64
	if opts != nil {
		from = opts.FromBlock
	}
	return rewards.Window{
		FromBlock: pds.clock.QueryRewardsBlock(from, currentBlock),
		Genesis:   pds.clock.StartOfRewards().Number,
	}
}

func guardianAccounting(block uint64, guardian string, acc stateReader.GuardianAccounting) rewards.AccountingState {
	return rewards.AccountingState{
		BlockNumber: block,
		Guardian:    guardian,
		RPW:         acc.RPW,
		DeltaRPW:    acc.DeltaRPW,
		RPT:         acc.RPT,
		DeltaRPT:    acc.DeltaRPT,
	}
}
