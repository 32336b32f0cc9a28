package posDataService

import (
	"context"
	"time"

	"github.com/orbs-network/pos-analytics/internal/config"
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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GetGuardian returns the live position of a guardian with its stake and
// delegation history, its reward, fee and bootstrap checkpoints, its actions
// and its delegators.
func (pds *PosDataService) GetGuardian(ctx context.Context, address string) (*model.GuardianInfo, error) {
	defer pds.observe("get_guardian", time.Now())

	address, err := baseDataService.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}
	startOfRewards := pds.clock.StartOfRewards().Number

	var state *stateReader.GuardianState
	var stakeEvents, delegationEvents, rewardEvents, feeEvents []events.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := pds.stateReader.ReadGuardian(gctx, address, block)
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
		eventReader.MustFilter(contractAbi.ContractKind_Delegations, address, string(events.Kind_DelegatedStakeChanged)),
		pds.clock.StartOfDelegation().Number, block.Number, &delegationEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, address),
		startOfRewards, block.Number, &rewardEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_FeesAndBootstrapRewards,
		eventReader.MustFilter(contractAbi.ContractKind_FeesAndBootstrapRewards, address),
		startOfRewards, block.Number, &feeEvents)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to read guardian %s", address)
	}

	delegations := history.GuardianDelegations(address, events.OfType[*events.DelegatedStakeChanged](delegationEvents))
	nonStake, err := pds.readBalances(ctx, delegations.Addresses(), block)
	if err != nil {
		return nil, err
	}

	_, stakeActions := history.StakeHistory(events.OfType[*events.StakeChanged](stakeEvents))
	claims := events.SortAscending(events.OfType[*events.StakingRewardsClaimed](rewardEvents))
	fees, bootstraps, withdrawals := history.FeeBootstrapHistory(feeEvents)

	actions := append(stakeActions, claimsToActions(rewards.ClaimActions(claims, true))...)
	actions = append(actions, withdrawals...)

	rewardTail := &history.RewardPoint{BlockNumber: startOfRewards}
	asGuardian := history.Bound(history.GuardianRewardPoints(events.OfType[*events.GuardianRewardAssigned](rewardEvents)),
		history.RewardPoint{
			BlockNumber:  block.Number,
			Amount:       state.GuardianRewardsBalance,
			TotalAwarded: state.TotalGuardianRewards(),
		}, rewardTail)
	asDelegator := history.Bound(history.DelegatorRewardPoints(events.OfType[*events.DelegatorRewardAssigned](rewardEvents), true),
		history.RewardPoint{
			BlockNumber:  block.Number,
			Amount:       state.AsDelegator.Balance,
			TotalAwarded: state.AsDelegator.TotalAwarded(),
		}, rewardTail)
	feeSlices := history.Bound(fees, history.RewardPoint{
		BlockNumber:  block.Number,
		Amount:       state.FeesBalance,
		TotalAwarded: state.FeesBalance.Add(state.FeesClaimed),
	}, rewardTail)
	bootstrapSlices := history.Bound(bootstraps, history.RewardPoint{
		BlockNumber:  block.Number,
		Amount:       state.BootstrapBalance,
		TotalAwarded: state.BootstrapBalance.Add(state.BootstrapClaimed),
	}, rewardTail)

	stakes := history.Bound(delegations.Points, history.DelegationPoint{
		BlockNumber:    block.Number,
		SelfStake:      state.Stake.Staked,
		DelegatedStake: state.DelegatedStake.Sub(state.Stake.Staked),
		NDelegates:     delegations.LatestDelegates(),
	}, &history.DelegationPoint{BlockNumber: pds.clock.StartOfDelegation().Number})

	pds.logger.Sugar().Debugw("Assembled guardian",
		zap.String("address", address),
		zap.Uint64("block", block.Number),
		zap.Int("delegators", delegations.Delegators.Len()),
		zap.Int("actions", len(actions)),
	)

	return &model.GuardianInfo{
		Address:                 address,
		BlockNumber:             block.Number,
		BlockTime:               block.Time,
		Details:                 guardianDetails(state.Details),
		StakeStatus:             guardianStakeStatus(state),
		RewardStatus:            guardianRewardStatus(state),
		Actions:                 pds.toActions(block, actions),
		StakeSlices:             pds.toGuardianStakes(block, stakes),
		RewardAsGuardianSlices:  pds.toGuardianRewards(block, asGuardian),
		RewardAsDelegatorSlices: pds.toGuardianRewards(block, asDelegator),
		BootstrapSlices:         pds.toGuardianRewards(block, bootstrapSlices),
		FeesSlices:              pds.toGuardianRewards(block, feeSlices),
		Delegators:              pds.toGuardianDelegators(delegations.Active(), nonStake),
		DelegatorsLeft:          pds.toGuardianDelegators(delegations.Left(), nonStake),
	}, nil
}

// GetGuardianStakingRewards reconstructs the accrued rewards of a guardian, both
// on the guardian side and on the side of its own stake as a delegator.
func (pds *PosDataService) GetGuardianStakingRewards(ctx context.Context, address string, opts *RewardsQueryOptions) (*model.GuardianStakingRewards, error) {
	defer pds.observe("get_guardian_staking_rewards", time.Now())

	address, err := baseDataService.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	block, err := pds.GetCurrentBlock(ctx)
	if err != nil {
		return nil, err
	}
	window := pds.rewardsWindow(opts, block.Number)

	var state *stateReader.GuardianState
	var ownEvents, allocations []events.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := pds.stateReader.ReadGuardian(gctx, address, block)
		if err != nil {
			return err
		}
		state = s
		return nil
	})
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, address,
			string(events.Kind_GuardianRewardAssigned), string(events.Kind_DelegatorRewardAssigned), string(events.Kind_StakingRewardsClaimed)),
		window.FromBlock, block.Number, &ownEvents)
	pds.readEvents(g, gctx, contractAbi.ContractKind_StakingRewards,
		eventReader.MustFilter(contractAbi.ContractKind_StakingRewards, "", string(events.Kind_StakingRewardsAllocated)),
		window.FromBlock, block.Number, &allocations)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to read guardian rewards of %s", address)
	}

	attributedTo := state.AsDelegator.Guardian
	if attributedTo == "" {
		attributedTo = address
	}
	separated := rewards.SeparateRewardEvents(ownEvents, block.Number, attributedTo, window.FromBlock, true)

	live := guardianAccounting(block.Number, address, state.GuardianRewards)
	live.TotalAwarded = state.TotalGuardianRewards()
	live.DeltaAwarded = rewards.GuardianLastAwarded(live.TotalAwarded, separated.GuardianEvents)
	ownMerged := rewards.MergeUniqueByBlock(events.Upcast(separated.GuardianEvents), allocations)
	asGuardian := rewards.ReconstructGuardianRewards(live, ownMerged, window)

	delegatorMerged := ownMerged
	if len(separated.Transitions) > 1 {
		guardianEvents, err := pds.readGuardianAssignments(ctx, separated.Transitions)
		if err != nil {
			return nil, err
		}
		delegatorMerged = rewards.MergeUniqueByBlock(guardianEvents, allocations)
	}
	snapshot := rewards.DelegatorSnapshot{
		Delegator: rewards.AccountingState{
			BlockNumber:  block.Number,
			Guardian:     address,
			TotalAwarded: state.AsDelegator.TotalAwarded(),
			DeltaAwarded: state.SelfLastAwarded(),
			RPT:          state.AsDelegator.RPT,
			DeltaRPT:     state.AsDelegator.DeltaRPT,
		},
		Guardian: guardianAccounting(block.Number, address, state.GuardianRewards),
	}
	asDelegator := rewards.ReconstructDelegatorRewards(snapshot, separated.DelegatorEvents, delegatorMerged, window)

	pds.logger.Sugar().Debugw("Reconstructed guardian rewards",
		zap.String("address", address),
		zap.Uint64("fromBlock", window.FromBlock),
		zap.Int("guardianPoints", len(asGuardian)),
		zap.Int("delegatorPoints", len(asDelegator)),
	)

	return &model.GuardianStakingRewards{
		RewardAsGuardianSlices:  pds.toGuardianRewardSlices(block, asGuardian),
		RewardAsDelegatorSlices: pds.toDelegatorRewardSlices(block, asDelegator),
		ClaimActions:            pds.toActions(block, claimsToActions(separated.ClaimActions)),
	}, nil
}

// readBalances reads the unstaked balance of every address at the pinned block.
func (pds *PosDataService) readBalances(ctx context.Context, addresses []string, block config.BlockRef) (map[string]decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceReadLimit)
	for i, addr := range addresses {
		g.Go(func() error {
			v, err := pds.balances.BalanceOf(gctx, addr, block.Number)
			if err != nil {
				return errors.Wrapf(err, "failed to read balance of %s", addr)
			}
			values[i] = numbers.FromBigInt(v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(addresses))
	for i, addr := range addresses {
		out[addr] = values[i]
	}
	return out, nil
}

func guardianDetails(d stateReader.GuardianDetails) model.GuardianDetails {
	return model.GuardianDetails{
		Name:             d.Name,
		Website:          d.Website,
		Ip:               d.Ip,
		NodeAddress:      d.NodeAddress,
		RegistrationTime: d.RegistrationTime,
		LastUpdateTime:   d.LastUpdateTime,
		DetailsUrl:       d.DetailsUrl,
		Certified:        d.Certified,
	}
}

func guardianStakeStatus(s *stateReader.GuardianState) model.GuardianStakeStatus {
	return model.GuardianStakeStatus{
		SelfStake:           numbers.ToDisplay(s.Stake.Staked),
		CooldownStake:       numbers.ToDisplay(s.Stake.CooldownStake),
		CurrentCooldownTime: s.Stake.CooldownEndTime,
		NonStake:            numbers.ToDisplay(s.Stake.NonStake),
		DelegatedStake:      numbers.ToDisplay(s.DelegatedStake.Sub(s.Stake.Staked)),
		TotalStake:          numbers.ToDisplay(s.DelegatedStake),
	}
}

func guardianRewardStatus(s *stateReader.GuardianState) model.GuardianRewardStatus {
	return model.GuardianRewardStatus{
		GuardianRewardsBalance:  numbers.ToDisplay(s.GuardianRewardsBalance),
		GuardianRewardsClaimed:  numbers.ToDisplay(s.GuardianRewardsClaimed),
		TotalGuardianRewards:    numbers.ToDisplay(s.TotalGuardianRewards()),
		DelegatorRewardsBalance: numbers.ToDisplay(s.AsDelegator.Balance),
		DelegatorRewardsClaimed: numbers.ToDisplay(s.AsDelegator.Claimed),
		TotalDelegatorRewards:   numbers.ToDisplay(s.AsDelegator.TotalAwarded()),
		FeesBalance:             numbers.ToDisplay(s.FeesBalance),
		FeesClaimed:             numbers.ToDisplay(s.FeesClaimed),
		TotalFees:               numbers.ToDisplay(s.FeesBalance.Add(s.FeesClaimed)),
		BootstrapBalance:        numbers.ToDisplay(s.BootstrapBalance),
		BootstrapClaimed:        numbers.ToDisplay(s.BootstrapClaimed),
		TotalBootstrap:          numbers.ToDisplay(s.BootstrapBalance.Add(s.BootstrapClaimed)),
		DelegatorRewardShare:    s.DelegatorRewardsShare,
	}
}
