package posDataService

import (
	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/history"
	"github.com/orbs-network/pos-analytics/pkg/model"
	"github.com/orbs-network/pos-analytics/pkg/rewards"
	"github.com/shopspring/decimal"
)

// timeOf returns the time of a block. The pinned block and the configured
// start blocks carry their own time, every other block is estimated.
func (pds *PosDataService) timeOf(block config.BlockRef, n uint64) int64 {
	if n == block.Number {
		return block.Time
	}
	for _, start := range []config.BlockRef{pds.clock.StartOfRewards(), pds.clock.StartOfDelegation(), pds.clock.StartOfPos()} {
		if n == start.Number {
			return start.Time
		}
	}
	return pds.clock.EstimatedTime(n)
}

func displayOrNil(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := numbers.ToDisplay(d.Decimal)
	return &v
}

func claimToAction(c rewards.ClaimAction) history.Action {
	return history.Action{
		Contract:        c.Contract,
		Event:           c.Event,
		BlockNumber:     c.BlockNumber,
		TransactionHash: c.TransactionHash,
		Amount:          decimal.NewNullDecimal(c.Amount),
	}
}

func claimsToActions(claims []rewards.ClaimAction) []history.Action {
	out := make([]history.Action, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimToAction(c))
	}
	return out
}

// toActions sorts the actions newest first and converts them.
func (pds *PosDataService) toActions(block config.BlockRef, actions []history.Action) []model.Action {
	sorted := history.SortActionsDescending(actions)
	out := make([]model.Action, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, model.Action{
			Contract:           a.Contract,
			Event:              a.Event,
			BlockNumber:        a.BlockNumber,
			BlockTime:          pds.timeOf(block, a.BlockNumber),
			TxHash:             a.TransactionHash,
			AdditionalInfoLink: pds.clock.TxLink(a.TransactionHash),
			Amount:             displayOrNil(a.Amount),
			CurrentStake:       displayOrNil(a.CurrentStake),
			To:                 a.To,
		})
	}
	return out
}

func (pds *PosDataService) toDelegatorStakes(block config.BlockRef, points []history.StakePoint) []model.DelegatorStake {
	out := make([]model.DelegatorStake, 0, len(points))
	for _, p := range points {
		out = append(out, model.DelegatorStake{
			BlockNumber: p.BlockNumber,
			BlockTime:   pds.timeOf(block, p.BlockNumber),
			Stake:       numbers.ToDisplay(p.Stake),
			Cooldown:    numbers.ToDisplay(p.Cooldown),
		})
	}
	return out
}

func (pds *PosDataService) toDelegatorRewards(block config.BlockRef, points []history.RewardPoint) []model.DelegatorReward {
	out := make([]model.DelegatorReward, 0, len(points))
	for _, p := range points {
		out = append(out, model.DelegatorReward{
			BlockNumber:        p.BlockNumber,
			BlockTime:          pds.timeOf(block, p.BlockNumber),
			TxHash:             p.TransactionHash,
			AdditionalInfoLink: pds.clock.TxLink(p.TransactionHash),
			Amount:             numbers.ToDisplay(p.Amount),
			TotalAwarded:       numbers.ToDisplay(p.TotalAwarded),
			GuardianFrom:       p.GuardianFrom,
		})
	}
	return out
}

func (pds *PosDataService) toGuardianRewards(block config.BlockRef, points []history.RewardPoint) []model.GuardianReward {
	out := make([]model.GuardianReward, 0, len(points))
	for _, p := range points {
		out = append(out, model.GuardianReward{
			BlockNumber:        p.BlockNumber,
			BlockTime:          pds.timeOf(block, p.BlockNumber),
			TxHash:             p.TransactionHash,
			AdditionalInfoLink: pds.clock.TxLink(p.TransactionHash),
			Amount:             numbers.ToDisplay(p.Amount),
			TotalAwarded:       numbers.ToDisplay(p.TotalAwarded),
		})
	}
	return out
}

func (pds *PosDataService) toGuardianStakes(block config.BlockRef, points []history.DelegationPoint) []model.GuardianStake {
	out := make([]model.GuardianStake, 0, len(points))
	for _, p := range points {
		out = append(out, model.GuardianStake{
			BlockNumber:    p.BlockNumber,
			BlockTime:      pds.timeOf(block, p.BlockNumber),
			SelfStake:      numbers.ToDisplay(p.SelfStake),
			DelegatedStake: numbers.ToDisplay(p.DelegatedStake),
			NDelegates:     p.NDelegates,
		})
	}
	return out
}

func (pds *PosDataService) toGuardianRewardSlices(block config.BlockRef, series []rewards.AccountingState) []model.GuardianRewardSlice {
	out := make([]model.GuardianRewardSlice, 0, len(series))
	for _, s := range series {
		out = append(out, model.GuardianRewardSlice{
			BlockNumber:        s.BlockNumber,
			BlockTime:          pds.timeOf(block, s.BlockNumber),
			TxHash:             s.TransactionHash,
			AdditionalInfoLink: pds.clock.TxLink(s.TransactionHash),
			TotalAwarded:       numbers.ToDisplay(s.TotalAwarded),
		})
	}
	return out
}

func (pds *PosDataService) toDelegatorRewardSlices(block config.BlockRef, series []rewards.AccountingState) []model.DelegatorRewardSlice {
	out := make([]model.DelegatorRewardSlice, 0, len(series))
	for _, s := range series {
		out = append(out, model.DelegatorRewardSlice{
			BlockNumber:        s.BlockNumber,
			BlockTime:          pds.timeOf(block, s.BlockNumber),
			TxHash:             s.TransactionHash,
			AdditionalInfoLink: pds.clock.TxLink(s.TransactionHash),
			TotalAwarded:       numbers.ToDisplay(s.TotalAwarded),
			GuardianFrom:       s.Guardian,
		})
	}
	return out
}

func (pds *PosDataService) toGuardianDelegators(records []*history.DelegatorRecord, nonStake map[string]decimal.Decimal) []model.GuardianDelegator {
	out := make([]model.GuardianDelegator, 0, len(records))
	for _, r := range records {
		out = append(out, model.GuardianDelegator{
			LastChangeBlock: r.LastChangeBlock,
			LastChangeTime:  pds.clock.EstimatedTime(r.LastChangeBlock),
			Address:         r.Address,
			Stake:           numbers.ToDisplay(r.Stake),
			NonStake:        numbers.ToDisplay(nonStake[r.Address]),
		})
	}
	return out
}
