// Package stateReader assembles the live contract state of a delegator or a
// guardian at a pinned block. Every value it returns is contract ground truth.
package stateReader

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/contractCaller"
	"github.com/orbs-network/pos-analytics/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MetadataDetailsUrlKey is the registration metadata key holding the guardian's details form.
const MetadataDetailsUrlKey = "ID_FORM_URL"

// percentMilleScale is the denominator of the delegators reward share.
const percentMilleScale = 100000

// GuardianAccounting is a guardian's reward per weight and reward per token accrual.
type GuardianAccounting struct {
	RPW      decimal.Decimal
	DeltaRPW decimal.Decimal
	RPT      decimal.Decimal
	DeltaRPT decimal.Decimal
}

// DelegatorAccounting is the reward position of an address as a delegator.
type DelegatorAccounting struct {
	Balance  decimal.Decimal
	Claimed  decimal.Decimal
	Guardian string
	RPT      decimal.Decimal
	DeltaRPT decimal.Decimal
}

func (d DelegatorAccounting) TotalAwarded() decimal.Decimal {
	return d.Balance.Add(d.Claimed)
}

type StakeState struct {
	Staked          decimal.Decimal
	CooldownStake   decimal.Decimal
	CooldownEndTime int64
	NonStake        decimal.Decimal
}

type DelegatorState struct {
	Address string
	Block   config.BlockRef
	Stake   StakeState
	Rewards DelegatorAccounting

	// GuardianRewards is the accrual of the guardian the delegator is attributed to
	GuardianRewards GuardianAccounting
}

// LastAwarded estimates the reward settled by the delegator's last checkpoint.
func (d *DelegatorState) LastAwarded() decimal.Decimal {
	return lastAwardedAsDelegator(d.Stake.Staked, d.Rewards.DeltaRPT)
}

type GuardianDetails struct {
	Name             string
	Website          string
	Ip               string
	NodeAddress      string
	RegistrationTime int64
	LastUpdateTime   int64
	DetailsUrl       string
	Certified        bool
}

type GuardianState struct {
	Address string
	Block   config.BlockRef
	Details GuardianDetails
	Stake   StakeState

	// DelegatedStake is the total stake delegated to the guardian, self stake included
	DelegatedStake decimal.Decimal

	GuardianRewardsBalance decimal.Decimal
	GuardianRewardsClaimed decimal.Decimal
	GuardianRewards        GuardianAccounting
	AsDelegator            DelegatorAccounting
	FeesBalance            decimal.Decimal
	FeesClaimed            decimal.Decimal
	BootstrapBalance       decimal.Decimal
	BootstrapClaimed       decimal.Decimal
	DelegatorRewardsShare  float64
}

func (g *GuardianState) TotalGuardianRewards() decimal.Decimal {
	return g.GuardianRewardsBalance.Add(g.GuardianRewardsClaimed)
}

// SelfLastAwarded estimates the reward the guardian's own stake settled as a delegator.
func (g *GuardianState) SelfLastAwarded() decimal.Decimal {
	return lastAwardedAsDelegator(g.Stake.Staked, g.AsDelegator.DeltaRPT)
}

func lastAwardedAsDelegator(staked decimal.Decimal, deltaRPT decimal.Decimal) decimal.Decimal {
	return staked.Mul(deltaRPT).Shift(-numbers.TokenDecimals)
}

type IStateReader interface {
	ReadDelegator(ctx context.Context, address string, block config.BlockRef) (*DelegatorState, error)
	ReadGuardian(ctx context.Context, address string, block config.BlockRef) (*GuardianState, error)
}

type StateReader struct {
	caller contractCaller.IPosContractCaller
	logger *zap.Logger
}

func NewStateReader(caller contractCaller.IPosContractCaller, l *zap.Logger) *StateReader {
	return &StateReader{
		caller: caller,
		logger: l,
	}
}

func (sr *StateReader) readStake(g *errgroup.Group, ctx context.Context, address string, block uint64, out *StakeState) {
	g.Go(func() error {
		v, err := sr.caller.BalanceOf(ctx, address, block)
		if err != nil {
			return err
		}
		out.NonStake = numbers.FromBigInt(v)
		return nil
	})
	g.Go(func() error {
		v, err := sr.caller.StakeBalanceOf(ctx, address, block)
		if err != nil {
			return err
		}
		out.Staked = numbers.FromBigInt(v)
		return nil
	})
	g.Go(func() error {
		v, err := sr.caller.UnstakeStatus(ctx, address, block)
		if err != nil {
			return err
		}
		out.CooldownStake = numbers.FromBigInt(v.CooldownAmount)
		out.CooldownEndTime = v.CooldownEndTime.Int64()
		return nil
	})
}

func (sr *StateReader) readAsDelegator(g *errgroup.Group, ctx context.Context, address string, block uint64, out *DelegatorAccounting) {
	g.Go(func() error {
		v, err := sr.caller.DelegatorStakingRewardsData(ctx, address, block)
		if err != nil {
			return err
		}
		*out = DelegatorAccounting{
			Balance:  numbers.FromBigInt(v.Balance),
			Claimed:  numbers.FromBigInt(v.Claimed),
			Guardian: strings.ToLower(v.Guardian.Hex()),
			RPT:      numbers.FromBigInt(v.LastDelegatorRewardsPerToken),
			DeltaRPT: numbers.FromBigInt(v.DelegatorRewardsPerTokenDelta),
		}
		return nil
	})
}

func (sr *StateReader) readGuardianAccounting(ctx context.Context, guardian string, block uint64) (*contractCaller.GuardianRewardsData, GuardianAccounting, error) {
	v, err := sr.caller.GuardianStakingRewardsData(ctx, guardian, block)
	if err != nil {
		return nil, GuardianAccounting{}, err
	}
	return v, GuardianAccounting{
		RPW:      numbers.FromBigInt(v.LastStakingRewardsPerWeight),
		DeltaRPW: numbers.FromBigInt(v.StakingRewardsPerWeightDelta),
		RPT:      numbers.FromBigInt(v.DelegatorRewardsPerToken),
		DeltaRPT: numbers.FromBigInt(v.DelegatorRewardsPerTokenDelta),
	}, nil
}

// ReadDelegator reads the delegator's stake and reward position, then the
// accrual of the guardian its rewards are attributed to.
func (sr *StateReader) ReadDelegator(ctx context.Context, address string, block config.BlockRef) (*DelegatorState, error) {
	address = utils.NormalizeAddress(address)
	state := &DelegatorState{Address: address, Block: block}

	g, gctx := errgroup.WithContext(ctx)
	sr.readStake(g, gctx, address, block.Number, &state.Stake)
	sr.readAsDelegator(g, gctx, address, block.Number, &state.Rewards)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read delegator state of %s: %w", address, err)
	}

	_, acc, err := sr.readGuardianAccounting(ctx, state.Rewards.Guardian, block.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to read guardian state of %s: %w", state.Rewards.Guardian, err)
	}
	state.GuardianRewards = acc

	sr.logger.Sugar().Debugw("Read delegator state",
		zap.String("address", address),
		zap.Uint64("block", block.Number),
		zap.String("guardian", state.Rewards.Guardian),
	)
	return state, nil
}

// ReadGuardian reads registration details, stake, fee and reward positions of a guardian.
func (sr *StateReader) ReadGuardian(ctx context.Context, address string, block config.BlockRef) (*GuardianState, error) {
	address = utils.NormalizeAddress(address)
	state := &GuardianState{Address: address, Block: block}
	n := block.Number

	g, gctx := errgroup.WithContext(ctx)
	sr.readStake(g, gctx, address, n, &state.Stake)
	sr.readAsDelegator(g, gctx, address, n, &state.AsDelegator)
	g.Go(func() error {
		raw, acc, err := sr.readGuardianAccounting(gctx, address, n)
		if err != nil {
			return err
		}
		state.GuardianRewards = acc
		state.GuardianRewardsBalance = numbers.FromBigInt(raw.Balance)
		state.GuardianRewardsClaimed = numbers.FromBigInt(raw.Claimed)
		return nil
	})
	g.Go(func() error {
		v, err := sr.caller.DelegatorsRewardsPercentMille(gctx, address, n)
		if err != nil {
			return err
		}
		state.DelegatorRewardsShare = float64(v.Int64()) / percentMilleScale
		return nil
	})
	g.Go(func() error {
		v, err := sr.caller.DelegatedStake(gctx, address, n)
		if err != nil {
			return err
		}
		state.DelegatedStake = numbers.FromBigInt(v)
		return nil
	})
	var certified bool
	g.Go(func() error {
		v, err := sr.caller.FeesAndBootstrapData(gctx, address, n)
		if err != nil {
			return err
		}
		state.FeesBalance = numbers.FromBigInt(v.FeeBalance)
		state.FeesClaimed = numbers.FromBigInt(v.WithdrawnFees)
		state.BootstrapBalance = numbers.FromBigInt(v.BootstrapBalance)
		state.BootstrapClaimed = numbers.FromBigInt(v.WithdrawnBootstrap)
		certified = v.Certified
		return nil
	})
	var detailsUrl string
	g.Go(func() error {
		v, err := sr.caller.Metadata(gctx, address, MetadataDetailsUrlKey, n)
		if err != nil {
			return err
		}
		detailsUrl = v
		return nil
	})
	var data *contractCaller.GuardianData
	g.Go(func() error {
		v, err := sr.caller.GuardianData(gctx, address, n)
		if err != nil {
			return err
		}
		data = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read guardian state of %s: %w", address, err)
	}

	state.Details = GuardianDetails{
		Name:             data.Name,
		Website:          data.Website,
		Ip:               IpFromBytes(data.Ip),
		NodeAddress:      strings.ToLower(data.OrbsAddr.Hex()),
		RegistrationTime: int64OrZero(data.RegistrationTime),
		LastUpdateTime:   int64OrZero(data.LastUpdateTime),
		DetailsUrl:       detailsUrl,
		Certified:        certified,
	}

	sr.logger.Sugar().Debugw("Read guardian state",
		zap.String("address", address),
		zap.Uint64("block", n),
		zap.String("name", state.Details.Name),
	)
	return state, nil
}

// IpFromBytes renders a packed IPv4 address, most significant byte first.
func IpFromBytes(ip [4]byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

func int64OrZero(b *big.Int) int64 {
	if b == nil || !b.IsInt64() {
		return 0
	}
	return b.Int64()
}
