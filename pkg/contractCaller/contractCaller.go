package contractCaller

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UnstakeStatus is the stake in cooldown and the unix time the cooldown ends.
type UnstakeStatus struct {
	CooldownAmount  *big.Int
	CooldownEndTime *big.Int
}

type DelegatorRewardsData struct {
	Balance                       *big.Int
	Claimed                       *big.Int
	Guardian                      common.Address
	LastDelegatorRewardsPerToken  *big.Int
	DelegatorRewardsPerTokenDelta *big.Int
}

type GuardianRewardsData struct {
	Balance                       *big.Int
	Claimed                       *big.Int
	DelegatorRewardsPerToken      *big.Int
	DelegatorRewardsPerTokenDelta *big.Int
	LastStakingRewardsPerWeight   *big.Int
	StakingRewardsPerWeightDelta  *big.Int
}

type FeesAndBootstrapData struct {
	FeeBalance         *big.Int
	BootstrapBalance   *big.Int
	WithdrawnFees      *big.Int
	WithdrawnBootstrap *big.Int
	Certified          bool
}

type GuardianData struct {
	Ip               [4]byte
	OrbsAddr         common.Address
	Name             string
	Website          string
	RegistrationTime *big.Int
	LastUpdateTime   *big.Int
}

// IPosContractCaller reads contract state of the PoS suite as of a block.
type IPosContractCaller interface {
	// BalanceOf returns the liquid token balance
	BalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error)

	// StakeBalanceOf returns the staked amount
	StakeBalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error)

	UnstakeStatus(ctx context.Context, address string, block uint64) (*UnstakeStatus, error)

	// DelegatedStake returns the stake delegated to a guardian, its self stake included
	DelegatedStake(ctx context.Context, address string, block uint64) (*big.Int, error)

	DelegatorStakingRewardsData(ctx context.Context, address string, block uint64) (*DelegatorRewardsData, error)

	GuardianStakingRewardsData(ctx context.Context, address string, block uint64) (*GuardianRewardsData, error)

	// DelegatorsRewardsPercentMille returns the share of guardian rewards passed to delegators, out of 100000
	DelegatorsRewardsPercentMille(ctx context.Context, address string, block uint64) (*big.Int, error)

	FeesAndBootstrapData(ctx context.Context, address string, block uint64) (*FeesAndBootstrapData, error)

	GuardianData(ctx context.Context, address string, block uint64) (*GuardianData, error)

	// Metadata returns a free form registration value of a guardian
	Metadata(ctx context.Context, address string, key string, block uint64) (string, error)
}
