package boundContractCaller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/contractCaller"
	"github.com/orbs-network/pos-analytics/pkg/contractRegistry"
	"go.uber.org/zap"
)

// BoundContractCaller calls the current contract of each kind through an abigen bound contract.
type BoundContractCaller struct {
	Caller   bind.ContractCaller
	Registry contractRegistry.IContractRegistry
	Logger   *zap.Logger
}

func NewBoundContractCaller(caller bind.ContractCaller, registry contractRegistry.IContractRegistry, l *zap.Logger) *BoundContractCaller {
	return &BoundContractCaller{
		Caller:   caller,
		Registry: registry,
		Logger:   l,
	}
}

var _ contractCaller.IPosContractCaller = (*BoundContractCaller)(nil)

func (bcc *BoundContractCaller) call(ctx context.Context, kind contractAbi.ContractKind, block uint64, method string, params ...interface{}) (*outputs, error) {
	if bcc.Caller == nil {
		return nil, fmt.Errorf("ethereum client not available")
	}
	set, err := bcc.Registry.Resolve(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contracts: %w", err)
	}
	address, err := set.Latest(kind)
	if err != nil {
		return nil, err
	}
	parsedAbi, err := contractAbi.GetAbi(kind)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(common.HexToAddress(address), *parsedAbi, bcc.Caller, nil, nil)

	var result []interface{}
	opts := &bind.CallOpts{Context: ctx, BlockNumber: new(big.Int).SetUint64(block)}
	if err := contract.Call(opts, &result, method, params...); err != nil {
		bcc.Logger.Sugar().Errorw("Failed to call contract",
			zap.String("contract", kind.String()),
			zap.String("address", address),
			zap.String("method", method),
			zap.Uint64("block", block),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call %s on %s %s: %w", method, kind, address, err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("got empty result from %s on %s %s", method, kind, address)
	}
	return &outputs{method: method, values: result}, nil
}

func (bcc *BoundContractCaller) BalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_Erc20, block, "balanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	v := out.big(0)
	return v, out.err
}

func (bcc *BoundContractCaller) StakeBalanceOf(ctx context.Context, address string, block uint64) (*big.Int, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_Stake, block, "getStakeBalanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	v := out.big(0)
	return v, out.err
}

func (bcc *BoundContractCaller) UnstakeStatus(ctx context.Context, address string, block uint64) (*contractCaller.UnstakeStatus, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_Stake, block, "getUnstakeStatus", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	status := &contractCaller.UnstakeStatus{
		CooldownAmount:  out.big(0),
		CooldownEndTime: out.big(1),
	}
	return status, out.err
}

func (bcc *BoundContractCaller) DelegatedStake(ctx context.Context, address string, block uint64) (*big.Int, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_Delegations, block, "getDelegatedStake", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	v := out.big(0)
	return v, out.err
}

func (bcc *BoundContractCaller) DelegatorStakingRewardsData(ctx context.Context, address string, block uint64) (*contractCaller.DelegatorRewardsData, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_StakingRewards, block, "getDelegatorStakingRewardsData", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	data := &contractCaller.DelegatorRewardsData{
		Balance:                       out.big(0),
		Claimed:                       out.big(1),
		Guardian:                      out.address(2),
		LastDelegatorRewardsPerToken:  out.big(3),
		DelegatorRewardsPerTokenDelta: out.big(4),
	}
	return data, out.err
}

func (bcc *BoundContractCaller) GuardianStakingRewardsData(ctx context.Context, address string, block uint64) (*contractCaller.GuardianRewardsData, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_StakingRewards, block, "getGuardianStakingRewardsData", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	data := &contractCaller.GuardianRewardsData{
		Balance:                       out.big(0),
		Claimed:                       out.big(1),
		DelegatorRewardsPerToken:      out.big(2),
		DelegatorRewardsPerTokenDelta: out.big(3),
		LastStakingRewardsPerWeight:   out.big(4),
		StakingRewardsPerWeightDelta:  out.big(5),
	}
	return data, out.err
}

func (bcc *BoundContractCaller) DelegatorsRewardsPercentMille(ctx context.Context, address string, block uint64) (*big.Int, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_StakingRewards, block, "getGuardianDelegatorsStakingRewardsPercentMille", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	v := out.big(0)
	return v, out.err
}

func (bcc *BoundContractCaller) FeesAndBootstrapData(ctx context.Context, address string, block uint64) (*contractCaller.FeesAndBootstrapData, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_FeesAndBootstrapRewards, block, "getFeesAndBootstrapData", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	data := &contractCaller.FeesAndBootstrapData{
		FeeBalance:         out.big(0),
		BootstrapBalance:   out.big(2),
		WithdrawnFees:      out.big(4),
		WithdrawnBootstrap: out.big(5),
		Certified:          out.boolean(6),
	}
	return data, out.err
}

func (bcc *BoundContractCaller) GuardianData(ctx context.Context, address string, block uint64) (*contractCaller.GuardianData, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_GuardiansRegistration, block, "getGuardianData", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	data := &contractCaller.GuardianData{
		Ip:               out.bytes4(0),
		OrbsAddr:         out.address(1),
		Name:             out.str(2),
		Website:          out.str(3),
		RegistrationTime: out.big(4),
		LastUpdateTime:   out.big(5),
	}
	return data, out.err
}

func (bcc *BoundContractCaller) Metadata(ctx context.Context, address string, key string, block uint64) (string, error) {
	out, err := bcc.call(ctx, contractAbi.ContractKind_GuardiansRegistration, block, "getMetadata", common.HexToAddress(address), key)
	if err != nil {
		return "", err
	}
	v := out.str(0)
	return v, out.err
}

// outputs reads positional call results, keeping the first type mismatch.
type outputs struct {
	method string
	values []interface{}
	err    error
}

func (o *outputs) at(i int) interface{} {
	if i >= len(o.values) {
		o.fail(fmt.Errorf("%s returned %d values, wanted at least %d", o.method, len(o.values), i+1))
		return nil
	}
	return o.values[i]
}

func (o *outputs) big(i int) *big.Int {
	v, ok := o.at(i).(*big.Int)
	if !ok {
		o.fail(fmt.Errorf("got unexpected result type %T at %d from %s", o.at(i), i, o.method))
		return new(big.Int)
	}
	return v
}

func (o *outputs) address(i int) common.Address {
	v, ok := o.at(i).(common.Address)
	if !ok {
		o.fail(fmt.Errorf("got unexpected result type %T at %d from %s", o.at(i), i, o.method))
	}
	return v
}

func (o *outputs) str(i int) string {
	v, ok := o.at(i).(string)
	if !ok {
		o.fail(fmt.Errorf("got unexpected result type %T at %d from %s", o.at(i), i, o.method))
	}
	return v
}

func (o *outputs) boolean(i int) bool {
	v, ok := o.at(i).(bool)
	if !ok {
		o.fail(fmt.Errorf("got unexpected result type %T at %d from %s", o.at(i), i, o.method))
	}
	return v
}

func (o *outputs) bytes4(i int) [4]byte {
	v, ok := o.at(i).([4]byte)
	if !ok {
		o.fail(fmt.Errorf("got unexpected result type %T at %d from %s", o.at(i), i, o.method))
	}
	return v
}

func (o *outputs) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}
