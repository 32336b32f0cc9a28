package transactionLogParser

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/orbs-network/pos-analytics/internal/types/numbers"
	"github.com/orbs-network/pos-analytics/pkg/contractAbi"
	"github.com/orbs-network/pos-analytics/pkg/events"
	"github.com/orbs-network/pos-analytics/pkg/parser"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrUnknownEvent is returned by DecodeLog when no known ABI declares the log's topic.
var ErrUnknownEvent = errors.New("unknown event signature")

type knownEvent struct {
	kind  contractAbi.ContractKind
	abi   *abi.ABI
	event abi.Event
}

// TransactionLogParser decodes raw logs of the PoS contract suite into typed events.
type TransactionLogParser struct {
	logger *zap.Logger
	known  map[common.Hash]knownEvent
}

// NewTransactionLogParser indexes every event of the embedded contract ABIs by topic.
//
// Parameters:
//   - logger: Logger for recording operations
//
// Returns:
//   - *TransactionLogParser: A configured transaction log parser
//   - error: When an embedded ABI fails to parse
func NewTransactionLogParser(logger *zap.Logger) (*TransactionLogParser, error) {
	known := make(map[common.Hash]knownEvent)
	kinds := []contractAbi.ContractKind{
		contractAbi.ContractKind_Stake,
		contractAbi.ContractKind_ContractRegistry,
		contractAbi.ContractKind_Delegations,
		contractAbi.ContractKind_StakingRewards,
		contractAbi.ContractKind_FeesAndBootstrapRewards,
	}
	for _, kind := range kinds {
		a, err := contractAbi.GetAbi(kind)
		if err != nil {
			return nil, err
		}
		for _, e := range a.Events {
			known[e.ID] = knownEvent{kind: kind, abi: a, event: e}
		}
	}
	return &TransactionLogParser{
		logger: logger,
		known:  known,
	}, nil
}

// ParseLogs decodes logs into typed events, skipping logs with an unknown signature.
//
// Parameters:
//   - logs: Raw logs as returned by eth_getLogs
//
// Returns:
//   - []events.Event: Decoded events in the order of the input
//   - error: The first decoding error of a known event
func (tlp *TransactionLogParser) ParseLogs(logs []types.Log) ([]events.Event, error) {
	out := make([]events.Event, 0, len(logs))
	for i := range logs {
		e, err := tlp.ParseLog(&logs[i])
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseLog decodes a single log into its typed event.
func (tlp *TransactionLogParser) ParseLog(lg *types.Log) (events.Event, error) {
	decoded, err := tlp.DecodeLog(lg)
	if err != nil {
		return nil, err
	}
	e, err := toEvent(decoded)
	if err != nil {
		tlp.logger.Sugar().Errorw("Failed to convert decoded log",
			zap.String("eventName", decoded.EventName),
			zap.String("transactionHash", decoded.TransactionHash),
			zap.Uint64("blockNumber", decoded.BlockNumber),
			zap.Error(err),
		)
		return nil, err
	}
	return e, nil
}

// DecodeLog decodes a log using the ABI declaring its topic.
// Indexed arguments are read from the topics, everything else from the data.
//
// Parameters:
//   - lg: The log to decode
//
// Returns:
//   - *parser.DecodedLog: The decoded log with structured data
//   - error: ErrUnknownEvent for foreign logs, or a decoding error
func (tlp *TransactionLogParser) DecodeLog(lg *types.Log) (*parser.DecodedLog, error) {
	if len(lg.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	ke, ok := tlp.known[lg.Topics[0]]
	if !ok {
		tlp.logger.Sugar().Debugw("Skipping log with unknown topic",
			zap.String("topic", lg.Topics[0].Hex()),
			zap.String("address", lg.Address.Hex()),
			zap.String("transactionHash", lg.TxHash.Hex()),
		)
		return nil, ErrUnknownEvent
	}
	event := ke.event

	decodedLog := &parser.DecodedLog{
		Address:          strings.ToLower(lg.Address.Hex()),
		LogIndex:         uint64(lg.Index),
		EventName:        event.RawName,
		BlockNumber:      lg.BlockNumber,
		TransactionIndex: uint64(lg.TxIndex),
		TransactionHash:  lg.TxHash.Hex(),
		Arguments:        make([]parser.Argument, len(event.Inputs)),
	}

	topicIdx := 1
	for i, input := range event.Inputs {
		decodedLog.Arguments[i] = parser.Argument{
			Name:    input.Name,
			Type:    input.Type.String(),
			Indexed: input.Indexed,
		}
		if !input.Indexed {
			continue
		}
		if topicIdx >= len(lg.Topics) {
			return nil, fmt.Errorf("log for %s is missing indexed topic '%s'", event.RawName, input.Name)
		}
		v, err := ParseLogValueForType(input, lg.Topics[topicIdx].Hex())
		if err != nil {
			return nil, fmt.Errorf("failed to parse topic '%s' of %s: %w", input.Name, event.RawName, err)
		}
		decodedLog.Arguments[i].Value = v
		topicIdx++
	}

	if len(lg.Data) > 0 {
		outputDataMap := make(map[string]interface{})
		if err := ke.abi.UnpackIntoMap(outputDataMap, event.Name, lg.Data); err != nil {
			tlp.logger.Sugar().Errorw("Failed to unpack data",
				zap.Error(err),
				zap.String("address", lg.Address.Hex()),
				zap.String("eventName", event.Name),
				zap.String("transactionHash", lg.TxHash.Hex()),
			)
			return nil, errors.Wrap(err, "failed to unpack data")
		}
		decodedLog.OutputData = outputDataMap
	}
	return decodedLog, nil
}

func toEvent(d *parser.DecodedLog) (events.Event, error) {
	meta := events.Meta{
		Kind:             events.Kind(d.EventName),
		Contract:         d.Address,
		BlockNumber:      d.BlockNumber,
		TransactionIndex: d.TransactionIndex,
		LogIndex:         d.LogIndex,
		TransactionHash:  d.TransactionHash,
	}
	r := &reader{d: d}

	var e events.Event
	switch meta.Kind {
	case events.Kind_Staked, events.Kind_Restaked, events.Kind_Unstaked, events.Kind_Withdrew:
		e = &events.StakeChanged{
			Meta:              meta,
			StakeOwner:        r.address("stakeOwner"),
			Amount:            r.amount("amount"),
			TotalStakedAmount: r.amount("totalStakedAmount"),
		}
	case events.Kind_Delegated:
		e = &events.Delegated{
			Meta: meta,
			From: r.address("from"),
			To:   r.address("to"),
		}
	case events.Kind_DelegatedStakeChanged:
		e = &events.DelegatedStakeChanged{
			Meta:                      meta,
			Guardian:                  r.address("addr"),
			SelfDelegatedStake:        r.amount("selfDelegatedStake"),
			DelegatedStake:            r.amount("delegatedStake"),
			Delegator:                 r.address("delegator"),
			DelegatorContributedStake: r.amount("delegatorContributedStake"),
		}
	case events.Kind_GuardianRewardAssigned:
		e = &events.GuardianRewardAssigned{
			Meta:                          meta,
			Guardian:                      r.address("guardian"),
			Amount:                        r.amount("amount"),
			TotalAwarded:                  r.amount("totalAwarded"),
			DelegatorRewardsPerToken:      r.amount("delegatorRewardsPerToken"),
			DelegatorRewardsPerTokenDelta: r.amount("delegatorRewardsPerTokenDelta"),
			StakingRewardsPerWeight:       r.amount("stakingRewardsPerWeight"),
			StakingRewardsPerWeightDelta:  r.amount("stakingRewardsPerWeightDelta"),
		}
	case events.Kind_DelegatorRewardAssigned:
		e = &events.DelegatorRewardAssigned{
			Meta:                          meta,
			Delegator:                     r.address("delegator"),
			Amount:                        r.amount("amount"),
			TotalAwarded:                  r.amount("totalAwarded"),
			Guardian:                      r.address("guardian"),
			DelegatorRewardsPerToken:      r.amount("delegatorRewardsPerToken"),
			DelegatorRewardsPerTokenDelta: r.amount("delegatorRewardsPerTokenDelta"),
		}
	case events.Kind_StakingRewardsAllocated:
		e = &events.StakingRewardsAllocated{
			Meta:                    meta,
			AllocatedRewards:        r.amount("allocatedRewards"),
			StakingRewardsPerWeight: r.amount("stakingRewardsPerWeight"),
		}
	case events.Kind_StakingRewardsClaimed:
		e = &events.StakingRewardsClaimed{
			Meta:                         meta,
			Addr:                         r.address("addr"),
			ClaimedDelegatorRewards:      r.amount("claimedDelegatorRewards"),
			ClaimedGuardianRewards:       r.amount("claimedGuardianRewards"),
			TotalClaimedDelegatorRewards: r.amount("totalClaimedDelegatorRewards"),
			TotalClaimedGuardianRewards:  r.amount("totalClaimedGuardianRewards"),
		}
	case events.Kind_FeesAssigned, events.Kind_BootstrapRewardsAssigned:
		e = &events.FeeBootstrapAssigned{
			Meta:         meta,
			Guardian:     r.address("guardian"),
			Amount:       r.amount("amount"),
			TotalAwarded: r.amount("totalAwarded"),
		}
	case events.Kind_FeesWithdrawn, events.Kind_BootstrapRewardsWithdrawn:
		e = &events.FeeBootstrapWithdrawn{
			Meta:           meta,
			Guardian:       r.address("guardian"),
			Amount:         r.amount("amount"),
			TotalWithdrawn: r.amount("totalWithdrawn"),
		}
	case events.Kind_ContractAddressUpdated:
		e = &events.ContractAddressUpdated{
			Meta:            meta,
			ContractName:    r.str("contractName"),
			Addr:            r.address("addr"),
			ManagedContract: r.boolean("managedContract"),
		}
	case events.Kind_ContractRegistryUpdated:
		e = &events.ContractRegistryUpdated{
			Meta:                meta,
			NewContractRegistry: r.address("newContractRegistry"),
		}
	default:
		return nil, ErrUnknownEvent
	}
	if r.err != nil {
		return nil, r.err
	}
	return e, nil
}

// reader keeps the first lookup error so conversions read as a flat list of fields.
type reader struct {
	d   *parser.DecodedLog
	err error
}

func (r *reader) address(name string) string {
	v, err := r.d.AddressValue(name)
	r.keep(err)
	return v
}

func (r *reader) amount(name string) decimal.Decimal {
	v, err := r.d.BigValue(name)
	r.keep(err)
	return numbers.FromBigInt(v)
}

func (r *reader) str(name string) string {
	v, err := r.d.StringValue(name)
	r.keep(err)
	return v
}

func (r *reader) boolean(name string) bool {
	v, err := r.d.BoolValue(name)
	r.keep(err)
	return v
}

func (r *reader) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// ParseLogValueForType converts an indexed topic to an appropriate Go type
// based on the ABI argument type.
//
// Parameters:
//   - argument: The ABI argument definition containing type information
//   - value: The hex-encoded value to parse
//
// Returns:
//   - interface{}: The converted value
//   - error: Any error encountered during conversion
func ParseLogValueForType(argument abi.Argument, value string) (interface{}, error) {
	valueBytes, err := hexutil.Decode(value)
	if err != nil {
		return nil, err
	}
	switch argument.Type.T {
	case abi.IntTy, abi.UintTy:
		return abi.ReadInteger(argument.Type, valueBytes)
	case abi.BoolTy:
		return readBool(valueBytes)
	case abi.AddressTy:
		return common.BytesToAddress(valueBytes), nil
	default:
		// strings, bytes and dynamic types are hashed into the topic; keep the hash
		return value, nil
	}
}

var (
	errBadBool = fmt.Errorf("abi: improperly encoded boolean value")
)

// readBool converts a 32-byte word to a boolean value.
func readBool(word []byte) (bool, error) {
	if len(word) != 32 {
		return false, errBadBool
	}
	for _, b := range word[:31] {
		if b != 0 {
			return false, errBadBool
		}
	}
	switch word[31] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errBadBool
	}
}
