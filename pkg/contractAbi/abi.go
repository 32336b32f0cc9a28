// Package contractAbi holds the ABIs of the Orbs PoS v2 contract suite and the
// lookups the log parser and contract caller need.
package contractAbi

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ContractKind names a contract family. Registry managed kinds use the name the
// contract registry publishes them under.
type ContractKind string

const (
	ContractKind_Erc20                   ContractKind = "erc20"
	ContractKind_Stake                   ContractKind = "stake"
	ContractKind_ContractRegistry        ContractKind = "contractRegistry"
	ContractKind_Delegations             ContractKind = "delegations"
	ContractKind_StakingRewards          ContractKind = "stakingRewards"
	ContractKind_FeesAndBootstrapRewards ContractKind = "feesAndBootstrapRewards"
	ContractKind_GuardiansRegistration   ContractKind = "guardiansRegistration"
)

func (k ContractKind) String() string {
	return string(k)
}

// RegistryManagedKinds are the kinds whose addresses are discovered through the contract registry.
var RegistryManagedKinds = []ContractKind{
	ContractKind_Delegations,
	ContractKind_StakingRewards,
	ContractKind_FeesAndBootstrapRewards,
	ContractKind_GuardiansRegistration,
}

var abiJson = map[ContractKind]string{
	ContractKind_Erc20:                   erc20Abi,
	ContractKind_Stake:                   stakeAbi,
	ContractKind_ContractRegistry:        contractRegistryAbi,
	ContractKind_Delegations:             delegationsAbi,
	ContractKind_StakingRewards:          stakingRewardsAbi,
	ContractKind_FeesAndBootstrapRewards: feesAndBootstrapRewardsAbi,
	ContractKind_GuardiansRegistration:   guardiansRegistrationAbi,
}

var (
	parseOnce  sync.Once
	parsedAbis map[ContractKind]*abi.ABI
	parseErr   error
)

func loadAbis() {
	parsedAbis = make(map[ContractKind]*abi.ABI, len(abiJson))
	for kind, j := range abiJson {
		a, err := UnmarshalJsonToAbi(j, zap.NewNop())
		if err != nil {
			parseErr = fmt.Errorf("failed to parse abi for %s: %w", kind, err)
			return
		}
		parsedAbis[kind] = a
	}
}

// GetAbi returns the parsed ABI of a contract kind.
func GetAbi(kind ContractKind) (*abi.ABI, error) {
	parseOnce.Do(loadAbis)
	if parseErr != nil {
		return nil, parseErr
	}
	a, ok := parsedAbis[kind]
	if !ok {
		return nil, fmt.Errorf("no abi for contract kind '%s'", kind)
	}
	return a, nil
}

// MustGetAbi panics when the embedded ABI is missing or malformed.
func MustGetAbi(kind ContractKind) *abi.ABI {
	a, err := GetAbi(kind)
	if err != nil {
		panic(err)
	}
	return a
}

// EventTopic returns the topic0 of an event declared by a contract kind.
func EventTopic(kind ContractKind, eventName string) (common.Hash, error) {
	a, err := GetAbi(kind)
	if err != nil {
		return common.Hash{}, err
	}
	e, ok := a.Events[eventName]
	if !ok {
		return common.Hash{}, fmt.Errorf("event '%s' not found on %s", eventName, kind)
	}
	return e.ID, nil
}

// MustEventTopic is EventTopic for the fixed event set of this package.
func MustEventTopic(kind ContractKind, eventName string) common.Hash {
	topic, err := EventTopic(kind, eventName)
	if err != nil {
		panic(err)
	}
	return topic
}

// EventTopics returns the topic0 values of several events of the same contract kind.
func EventTopics(kind ContractKind, eventNames ...string) ([]common.Hash, error) {
	topics := make([]common.Hash, 0, len(eventNames))
	for _, name := range eventNames {
		topic, err := EventTopic(kind, name)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// UnmarshalJsonToAbi unmarshals a JSON ABI string into an abi.ABI struct.
// It handles certain common unmarshaling errors that can be safely ignored,
// such as "only single receive is allowed" and "only single fallback is allowed".
func UnmarshalJsonToAbi(json string, l *zap.Logger) (*abi.ABI, error) {
	a := &abi.ABI{}

	err := a.UnmarshalJSON([]byte(json))

	if err != nil {
		foundMatch := false
		// patterns that we're fine to ignore and not treat as an error
		patterns := []*regexp.Regexp{
			regexp.MustCompile(`only single receive is allowed`),
			regexp.MustCompile(`only single fallback is allowed`),
		}

		for _, pattern := range patterns {
			if pattern.MatchString(err.Error()) {
				foundMatch = true
				break
			}
		}

		if !foundMatch {
			l.Sugar().Warnw("Error unmarshaling abi json", zap.Error(err))
			return nil, err
		}
	}

	return a, nil
}
