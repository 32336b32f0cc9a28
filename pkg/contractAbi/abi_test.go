package contractAbi

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_ContractAbi(t *testing.T) {
	t.Run("Should parse every embedded abi", func(t *testing.T) {
		for kind := range abiJson {
			a, err := GetAbi(kind)
			assert.Nil(t, err, kind)
			assert.NotNil(t, a)
		}
	})
	t.Run("Should fail for an unknown kind", func(t *testing.T) {
		_, err := GetAbi(ContractKind("unknown"))
		assert.NotNil(t, err)
	})
	t.Run("Should compute topics from the event signature", func(t *testing.T) {
		topic, err := EventTopic(ContractKind_Stake, "Staked")
		assert.Nil(t, err)
		assert.Equal(t, crypto.Keccak256Hash([]byte("Staked(address,uint256,uint256)")), topic)

		topic, err = EventTopic(ContractKind_Delegations, "DelegatedStakeChanged")
		assert.Nil(t, err)
		assert.Equal(t, crypto.Keccak256Hash([]byte("DelegatedStakeChanged(address,uint256,uint256,address,uint256)")), topic)
	})
	t.Run("Should fail for an unknown event", func(t *testing.T) {
		_, err := EventTopic(ContractKind_Stake, "Delegated")
		assert.NotNil(t, err)

		_, err = EventTopics(ContractKind_StakingRewards, "StakingRewardsClaimed", "Nope")
		assert.NotNil(t, err)
	})
	t.Run("Should expose the registry managed kinds", func(t *testing.T) {
		assert.Len(t, RegistryManagedKinds, 4)
		assert.NotContains(t, RegistryManagedKinds, ContractKind_Stake)
	})
	t.Run("Should reject malformed json", func(t *testing.T) {
		_, err := UnmarshalJsonToAbi(`[{"type":"function"`, zap.NewNop())
		assert.NotNil(t, err)
	})
}
