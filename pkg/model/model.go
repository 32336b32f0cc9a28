// Package model holds the JSON shapes served by the API. Amounts are display
// values (wei / 10^18) and times are unix seconds.
package model

type Action struct {
	Contract           string   `json:"contract"`
	Event              string   `json:"event"`
	BlockNumber        uint64   `json:"block_number"`
	BlockTime          int64    `json:"block_time"`
	TxHash             string   `json:"tx_hash"`
	AdditionalInfoLink string   `json:"additional_info_link"`
	Amount             *float64 `json:"amount,omitempty"`
	CurrentStake       *float64 `json:"current_stake,omitempty"`
	To                 string   `json:"to,omitempty"`
}

type DelegatorStake struct {
	BlockNumber uint64  `json:"block_number"`
	BlockTime   int64   `json:"block_time"`
	Stake       float64 `json:"stake"`
	Cooldown    float64 `json:"cooldown"`
}

type DelegatorReward struct {
	BlockNumber        uint64  `json:"block_number"`
	BlockTime          int64   `json:"block_time"`
	TxHash             string  `json:"tx_hash"`
	AdditionalInfoLink string  `json:"additional_info_link"`
	Amount             float64 `json:"amount"`
	TotalAwarded       float64 `json:"total_awarded"`
	GuardianFrom       string  `json:"guardian_from"`
}

type Delegator struct {
	Address             string            `json:"address"`
	BlockNumber         uint64            `json:"block_number"`
	BlockTime           int64             `json:"block_time"`
	TotalStake          float64           `json:"total_stake"`
	CooldownStake       float64           `json:"cooldown_stake"`
	CurrentCooldownTime int64             `json:"current_cooldown_time"`
	NonStake            float64           `json:"non_stake"`
	DelegatedTo         string            `json:"delegated_to"`
	RewardsBalance      float64           `json:"rewards_balance"`
	RewardsClaimed      float64           `json:"rewards_claimed"`
	TotalRewards        float64           `json:"total_rewards"`
	StakeSlices         []DelegatorStake  `json:"stake_slices"`
	Actions             []Action          `json:"actions"`
	RewardSlices        []DelegatorReward `json:"reward_slices"`
}

// DelegatorRewardSlice is a reconstructed point of a delegator's accrued rewards.
type DelegatorRewardSlice struct {
	BlockNumber        uint64  `json:"block_number"`
	BlockTime          int64   `json:"block_time"`
	TxHash             string  `json:"tx_hash"`
	AdditionalInfoLink string  `json:"additional_info_link"`
	TotalAwarded       float64 `json:"total_awarded"`
	GuardianFrom       string  `json:"guardian_from"`
}

type DelegatorStakingRewards struct {
	RewardSlices []DelegatorRewardSlice `json:"reward_slices"`
	ClaimActions []Action               `json:"claim_actions"`
}

type GuardianDetails struct {
	Name             string `json:"name"`
	Website          string `json:"website"`
	Ip               string `json:"ip"`
	NodeAddress      string `json:"node_address"`
	RegistrationTime int64  `json:"registration_time"`
	LastUpdateTime   int64  `json:"last_update_time"`
	DetailsUrl       string `json:"details_URL"`
	Certified        bool   `json:"certified"`
}

type GuardianStakeStatus struct {
	SelfStake           float64 `json:"self_stake"`
	CooldownStake       float64 `json:"cooldown_stake"`
	CurrentCooldownTime int64   `json:"current_cooldown_time"`
	NonStake            float64 `json:"non_stake"`
	DelegatedStake      float64 `json:"delegated_stake"`
	TotalStake          float64 `json:"total_stake"`
}

type GuardianRewardStatus struct {
	GuardianRewardsBalance  float64 `json:"guardian_rewards_balance"`
	GuardianRewardsClaimed  float64 `json:"guardian_rewards_claimed"`
	TotalGuardianRewards    float64 `json:"total_guardian_rewards"`
	DelegatorRewardsBalance float64 `json:"delegator_rewards_balance"`
	DelegatorRewardsClaimed float64 `json:"delegator_rewards_claimed"`
	TotalDelegatorRewards   float64 `json:"total_delegator_rewards"`
	FeesBalance             float64 `json:"fees_balance"`
	FeesClaimed             float64 `json:"fees_claimed"`
	TotalFees               float64 `json:"total_fees"`
	BootstrapBalance        float64 `json:"bootstrap_balance"`
	BootstrapClaimed        float64 `json:"bootstrap_claimed"`
	TotalBootstrap          float64 `json:"total_bootstrap"`
	DelegatorRewardShare    float64 `json:"delegator_reward_share"`
}

type GuardianStake struct {
	BlockNumber    uint64  `json:"block_number"`
	BlockTime      int64   `json:"block_time"`
	SelfStake      float64 `json:"self_stake"`
	DelegatedStake float64 `json:"delegated_stake"`
	NDelegates     int     `json:"n_delegates"`
}

type GuardianReward struct {
	BlockNumber        uint64  `json:"block_number"`
	BlockTime          int64   `json:"block_time"`
	TxHash             string  `json:"tx_hash"`
	AdditionalInfoLink string  `json:"additional_info_link"`
	Amount             float64 `json:"amount"`
	TotalAwarded       float64 `json:"total_awarded"`
}

type GuardianDelegator struct {
	LastChangeBlock uint64  `json:"last_change_block"`
	LastChangeTime  int64   `json:"last_change_time"`
	Address         string  `json:"address"`
	Stake           float64 `json:"stake"`
	NonStake        float64 `json:"non_stake"`
}

type GuardianInfo struct {
	Address                 string               `json:"address"`
	BlockNumber             uint64               `json:"block_number"`
	BlockTime               int64                `json:"block_time"`
	Details                 GuardianDetails      `json:"details"`
	StakeStatus             GuardianStakeStatus  `json:"stake_status"`
	RewardStatus            GuardianRewardStatus `json:"reward_status"`
	Actions                 []Action             `json:"actions"`
	StakeSlices             []GuardianStake      `json:"stake_slices"`
	RewardAsGuardianSlices  []GuardianReward     `json:"reward_as_guardian_slices"`
	RewardAsDelegatorSlices []GuardianReward     `json:"reward_as_delegator_slices"`
	BootstrapSlices         []GuardianReward     `json:"bootstrap_slices"`
	FeesSlices              []GuardianReward     `json:"fees_slices"`
	Delegators              []GuardianDelegator  `json:"delegators"`
	DelegatorsLeft          []GuardianDelegator  `json:"delegators_left"`
}

type GuardianRewardSlice struct {
	BlockNumber        uint64  `json:"block_number"`
	BlockTime          int64   `json:"block_time"`
	TxHash             string  `json:"tx_hash"`
	AdditionalInfoLink string  `json:"additional_info_link"`
	TotalAwarded       float64 `json:"total_awarded"`
}

type GuardianStakingRewards struct {
	RewardAsGuardianSlices  []GuardianRewardSlice  `json:"reward_as_guardian_slices"`
	RewardAsDelegatorSlices []DelegatorRewardSlice `json:"reward_as_delegator_slices"`
	ClaimActions            []Action               `json:"claim_actions"`
}

type Guardian struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Website        string  `json:"website"`
	EffectiveStake float64 `json:"effective_stake"`
	Ip             string  `json:"ip"`
}

type PosOverviewData struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	EffectiveStake float64 `json:"effective_stake"`
	Weight         float64 `json:"weight"`
}

type PosOverviewSlice struct {
	BlockNumber uint64            `json:"block_number"`
	BlockTime   int64             `json:"block_time"`
	Data        []PosOverviewData `json:"data"`
}

type PosOverview struct {
	BlockNumber uint64             `json:"block_number"`
	BlockTime   int64              `json:"block_time"`
	TotalStake  float64            `json:"total_stake"`
	NGuardians  int                `json:"n_guardians"`
	NCommittee  int                `json:"n_committee"`
	NCandidates int                `json:"n_candidates"`
	Apy         float64            `json:"apy"`
	Slices      []PosOverviewSlice `json:"slices"`
}
