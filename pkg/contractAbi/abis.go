package contractAbi

const erc20Abi = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const stakeAbi = `[
	{"type":"event","name":"Staked","anonymous":false,"inputs":[{"name":"stakeOwner","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalStakedAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Unstaked","anonymous":false,"inputs":[{"name":"stakeOwner","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalStakedAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdrew","anonymous":false,"inputs":[{"name":"stakeOwner","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalStakedAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Restaked","anonymous":false,"inputs":[{"name":"stakeOwner","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalStakedAmount","type":"uint256","indexed":false}]},
	{"type":"function","name":"getStakeBalanceOf","stateMutability":"view","inputs":[{"name":"stakeOwner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUnstakeStatus","stateMutability":"view","inputs":[{"name":"stakeOwner","type":"address"}],"outputs":[{"name":"cooldownAmount","type":"uint256"},{"name":"cooldownEndTime","type":"uint256"}]}
]`

const contractRegistryAbi = `[
	{"type":"event","name":"ContractAddressUpdated","anonymous":false,"inputs":[{"name":"contractName","type":"string","indexed":false},{"name":"addr","type":"address","indexed":false},{"name":"managedContract","type":"bool","indexed":false}]},
	{"type":"event","name":"ContractRegistryUpdated","anonymous":false,"inputs":[{"name":"newContractRegistry","type":"address","indexed":false}]}
]`

const delegationsAbi = `[
	{"type":"event","name":"Delegated","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true}]},
	{"type":"event","name":"DelegatedStakeChanged","anonymous":false,"inputs":[{"name":"addr","type":"address","indexed":true},{"name":"selfDelegatedStake","type":"uint256","indexed":false},{"name":"delegatedStake","type":"uint256","indexed":false},{"name":"delegator","type":"address","indexed":true},{"name":"delegatorContributedStake","type":"uint256","indexed":false}]},
	{"type":"function","name":"getDelegatedStake","stateMutability":"view","inputs":[{"name":"addr","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const stakingRewardsAbi = `[
	{"type":"event","name":"DelegatorStakingRewardsAssigned","anonymous":false,"inputs":[{"name":"delegator","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAwarded","type":"uint256","indexed":false},{"name":"guardian","type":"address","indexed":false},{"name":"delegatorRewardsPerToken","type":"uint256","indexed":false},{"name":"delegatorRewardsPerTokenDelta","type":"uint256","indexed":false}]},
	{"type":"event","name":"GuardianStakingRewardsAssigned","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAwarded","type":"uint256","indexed":false},{"name":"delegatorRewardsPerToken","type":"uint256","indexed":false},{"name":"delegatorRewardsPerTokenDelta","type":"uint256","indexed":false},{"name":"stakingRewardsPerWeight","type":"uint256","indexed":false},{"name":"stakingRewardsPerWeightDelta","type":"uint256","indexed":false}]},
	{"type":"event","name":"StakingRewardsClaimed","anonymous":false,"inputs":[{"name":"addr","type":"address","indexed":true},{"name":"claimedDelegatorRewards","type":"uint256","indexed":false},{"name":"claimedGuardianRewards","type":"uint256","indexed":false},{"name":"totalClaimedDelegatorRewards","type":"uint256","indexed":false},{"name":"totalClaimedGuardianRewards","type":"uint256","indexed":false}]},
	{"type":"event","name":"StakingRewardsAllocated","anonymous":false,"inputs":[{"name":"allocatedRewards","type":"uint256","indexed":false},{"name":"stakingRewardsPerWeight","type":"uint256","indexed":false}]},
	{"type":"function","name":"getDelegatorStakingRewardsData","stateMutability":"view","inputs":[{"name":"delegator","type":"address"}],"outputs":[{"name":"balance","type":"uint256"},{"name":"claimed","type":"uint256"},{"name":"guardian","type":"address"},{"name":"lastDelegatorRewardsPerToken","type":"uint256"},{"name":"delegatorRewardsPerTokenDelta","type":"uint256"}]},
	{"type":"function","name":"getGuardianStakingRewardsData","stateMutability":"view","inputs":[{"name":"guardian","type":"address"}],"outputs":[{"name":"balance","type":"uint256"},{"name":"claimed","type":"uint256"},{"name":"delegatorRewardsPerToken","type":"uint256"},{"name":"delegatorRewardsPerTokenDelta","type":"uint256"},{"name":"lastStakingRewardsPerWeight","type":"uint256"},{"name":"stakingRewardsPerWeightDelta","type":"uint256"}]},
	{"type":"function","name":"getGuardianDelegatorsStakingRewardsPercentMille","stateMutability":"view","inputs":[{"name":"guardian","type":"address"}],"outputs":[{"name":"delegatorRewardsRatioPercentMille","type":"uint256"}]}
]`

const feesAndBootstrapRewardsAbi = `[
	{"type":"event","name":"FeesAssigned","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAwarded","type":"uint256","indexed":false},{"name":"certification","type":"bool","indexed":false},{"name":"feesPerMember","type":"uint256","indexed":false}]},
	{"type":"event","name":"FeesWithdrawn","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalWithdrawn","type":"uint256","indexed":false}]},
	{"type":"event","name":"BootstrapRewardsAssigned","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalAwarded","type":"uint256","indexed":false},{"name":"certification","type":"bool","indexed":false},{"name":"bootstrapPerMember","type":"uint256","indexed":false}]},
	{"type":"event","name":"BootstrapRewardsWithdrawn","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"totalWithdrawn","type":"uint256","indexed":false}]},
	{"type":"function","name":"getFeesAndBootstrapData","stateMutability":"view","inputs":[{"name":"guardian","type":"address"}],"outputs":[{"name":"feeBalance","type":"uint256"},{"name":"lastFeesPerMember","type":"uint256"},{"name":"bootstrapBalance","type":"uint256"},{"name":"lastBootstrapPerMember","type":"uint256"},{"name":"withdrawnFees","type":"uint256"},{"name":"withdrawnBootstrap","type":"uint256"},{"name":"certified","type":"bool"}]}
]`

const guardiansRegistrationAbi = `[
	{"type":"function","name":"getGuardianData","stateMutability":"view","inputs":[{"name":"guardian","type":"address"}],"outputs":[{"name":"ip","type":"bytes4"},{"name":"orbsAddr","type":"address"},{"name":"name","type":"string"},{"name":"website","type":"string"},{"name":"registrationTime","type":"uint256"},{"name":"lastUpdateTime","type":"uint256"}]},
	{"type":"function","name":"getMetadata","stateMutability":"view","inputs":[{"name":"guardian","type":"address"},{"name":"key","type":"string"}],"outputs":[{"name":"","type":"string"}]}
]`
