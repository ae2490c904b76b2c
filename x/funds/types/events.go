package types

// event types and attribute keys
const (
	EventTypeRewardsDistributed   = "rewardsDistributed"
	EventTypeRewardsClaimed       = "rewardsClaimed"
	EventTypeWeightsUpdated       = "weightsUpdated"
	EventTypeMinimumWeightUpdated = "minimumWeightUpdated"

	AttributeKeyDistributionType = "distributionType"
	AttributeKeyAsset            = "asset"
	AttributeKeyAmount           = "amount"
	AttributeKeyUser             = "user"
	AttributeKeyMinimumWeight    = "minimumWeight"
)
