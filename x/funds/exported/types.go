package exported

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DistributionType selects one of the two independent reward ledgers. Every
// weight, total, global index and user distribution lives in the namespace of
// exactly one distribution type.
type DistributionType int32

const (
	// Membership distributes by long-term membership weight, gated by the
	// minimum eligible weight
	Membership DistributionType = iota
	// Participation distributes by governance participation weight
	Participation
)

// DistributionTypes are all valid distribution types
var DistributionTypes = []DistributionType{Membership, Participation}

func (t DistributionType) String() string {
	switch t {
	case Membership:
		return "membership"
	case Participation:
		return "participation"
	default:
		return "unknown"
	}
}

// Validate returns an error if the distribution type is not one of the known variants
func (t DistributionType) Validate() error {
	switch t {
	case Membership, Participation:
		return nil
	default:
		return fmt.Errorf("invalid distribution type %d", t)
	}
}

// AssetKind discriminates the supported reward asset variants
type AssetKind string

const (
	// Native is a bank denomination
	Native AssetKind = "native"
	// CW20 is a token contract address
	CW20 AssetKind = "cw20"
)

// RewardAsset identifies a distributable asset, either a native denomination
// or a token contract
type RewardAsset struct {
	Kind AssetKind `json:"kind"`
	ID   string    `json:"id"`
}

// NewNativeAsset returns the reward asset for a native denomination
func NewNativeAsset(denom string) RewardAsset {
	return RewardAsset{Kind: Native, ID: denom}
}

// NewCW20Asset returns the reward asset for a token contract
func NewCW20Asset(contract string) RewardAsset {
	return RewardAsset{Kind: CW20, ID: contract}
}

func (a RewardAsset) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}

// Validate returns an error if the asset is malformed
func (a RewardAsset) Validate() error {
	if a.Kind != Native && a.Kind != CW20 {
		return fmt.Errorf("invalid asset kind %s", a.Kind)
	}
	if a.ID == "" {
		return fmt.Errorf("asset id not set")
	}
	return nil
}

// UserWeight is a user's raw distribution weight
type UserWeight struct {
	User   sdk.AccAddress `json:"user"`
	Weight math.Uint      `json:"weight"`
}

// NewUserWeight is the constructor for UserWeight
func NewUserWeight(user sdk.AccAddress, weight math.Uint) UserWeight {
	return UserWeight{User: user, Weight: weight}
}

// Validate returns an error if the user weight is malformed
func (w UserWeight) Validate() error {
	if err := sdk.VerifyAddressFormat(w.User); err != nil {
		return fmt.Errorf("invalid user: %s", err.Error())
	}
	if w.Weight.IsNil() {
		return fmt.Errorf("weight not set")
	}
	return nil
}

// UserDistribution is a user's reward checkpoint for one asset: the global
// index the user was last settled against and the rewards realized but not
// yet claimed
type UserDistribution struct {
	UserIndex      math.LegacyDec `json:"user_index"`
	PendingRewards math.Uint      `json:"pending_rewards"`
}

// NewUserDistribution returns an empty checkpoint at index zero
func NewUserDistribution() UserDistribution {
	return UserDistribution{UserIndex: math.LegacyZeroDec(), PendingRewards: math.ZeroUint()}
}

// GlobalIndex is the cumulative rewards-per-unit-weight accumulator for one asset
type GlobalIndex struct {
	Asset RewardAsset    `json:"asset"`
	Index math.LegacyDec `json:"index"`
}

// UserReward is the claimable amount of one asset for a user
type UserReward struct {
	Asset  RewardAsset `json:"asset"`
	Amount math.Uint   `json:"amount"`
}
