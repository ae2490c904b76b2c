package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/x/funds/exported"
)

// Whitelister provides the externally maintained set of assets that may be distributed
type Whitelister interface {
	IsWhitelisted(ctx sdk.Context, asset exported.RewardAsset) bool
}

// Banker executes the transfer instructions emitted by reward claims
type Banker interface {
	Transfer(ctx sdk.Context, recipient sdk.AccAddress, asset exported.RewardAsset, amount math.Uint) error
}
