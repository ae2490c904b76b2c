package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/x/funds/exported"
	"github.com/galleon-dao/galleon-core/x/funds/types"
)

func decFromUint(u math.Uint) math.LegacyDec {
	return math.LegacyNewDecFromBigInt(u.BigInt())
}

func uintFromInt(i math.Int) math.Uint {
	return math.NewUintFromBigInt(i.BigInt())
}

// Distribute adds the given amount of the asset to the distribution type's
// ledger by advancing the asset's global index by amount per unit of total
// effective weight. The division truncates, so rounding losses stay with the
// pool and the ledger can never promise more than was distributed.
func (k Keeper) Distribute(ctx sdk.Context, t exported.DistributionType, asset exported.RewardAsset, amount math.Uint) error {
	if err := t.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
	}
	if err := asset.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
	}

	if !k.whitelister.IsWhitelisted(ctx, asset) {
		return errorsmod.Wrap(types.ErrDistributingNonWhitelistedAsset, asset.String())
	}

	total := k.TotalWeight(ctx, t)
	if total.IsZero() {
		return types.ErrZeroTotalWeight
	}

	index := k.getGlobalIndex(ctx, t, asset)
	index.Index = index.Index.Add(decFromUint(amount).QuoTruncate(decFromUint(total)))
	k.setGlobalIndex(ctx, t, index)

	k.Logger(ctx).Debug("rewards distributed",
		"distribution_type", t.String(),
		"asset", asset.String(),
		"amount", amount.String(),
		"global_index", index.Index.String(),
	)
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeRewardsDistributed,
		sdk.NewAttribute(types.AttributeKeyDistributionType, t.String()),
		sdk.NewAttribute(types.AttributeKeyAsset, asset.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	))

	return nil
}

func (k Keeper) getGlobalIndex(ctx sdk.Context, t exported.DistributionType, asset exported.RewardAsset) exported.GlobalIndex {
	var index exported.GlobalIndex
	if !k.getStore(ctx).Get(indexKey(t, asset), &index) {
		return exported.GlobalIndex{Asset: asset, Index: math.LegacyZeroDec()}
	}
	return index
}

func (k Keeper) setGlobalIndex(ctx sdk.Context, t exported.DistributionType, index exported.GlobalIndex) {
	k.getStore(ctx).Set(indexKey(t, index.Asset), index)
}

func (k Keeper) getGlobalIndexes(ctx sdk.Context, t exported.DistributionType) []exported.GlobalIndex {
	var indexes []exported.GlobalIndex

	iter := k.getStore(ctx).Iterator(indexPrefix.Append(dtKey(t)))
	defer utils.CloseLogError(iter, k.Logger(ctx))

	for ; iter.Valid(); iter.Next() {
		var index exported.GlobalIndex
		iter.UnmarshalValue(&index)
		indexes = append(indexes, index)
	}

	return indexes
}

// GetUserDistribution returns the user's reward checkpoint for the asset, if one exists
func (k Keeper) GetUserDistribution(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress, asset exported.RewardAsset) (exported.UserDistribution, bool) {
	var dist exported.UserDistribution
	ok := k.getStore(ctx).Get(distKey(t, user, asset), &dist)
	return dist, ok
}

func (k Keeper) setUserDistribution(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress, asset exported.RewardAsset, dist exported.UserDistribution) {
	k.getStore(ctx).Set(distKey(t, user, asset), dist)
}

// settleUser realizes the rewards the user accrued for the asset since their
// last settlement, at the given weight, and fast forwards their index to the
// current global index. Idempotent when no distribution happened in between.
func (k Keeper) settleUser(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress, asset exported.RewardAsset, weight math.Uint) exported.UserDistribution {
	global := k.getGlobalIndex(ctx, t, asset)

	dist, ok := k.GetUserDistribution(ctx, t, user, asset)
	if !ok {
		dist = exported.NewUserDistribution()
	}

	accrued := global.Index.Sub(dist.UserIndex).MulInt(math.NewIntFromBigInt(weight.BigInt())).TruncateInt()
	dist.PendingRewards = dist.PendingRewards.Add(uintFromInt(accrued))
	dist.UserIndex = global.Index
	k.setUserDistribution(ctx, t, user, asset, dist)

	return dist
}

// settleUserAll settles the user against every asset with a global index in
// the given ledger, at the given weight. Must run before any change to that
// weight takes effect.
func (k Keeper) settleUserAll(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress, weight math.Uint) {
	for _, index := range k.getGlobalIndexes(ctx, t) {
		k.settleUser(ctx, t, user, index.Asset, weight)
	}
}
