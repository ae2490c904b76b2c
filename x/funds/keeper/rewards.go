package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/funds/exported"
	"github.com/galleon-dao/galleon-core/x/funds/types"
)

// ClaimRewards settles the user across both ledgers, zeroes out everything
// pending for the requested assets and hands one transfer instruction per
// asset to the banker. Assets with nothing to claim are skipped.
func (k Keeper) ClaimRewards(ctx sdk.Context, user sdk.AccAddress, assets []exported.RewardAsset) error {
	for _, asset := range assets {
		if err := asset.Validate(); err != nil {
			return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
		}

		claimable := math.ZeroUint()
		for _, t := range exported.DistributionTypes {
			// no checkpoint and nothing ever distributed means there is
			// nothing to settle, so don't create an empty record
			if _, ok := k.GetUserDistribution(ctx, t, user, asset); !ok && k.getGlobalIndex(ctx, t, asset).Index.IsZero() {
				continue
			}

			weight := k.effectiveWeight(ctx, t, user)
			dist := k.settleUser(ctx, t, user, asset, weight)

			if dist.PendingRewards.IsZero() {
				continue
			}

			claimable = claimable.Add(dist.PendingRewards)
			dist.PendingRewards = math.ZeroUint()
			k.setUserDistribution(ctx, t, user, asset, dist)
		}

		if claimable.IsZero() {
			continue
		}

		if err := k.banker.Transfer(ctx, user, asset, claimable); err != nil {
			return err
		}

		k.Logger(ctx).Debug("rewards claimed",
			"user", user.String(),
			"asset", asset.String(),
			"amount", claimable.String(),
		)
		ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeRewardsClaimed,
			sdk.NewAttribute(types.AttributeKeyUser, user.String()),
			sdk.NewAttribute(types.AttributeKeyAsset, asset.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, claimable.String()),
		))
	}

	return nil
}

// UserRewards returns the amounts the user could claim right now for the given
// assets, without mutating any state
func (k Keeper) UserRewards(ctx sdk.Context, user sdk.AccAddress, assets []exported.RewardAsset) []exported.UserReward {
	rewards := make([]exported.UserReward, 0, len(assets))

	for _, asset := range assets {
		amount := math.ZeroUint()
		for _, t := range exported.DistributionTypes {
			amount = amount.Add(k.previewClaimable(ctx, t, user, asset))
		}
		rewards = append(rewards, exported.UserReward{Asset: asset, Amount: amount})
	}

	return rewards
}

// previewClaimable computes settled pending plus unsettled accrual without writing
func (k Keeper) previewClaimable(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress, asset exported.RewardAsset) math.Uint {
	global := k.getGlobalIndex(ctx, t, asset)

	dist, ok := k.GetUserDistribution(ctx, t, user, asset)
	if !ok {
		dist = exported.NewUserDistribution()
	}

	weight := k.effectiveWeight(ctx, t, user)
	accrued := global.Index.Sub(dist.UserIndex).MulInt(math.NewIntFromBigInt(weight.BigInt())).TruncateInt()
	return dist.PendingRewards.Add(uintFromInt(accrued))
}

// GlobalIndexes returns the per-asset global indices of the given ledger, paginated
func (k Keeper) GlobalIndexes(ctx sdk.Context, t exported.DistributionType, page *query.PageRequest) ([]exported.GlobalIndex, *query.PageResponse, error) {
	raw := append(indexPrefix.Append(dtKey(t)).Bytes(), []byte(key.DefaultDelimiter)...)
	store := prefix.NewStore(ctx.KVStore(k.storeKey), raw)

	var indexes []exported.GlobalIndex
	resp, err := query.Paginate(store, page, func(_, value []byte) error {
		var index exported.GlobalIndex
		if err := json.Unmarshal(value, &index); err != nil {
			return err
		}
		indexes = append(indexes, index)
		return nil
	})
	return indexes, resp, err
}
