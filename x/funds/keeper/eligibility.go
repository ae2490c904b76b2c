package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/x/funds/exported"
	"github.com/galleon-dao/galleon-core/x/funds/types"
)

// UpdateMinimumEligibleWeight changes the weight below which membership users
// stop accruing rewards. Only users whose raw weight lies between the old and
// new minimum can flip eligibility; everyone else keeps their effective
// weight, so only that band is re-evaluated. Only the configured authority may
// call this.
func (k Keeper) UpdateMinimumEligibleWeight(ctx sdk.Context, sender sdk.AccAddress, newMinimum math.Uint) error {
	if err := k.validateAuthority(ctx, sender); err != nil {
		return err
	}

	config := k.getConfig(ctx)
	oldMinimum := config.MinimumEligibleWeight
	if oldMinimum.Equal(newMinimum) {
		return nil
	}

	total := k.TotalWeight(ctx, exported.Membership)

	for _, weight := range k.getUserWeights(ctx, exported.Membership) {
		var newEffective math.Uint
		switch {
		// raised minimum: users in [old, new) lose eligibility
		case newMinimum.GT(oldMinimum) && weight.Weight.GTE(oldMinimum) && weight.Weight.LT(newMinimum):
			newEffective = math.ZeroUint()
		// lowered minimum: users in [new, old) gain eligibility
		case newMinimum.LT(oldMinimum) && weight.Weight.GTE(newMinimum) && weight.Weight.LT(oldMinimum):
			newEffective = weight.Weight
		default:
			continue
		}

		oldEffective := k.effectiveWeight(ctx, exported.Membership, weight.User)
		k.settleUserAll(ctx, exported.Membership, weight.User, oldEffective)

		k.setEffectiveWeight(ctx, exported.NewUserWeight(weight.User, newEffective))
		total = total.Sub(oldEffective).Add(newEffective)
	}

	k.setTotalWeight(ctx, exported.Membership, total)

	config.MinimumEligibleWeight = newMinimum
	k.setConfig(ctx, config)

	k.Logger(ctx).Info("minimum eligible weight updated",
		"old", oldMinimum.String(),
		"new", newMinimum.String(),
		"total_weight", total.String(),
	)
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeMinimumWeightUpdated,
		sdk.NewAttribute(types.AttributeKeyMinimumWeight, newMinimum.String()),
	))

	return nil
}

func (k Keeper) getUserWeights(ctx sdk.Context, t exported.DistributionType) []exported.UserWeight {
	var weights []exported.UserWeight

	iter := k.getStore(ctx).Iterator(weightPrefix.Append(dtKey(t)))
	defer utils.CloseLogError(iter, k.Logger(ctx))

	for ; iter.Valid(); iter.Next() {
		var weight exported.UserWeight
		iter.UnmarshalValue(&weight)
		weights = append(weights, weight)
	}

	return weights
}
