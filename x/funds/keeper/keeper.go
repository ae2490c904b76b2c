package keeper

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cometbft/cometbft/libs/log"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/funds/exported"
	"github.com/galleon-dao/galleon-core/x/funds/types"
)

var (
	configKey         = key.FromStr("config")
	weightPrefix      = key.FromStr("weight")
	effWeightPrefix   = key.FromStr("effweight")
	totalWeightPrefix = key.FromStr("totalweight")
	indexPrefix       = key.FromStr("index")
	distPrefix        = key.FromStr("dist")
)

// Keeper provides access to all state changes regarding reward distribution
type Keeper struct {
	storeKey    storetypes.StoreKey
	whitelister types.Whitelister
	banker      types.Banker
}

// NewKeeper is the constructor for the funds keeper
func NewKeeper(storeKey storetypes.StoreKey, whitelister types.Whitelister, banker types.Banker) Keeper {
	return Keeper{storeKey: storeKey, whitelister: whitelister, banker: banker}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

func (k Keeper) getStore(ctx sdk.Context) utils.KVStore {
	return utils.NewNormalizedStore(ctx.KVStore(k.storeKey))
}

func dtKey(t exported.DistributionType) key.Key {
	return key.FromStr(t.String())
}

func assetKey(a exported.RewardAsset) key.Key {
	return key.FromStr(string(a.Kind)).Append(key.FromBz([]byte(a.ID)))
}

func weightKey(t exported.DistributionType, user sdk.AccAddress) key.Key {
	return weightPrefix.Append(dtKey(t)).Append(key.FromBz(user))
}

func effWeightKey(user sdk.AccAddress) key.Key {
	return effWeightPrefix.Append(key.FromBz(user))
}

func indexKey(t exported.DistributionType, asset exported.RewardAsset) key.Key {
	return indexPrefix.Append(dtKey(t)).Append(assetKey(asset))
}

// the user address is length prefixed so genesis export can split the key
// again for any address length the sdk accepts
func distKey(t exported.DistributionType, user sdk.AccAddress, asset exported.RewardAsset) key.Key {
	return distPrefix.Append(dtKey(t)).Append(key.FromBz(address.MustLengthPrefix(user))).Append(assetKey(asset))
}

func (k Keeper) getConfig(ctx sdk.Context) types.Config {
	var config types.Config
	if !k.getStore(ctx).Get(configKey, &config) {
		return types.Config{MinimumEligibleWeight: math.ZeroUint()}
	}
	return config
}

func (k Keeper) setConfig(ctx sdk.Context, config types.Config) {
	k.getStore(ctx).Set(configKey, config)
}

// MinimumEligibleWeight returns the weight below which membership users do not
// take part in distributions
func (k Keeper) MinimumEligibleWeight(ctx sdk.Context) math.Uint {
	return k.getConfig(ctx).MinimumEligibleWeight
}

func (k Keeper) validateAuthority(ctx sdk.Context, sender sdk.AccAddress) error {
	if !k.getConfig(ctx).Authority.Equals(sender) {
		return errorsmod.Wrap(types.ErrUnauthorized, sender.String())
	}
	return nil
}

// GetUserWeight returns the user's raw weight in the given distribution type's
// ledger, or zero if none is recorded
func (k Keeper) GetUserWeight(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress) math.Uint {
	var weight exported.UserWeight
	if !k.getStore(ctx).Get(weightKey(t, user), &weight) {
		return math.ZeroUint()
	}
	return weight.Weight
}

func (k Keeper) setUserWeight(ctx sdk.Context, t exported.DistributionType, weight exported.UserWeight) {
	k.getStore(ctx).Set(weightKey(t, weight.User), weight)
}

// effectiveWeight is the weight a user actually accrues rewards with. For the
// membership ledger the minimum eligible weight gates it to zero; the
// participation ledger always uses the raw weight.
func (k Keeper) effectiveWeight(ctx sdk.Context, t exported.DistributionType, user sdk.AccAddress) math.Uint {
	if t != exported.Membership {
		return k.GetUserWeight(ctx, t, user)
	}

	var weight exported.UserWeight
	if !k.getStore(ctx).Get(effWeightKey(user), &weight) {
		return math.ZeroUint()
	}
	return weight.Weight
}

func (k Keeper) setEffectiveWeight(ctx sdk.Context, weight exported.UserWeight) {
	k.getStore(ctx).Set(effWeightKey(weight.User), weight)
}

// TotalWeight returns the sum of all effective weights in the given
// distribution type's ledger
func (k Keeper) TotalWeight(ctx sdk.Context, t exported.DistributionType) math.Uint {
	var total math.Uint
	if !k.getStore(ctx).Get(totalWeightPrefix.Append(dtKey(t)), &total) {
		return math.ZeroUint()
	}
	return total
}

func (k Keeper) setTotalWeight(ctx sdk.Context, t exported.DistributionType, total math.Uint) {
	k.getStore(ctx).Set(totalWeightPrefix.Append(dtKey(t)), total)
}

// UpdateUserWeights records new raw weights for the given users. Each user is
// settled against all existing global indices at their previous effective
// weight before the new weight takes effect, and the total effective weight is
// adjusted incrementally. Only the configured authority may call this.
func (k Keeper) UpdateUserWeights(ctx sdk.Context, sender sdk.AccAddress, t exported.DistributionType, weights []exported.UserWeight) error {
	if err := k.validateAuthority(ctx, sender); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
	}

	minimum := k.MinimumEligibleWeight(ctx)
	total := k.TotalWeight(ctx, t)

	for _, weight := range weights {
		if err := weight.Validate(); err != nil {
			return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
		}

		// settling at the old effective weight realizes all rewards the user
		// accrued up to this point; for first-seen users this just fast
		// forwards their indices to the current globals
		oldEffective := k.effectiveWeight(ctx, t, weight.User)
		k.settleUserAll(ctx, t, weight.User, oldEffective)

		k.setUserWeight(ctx, t, weight)

		newEffective := weight.Weight
		if t == exported.Membership {
			if weight.Weight.LT(minimum) {
				newEffective = math.ZeroUint()
			}
			k.setEffectiveWeight(ctx, exported.NewUserWeight(weight.User, newEffective))
		}

		total = total.Sub(oldEffective).Add(newEffective)
	}

	k.setTotalWeight(ctx, t, total)

	k.Logger(ctx).Debug("user weights updated",
		"distribution_type", t.String(),
		"users", fmt.Sprintf("%d", len(weights)),
		"total_weight", total.String(),
	)
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeWeightsUpdated,
		sdk.NewAttribute(types.AttributeKeyDistributionType, t.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, total.String()),
	))

	return nil
}
