package keeper

import (
	"bytes"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/funds/exported"
	"github.com/galleon-dao/galleon-core/x/funds/types"
)

// InitGenesis initializes the funds module's state from the given genesis state
func (k Keeper) InitGenesis(ctx sdk.Context, state types.GenesisState) {
	if err := state.Validate(); err != nil {
		panic(err)
	}

	k.setConfig(ctx, state.Config)

	minimum := state.Config.MinimumEligibleWeight
	ledgers := map[exported.DistributionType][]exported.UserWeight{
		exported.Membership:    state.MembershipWeights,
		exported.Participation: state.ParticipationWeights,
	}

	for _, t := range exported.DistributionTypes {
		total := math.ZeroUint()
		for _, weight := range ledgers[t] {
			k.setUserWeight(ctx, t, weight)

			effective := weight.Weight
			if t == exported.Membership {
				if weight.Weight.LT(minimum) {
					effective = math.ZeroUint()
				}
				k.setEffectiveWeight(ctx, exported.NewUserWeight(weight.User, effective))
			}
			total = total.Add(effective)
		}
		k.setTotalWeight(ctx, t, total)
	}

	for _, index := range state.GlobalIndexes {
		k.setGlobalIndex(ctx, index.DistributionType, index.Index)
	}

	for _, dist := range state.Distributions {
		k.setUserDistribution(ctx, dist.DistributionType, dist.User, dist.Asset, dist.Distribution)
	}
}

// ExportGenesis returns the funds module's current state
func (k Keeper) ExportGenesis(ctx sdk.Context) types.GenesisState {
	state := types.GenesisState{
		Config:               k.getConfig(ctx),
		MembershipWeights:    k.getUserWeights(ctx, exported.Membership),
		ParticipationWeights: k.getUserWeights(ctx, exported.Participation),
	}

	for _, t := range exported.DistributionTypes {
		for _, index := range k.getGlobalIndexes(ctx, t) {
			state.GlobalIndexes = append(state.GlobalIndexes, types.GenesisIndex{DistributionType: t, Index: index})
		}
		state.Distributions = append(state.Distributions, k.exportDistributions(ctx, t)...)
	}

	return state
}

func (k Keeper) exportDistributions(ctx sdk.Context, t exported.DistributionType) []types.GenesisDistribution {
	prefix := distPrefix.Append(dtKey(t))
	prefixLen := len(prefix.Bytes()) + len(key.DefaultDelimiter)

	var dists []types.GenesisDistribution

	iter := k.getStore(ctx).Iterator(prefix)
	defer utils.CloseLogError(iter, k.Logger(ctx))

	for ; iter.Valid(); iter.Next() {
		user, asset, err := parseDistKey(iter.GetKey()[prefixLen:])
		if err != nil {
			panic(err)
		}

		var dist exported.UserDistribution
		iter.UnmarshalValue(&dist)
		dists = append(dists, types.GenesisDistribution{
			DistributionType: t,
			User:             user,
			Asset:            asset,
			Distribution:     dist,
		})
	}

	return dists
}

// parseDistKey splits a distribution key suffix of the form
// <len><user>_<kind>_<id> back into its components. The user address carries
// its own length prefix and the asset id is the final particle, so the split
// is unambiguous for any address length and even if the id contains the
// delimiter.
func parseDistKey(bz []byte) (sdk.AccAddress, exported.RewardAsset, error) {
	if len(bz) == 0 {
		return nil, exported.RewardAsset{}, fmt.Errorf("distribution key too short")
	}

	addrLen := int(bz[0])
	if len(bz) < 1+addrLen+2 {
		return nil, exported.RewardAsset{}, fmt.Errorf("distribution key too short")
	}

	user := sdk.AccAddress(bz[1 : 1+addrLen])
	rest := bz[1+addrLen+1:]

	i := bytes.IndexByte(rest, '_')
	if i < 0 {
		return nil, exported.RewardAsset{}, fmt.Errorf("malformed distribution key")
	}

	asset := exported.RewardAsset{Kind: exported.AssetKind(rest[:i]), ID: string(rest[i+1:])}
	if err := asset.Validate(); err != nil {
		return nil, exported.RewardAsset{}, err
	}

	return user, asset, nil
}
