package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/x/funds/exported"
)

// Config is the per-instance configuration of the distribution engine
type Config struct {
	Authority             sdk.AccAddress `json:"authority"`
	MinimumEligibleWeight math.Uint      `json:"minimum_eligible_weight"`
}

// Validate checks the config for validity
func (c Config) Validate() error {
	if err := sdk.VerifyAddressFormat(c.Authority); err != nil {
		return fmt.Errorf("invalid authority: %s", err.Error())
	}
	if c.MinimumEligibleWeight.IsNil() {
		return fmt.Errorf("minimum eligible weight not set")
	}
	return nil
}

// GenesisIndex is a persisted global index entry
type GenesisIndex struct {
	DistributionType exported.DistributionType `json:"distribution_type"`
	Index            exported.GlobalIndex      `json:"index"`
}

// GenesisDistribution is a persisted user reward checkpoint
type GenesisDistribution struct {
	DistributionType exported.DistributionType `json:"distribution_type"`
	User             sdk.AccAddress            `json:"user"`
	Asset            exported.RewardAsset      `json:"asset"`
	Distribution     exported.UserDistribution `json:"distribution"`
}

// GenesisState is the funds module's exportable state
type GenesisState struct {
	Config               Config                `json:"config"`
	MembershipWeights    []exported.UserWeight `json:"membership_weights"`
	ParticipationWeights []exported.UserWeight `json:"participation_weights"`
	GlobalIndexes        []GenesisIndex        `json:"global_indexes"`
	Distributions        []GenesisDistribution `json:"distributions"`
}

// NewGenesisState returns a genesis state with the given config and initial
// membership weights
func NewGenesisState(config Config, membershipWeights []exported.UserWeight) GenesisState {
	return GenesisState{Config: config, MembershipWeights: membershipWeights}
}

// DefaultGenesisState returns a genesis state that still needs an authority
// set before it is valid
func DefaultGenesisState() GenesisState {
	return GenesisState{Config: Config{MinimumEligibleWeight: math.ZeroUint()}}
}

// Validate checks the genesis state for internal consistency
func (m GenesisState) Validate() error {
	if err := m.Config.Validate(); err != nil {
		return err
	}

	for _, weights := range [][]exported.UserWeight{m.MembershipWeights, m.ParticipationWeights} {
		seen := make(map[string]bool, len(weights))
		for _, weight := range weights {
			if err := weight.Validate(); err != nil {
				return err
			}
			if seen[weight.User.String()] {
				return errorsmod.Wrap(ErrDuplicateInitialWeight, weight.User.String())
			}
			seen[weight.User.String()] = true
		}
	}

	for _, index := range m.GlobalIndexes {
		if err := index.DistributionType.Validate(); err != nil {
			return err
		}
		if err := index.Index.Asset.Validate(); err != nil {
			return err
		}
		if index.Index.Index.IsNil() || index.Index.Index.IsNegative() {
			return fmt.Errorf("invalid global index for %s", index.Index.Asset)
		}
	}

	for _, dist := range m.Distributions {
		if err := dist.DistributionType.Validate(); err != nil {
			return err
		}
		if err := dist.Asset.Validate(); err != nil {
			return err
		}
		if err := sdk.VerifyAddressFormat(dist.User); err != nil {
			return fmt.Errorf("invalid user: %s", err.Error())
		}
		if dist.Distribution.UserIndex.IsNil() || dist.Distribution.PendingRewards.IsNil() {
			return fmt.Errorf("invalid distribution for %s", dist.User)
		}
	}

	return nil
}
