// Package mock provides hand-rolled mocks for the funds module's expected keepers
package mock

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/x/funds/exported"
)

// Whitelister mocks types.Whitelister
type Whitelister struct {
	IsWhitelistedFunc func(ctx sdk.Context, asset exported.RewardAsset) bool
}

// IsWhitelisted calls IsWhitelistedFunc
func (m *Whitelister) IsWhitelisted(ctx sdk.Context, asset exported.RewardAsset) bool {
	return m.IsWhitelistedFunc(ctx, asset)
}

// TransferCall records the arguments of one Transfer invocation
type TransferCall struct {
	Recipient sdk.AccAddress
	Asset     exported.RewardAsset
	Amount    math.Uint
}

// Banker mocks types.Banker and records all transfer instructions it receives
type Banker struct {
	TransferFunc  func(ctx sdk.Context, recipient sdk.AccAddress, asset exported.RewardAsset, amount math.Uint) error
	TransferCalls []TransferCall
}

// Transfer records the call and delegates to TransferFunc if set
func (m *Banker) Transfer(ctx sdk.Context, recipient sdk.AccAddress, asset exported.RewardAsset, amount math.Uint) error {
	m.TransferCalls = append(m.TransferCalls, TransferCall{Recipient: recipient, Asset: asset, Amount: amount})
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, recipient, asset, amount)
	}
	return nil
}
