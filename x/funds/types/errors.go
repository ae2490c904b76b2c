package types

import (
	errorsmod "cosmossdk.io/errors"
)

// module errors
var (
	ErrZeroTotalWeight                 = errorsmod.Register(ModuleName, 2, "no user weights in the distribution, total weight is zero")
	ErrDistributingNonWhitelistedAsset = errorsmod.Register(ModuleName, 3, "attempting to distribute an asset that is not whitelisted")
	ErrUnauthorized                    = errorsmod.Register(ModuleName, 4, "unauthorized")
	ErrDuplicateInitialWeight          = errorsmod.Register(ModuleName, 5, "duplicate initial user weight")
	ErrInvalidArgument                 = errorsmod.Register(ModuleName, 6, "invalid argument")
)
