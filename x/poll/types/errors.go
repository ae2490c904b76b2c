package types

import (
	errorsmod "cosmossdk.io/errors"
)

// module errors
var (
	ErrInvalidArgument                = errorsmod.Register(ModuleName, 2, "invalid argument")
	ErrPollNotFound                   = errorsmod.Register(ModuleName, 3, "poll not found")
	ErrPollAlreadyEnded               = errorsmod.Register(ModuleName, 4, "poll already ended")
	ErrOutsideVotingPeriod            = errorsmod.Register(ModuleName, 5, "outside voting period")
	ErrWithinVotingPeriod             = errorsmod.Register(ModuleName, 6, "voting period has not ended")
	ErrEndingEarlyQuorumNotReached    = errorsmod.Register(ModuleName, 7, "cannot end poll early, quorum not reached")
	ErrEndingEarlyThresholdNotReached = errorsmod.Register(ModuleName, 8, "cannot end poll early, no outcome over the threshold")
)
