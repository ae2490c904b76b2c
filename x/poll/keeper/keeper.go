package keeper

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cometbft/cometbft/libs/log"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/poll/exported"
	"github.com/galleon-dao/galleon-core/x/poll/types"
)

var (
	pollPrefix   = key.FromStr("poll")
	statusPrefix = key.FromStr("status")
	votePrefix   = key.FromStr("vote")
	voterPrefix  = key.FromStr("voter")
	countKey     = key.FromStr("count")
)

// Keeper provides access to all state changes regarding polls
type Keeper struct {
	storeKey storetypes.StoreKey
}

// NewKeeper is the constructor for the poll keeper
func NewKeeper(storeKey storetypes.StoreKey) Keeper {
	return Keeper{storeKey: storeKey}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

func (k Keeper) getStore(ctx sdk.Context) utils.KVStore {
	return utils.NewNormalizedStore(ctx.KVStore(k.storeKey))
}

func pollKey(id exported.PollID) key.Key {
	return pollPrefix.Append(key.FromUInt(uint64(id)))
}

func statusKey(state exported.PollState, id exported.PollID) key.Key {
	return statusPrefix.Append(key.FromUInt(uint64(state))).Append(key.FromUInt(uint64(id)))
}

func voteKey(id exported.PollID, voter sdk.AccAddress) key.Key {
	return votePrefix.Append(key.FromUInt(uint64(id))).Append(key.FromBz(voter))
}

func voterKey(voter sdk.AccAddress, id exported.PollID) key.Key {
	return voterPrefix.Append(key.FromBz(voter)).Append(key.FromUInt(uint64(id)))
}

// CreatePoll validates the given params and persists a new in-progress poll
// with a freshly assigned id
func (k Keeper) CreatePoll(ctx sdk.Context, params exported.CreatePollParams) (exported.Poll, error) {
	if err := params.Validate(); err != nil {
		return exported.Poll{}, errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
	}

	if !params.EndsAt.After(ctx.BlockTime()) {
		return exported.Poll{}, errorsmod.Wrapf(types.ErrInvalidArgument,
			"invalid end time, must be %s > %s (now)", params.EndsAt, ctx.BlockTime())
	}

	id := exported.PollID(utils.NewCounter[uint64](countKey, k.getStore(ctx)).Incr())
	poll := exported.NewPoll(id, params, ctx.BlockTime())
	k.setPoll(ctx, exported.NonExistent, poll)

	k.Logger(ctx).Debug("poll created",
		"poll", poll.ID.String(),
		"proposer", poll.Proposer.String(),
		"ends_at", poll.EndsAt.String(),
	)
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypePollCreated,
		sdk.NewAttribute(types.AttributeKeyPollID, poll.ID.String()),
	))

	return poll, nil
}

// GetPoll returns the poll with the given id, if it exists
func (k Keeper) GetPoll(ctx sdk.Context, id exported.PollID) (exported.Poll, bool) {
	var poll exported.Poll
	ok := k.getStore(ctx).Get(pollKey(id), &poll)
	return poll, ok
}

// setPoll persists the poll and keeps the by-status index in sync with the
// previous state
func (k Keeper) setPoll(ctx sdk.Context, prevState exported.PollState, poll exported.Poll) {
	store := k.getStore(ctx)
	store.Set(pollKey(poll.ID), poll)

	if prevState == poll.Status.State {
		return
	}

	if prevState != exported.NonExistent {
		store.Delete(statusKey(prevState, poll.ID))
	}
	store.SetRaw(statusKey(poll.Status.State, poll.ID), key.FromUInt(uint64(poll.ID)).Bytes())
}

// CastVote commits the voter's weight to the given outcome. An earlier vote by
// the same voter is replaced, with its weight first subtracted from the
// results so they always equal the sum of live votes.
func (k Keeper) CastVote(ctx sdk.Context, id exported.PollID, voter sdk.AccAddress, outcome exported.Outcome, amount math.Uint) error {
	poll, ok := k.GetPoll(ctx, id)
	if !ok {
		return errorsmod.Wrap(types.ErrPollNotFound, id.String())
	}

	if !poll.Is(exported.InProgress) {
		return errorsmod.Wrapf(types.ErrPollAlreadyEnded, "poll %s is %s", id, poll.Status.State)
	}

	now := ctx.BlockTime()
	if now.Before(poll.StartedAt) || !now.Before(poll.EndsAt) {
		return errorsmod.Wrapf(types.ErrOutsideVotingPeriod,
			"%s not within [%s, %s)", now, poll.StartedAt, poll.EndsAt)
	}

	if prev, voted := k.GetVote(ctx, id, voter); voted {
		poll.DecreaseResults(prev.Outcome, prev.Amount)
	}
	poll.IncreaseResults(outcome, amount)

	k.setVote(ctx, exported.NewVote(id, voter, outcome, amount))
	k.setPoll(ctx, poll.Status.State, poll)

	k.Logger(ctx).Debug("vote cast",
		"poll", id.String(),
		"voter", voter.String(),
		"outcome", fmt.Sprintf("%d", outcome),
		"amount", amount.String(),
	)
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeVoted,
		sdk.NewAttribute(types.AttributeKeyPollID, id.String()),
		sdk.NewAttribute(types.AttributeKeyVoter, voter.String()),
		sdk.NewAttribute(types.AttributeKeyOutcome, fmt.Sprintf("%d", outcome)),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	))

	return nil
}

// GetVote returns the voter's live vote on the given poll, if any
func (k Keeper) GetVote(ctx sdk.Context, id exported.PollID, voter sdk.AccAddress) (exported.Vote, bool) {
	var vote exported.Vote
	ok := k.getStore(ctx).Get(voteKey(id, voter), &vote)
	return vote, ok
}

// the vote is stored under both the poll and the voter so either side can be
// listed with a prefix scan
func (k Keeper) setVote(ctx sdk.Context, vote exported.Vote) {
	store := k.getStore(ctx)
	store.Set(voteKey(vote.PollID, vote.Voter), vote)
	store.Set(voterKey(vote.Voter, vote.PollID), vote)
}

// UpdateVotes re-casts all of the voter's votes on live polls with the given
// amount, keeping their committed weight in sync after an external weight
// change. Ended or expired polls are left untouched.
func (k Keeper) UpdateVotes(ctx sdk.Context, voter sdk.AccAddress, newAmount math.Uint) error {
	votes := k.getVoterVotes(ctx, voter)

	for _, vote := range votes {
		poll, ok := k.GetPoll(ctx, vote.PollID)
		if !ok || !poll.Is(exported.InProgress) || !ctx.BlockTime().Before(poll.EndsAt) {
			continue
		}

		if err := k.CastVote(ctx, vote.PollID, voter, vote.Outcome, newAmount); err != nil {
			return err
		}
	}

	return nil
}

func (k Keeper) getVoterVotes(ctx sdk.Context, voter sdk.AccAddress) []exported.Vote {
	var votes []exported.Vote

	iter := k.getStore(ctx).Iterator(voterPrefix.Append(key.FromBz(voter)))
	defer utils.CloseLogError(iter, k.Logger(ctx))

	for ; iter.Valid(); iter.Next() {
		var vote exported.Vote
		iter.UnmarshalValue(&vote)
		votes = append(votes, vote)
	}

	return votes
}

// EndPoll resolves the poll against the given maximum available vote weight
// and persists the terminal status. An already ended poll is returned as-is,
// or fails if errorIfAlreadyEnded is set. Ending before the voting period is
// over requires allowEarlyEnding; see ValidateCanEndEarly for the guard
// callers are expected to apply in that case.
func (k Keeper) EndPoll(ctx sdk.Context, id exported.PollID, maxAvailableVotes math.Uint, errorIfAlreadyEnded, allowEarlyEnding bool) (exported.PollStatus, error) {
	poll, ok := k.GetPoll(ctx, id)
	if !ok {
		return exported.PollStatus{}, errorsmod.Wrap(types.ErrPollNotFound, id.String())
	}

	if poll.Status.IsEnded() {
		if errorIfAlreadyEnded {
			return exported.PollStatus{}, errorsmod.Wrapf(types.ErrPollAlreadyEnded, "poll %s is %s", id, poll.Status.State)
		}
		return poll.Status, nil
	}

	now := ctx.BlockTime()
	if !allowEarlyEnding && now.Before(poll.EndsAt) {
		return exported.PollStatus{}, errorsmod.Wrapf(types.ErrWithinVotingPeriod,
			"must be %s >= %s (ends at)", now, poll.EndsAt)
	}

	prevState := poll.Status.State
	poll.Status = poll.FinalStatus(maxAvailableVotes)
	k.setPoll(ctx, prevState, poll)

	k.Logger(ctx).Info("poll ended",
		"poll", id.String(),
		"state", poll.Status.State.String(),
	)

	event := sdk.NewEvent(types.EventTypePollEnded,
		sdk.NewAttribute(types.AttributeKeyPollID, id.String()),
		sdk.NewAttribute(types.AttributeKeyState, poll.Status.State.String()),
	)
	if poll.Status.Reason != nil {
		event = event.AppendAttributes(sdk.NewAttribute(types.AttributeKeyReason, string(poll.Status.Reason.Kind)))
	}
	ctx.EventManager().EmitEvent(event)

	return poll.Status, nil
}

// ValidateCanEndEarly checks that the poll's result is already beyond doubt:
// before the voting period is over, a poll may only be ended if quorum is
// reached and some outcome clears its threshold
func (k Keeper) ValidateCanEndEarly(ctx sdk.Context, id exported.PollID, maxAvailableVotes math.Uint) error {
	poll, ok := k.GetPoll(ctx, id)
	if !ok {
		return errorsmod.Wrap(types.ErrPollNotFound, id.String())
	}

	// voting period over, no early ending conditions apply
	if !ctx.BlockTime().Before(poll.EndsAt) {
		return nil
	}

	if !poll.QuorumReached(maxAvailableVotes) {
		return types.ErrEndingEarlyQuorumNotReached
	}

	if !poll.ThresholdReachedByAny() {
		return types.ErrEndingEarlyThresholdNotReached
	}

	return nil
}
