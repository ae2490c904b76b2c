package keeper

import (
	"encoding/binary"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/poll/exported"
	"github.com/galleon-dao/galleon-core/x/poll/types"
)

func rawPrefix(k key.Key) []byte {
	return append(k.Bytes(), []byte(key.DefaultDelimiter)...)
}

// Polls returns all polls in the given state, or all polls if no state filter
// is given, with cursor pagination
func (k Keeper) Polls(ctx sdk.Context, filter *exported.PollState, page *query.PageRequest) ([]exported.Poll, *query.PageResponse, error) {
	var polls []exported.Poll

	if filter == nil {
		store := prefix.NewStore(ctx.KVStore(k.storeKey), rawPrefix(pollPrefix))
		resp, err := query.Paginate(store, page, func(_, value []byte) error {
			var poll exported.Poll
			if err := json.Unmarshal(value, &poll); err != nil {
				return err
			}
			polls = append(polls, poll)
			return nil
		})
		return polls, resp, err
	}

	store := prefix.NewStore(ctx.KVStore(k.storeKey), rawPrefix(statusPrefix.Append(key.FromUInt(uint64(*filter)))))
	resp, err := query.Paginate(store, page, func(_, value []byte) error {
		id := exported.PollID(binary.BigEndian.Uint64(value))
		poll, ok := k.GetPoll(ctx, id)
		if !ok {
			return errorsmod.Wrap(types.ErrPollNotFound, id.String())
		}
		polls = append(polls, poll)
		return nil
	})
	return polls, resp, err
}

// PollStatus returns the status, end time and live results of the given poll
func (k Keeper) PollStatus(ctx sdk.Context, id exported.PollID) (types.PollStatusResponse, error) {
	poll, ok := k.GetPoll(ctx, id)
	if !ok {
		return types.PollStatusResponse{}, errorsmod.Wrap(types.ErrPollNotFound, id.String())
	}

	return types.PollStatusResponse{
		Status:  poll.Status,
		EndsAt:  poll.EndsAt,
		Results: poll.Results,
	}, nil
}

// SimulateEndPollStatus previews the status the poll would end with, without
// mutating any state. An already ended poll returns its terminal status.
func (k Keeper) SimulateEndPollStatus(ctx sdk.Context, id exported.PollID, maxAvailableVotes math.Uint) (exported.PollStatus, error) {
	poll, ok := k.GetPoll(ctx, id)
	if !ok {
		return exported.PollStatus{}, errorsmod.Wrap(types.ErrPollNotFound, id.String())
	}

	if poll.Status.IsEnded() {
		return poll.Status, nil
	}

	return poll.FinalStatus(maxAvailableVotes), nil
}

// PollVoter returns the voter's live vote on the given poll, if any
func (k Keeper) PollVoter(ctx sdk.Context, id exported.PollID, voter sdk.AccAddress) (exported.Vote, bool) {
	return k.GetVote(ctx, id, voter)
}

// PollVoters returns all live votes on the given poll, paginated
func (k Keeper) PollVoters(ctx sdk.Context, id exported.PollID, page *query.PageRequest) ([]exported.Vote, *query.PageResponse, error) {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), rawPrefix(votePrefix.Append(key.FromUInt(uint64(id)))))
	return paginateVotes(store, page)
}

// VoterVotes returns all of the voter's live votes across polls, paginated
func (k Keeper) VoterVotes(ctx sdk.Context, voter sdk.AccAddress, page *query.PageRequest) ([]exported.Vote, *query.PageResponse, error) {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), rawPrefix(voterPrefix.Append(key.FromBz(voter))))
	return paginateVotes(store, page)
}

func paginateVotes(store prefix.Store, page *query.PageRequest) ([]exported.Vote, *query.PageResponse, error) {
	var votes []exported.Vote
	resp, err := query.Paginate(store, page, func(_, value []byte) error {
		var vote exported.Vote
		if err := json.Unmarshal(value, &vote); err != nil {
			return err
		}
		votes = append(votes, vote)
		return nil
	})
	return votes, resp, err
}

// TotalVotes returns the total vote weight cast across the given polls.
// Unknown poll ids contribute nothing.
func (k Keeper) TotalVotes(ctx sdk.Context, ids []exported.PollID) math.Uint {
	total := math.ZeroUint()
	for _, id := range ids {
		if poll, ok := k.GetPoll(ctx, id); ok {
			total = total.Add(poll.TotalVotes())
		}
	}
	return total
}

// VoterTotalVotes returns the total vote weight the given voter has cast
// across the given polls
func (k Keeper) VoterTotalVotes(ctx sdk.Context, voter sdk.AccAddress, ids []exported.PollID) math.Uint {
	total := math.ZeroUint()
	for _, id := range ids {
		if vote, ok := k.GetVote(ctx, id, voter); ok {
			total = total.Add(vote.Amount)
		}
	}
	return total
}
