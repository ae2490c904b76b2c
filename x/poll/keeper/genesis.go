package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/galleon-dao/galleon-core/utils"
	"github.com/galleon-dao/galleon-core/utils/key"
	"github.com/galleon-dao/galleon-core/x/poll/exported"
	"github.com/galleon-dao/galleon-core/x/poll/types"
)

// InitGenesis initializes the poll module's state from the given genesis state
func (k Keeper) InitGenesis(ctx sdk.Context, state types.GenesisState) {
	if err := state.Validate(); err != nil {
		panic(err)
	}

	var maxID exported.PollID
	for _, poll := range state.Polls {
		k.setPoll(ctx, exported.NonExistent, poll)
		if poll.ID > maxID {
			maxID = poll.ID
		}
	}

	if maxID > 0 {
		// the counter continues from the highest restored id
		k.getStore(ctx).SetRaw(countKey, key.FromUInt(uint64(maxID)).Bytes())
	}

	for _, vote := range state.Votes {
		k.setVote(ctx, vote)
	}
}

// ExportGenesis returns the poll module's current state
func (k Keeper) ExportGenesis(ctx sdk.Context) types.GenesisState {
	store := k.getStore(ctx)

	var polls []exported.Poll
	pollIter := store.Iterator(pollPrefix)
	defer utils.CloseLogError(pollIter, k.Logger(ctx))
	for ; pollIter.Valid(); pollIter.Next() {
		var poll exported.Poll
		pollIter.UnmarshalValue(&poll)
		polls = append(polls, poll)
	}

	var votes []exported.Vote
	voteIter := store.Iterator(votePrefix)
	defer utils.CloseLogError(voteIter, k.Logger(ctx))
	for ; voteIter.Valid(); voteIter.Next() {
		var vote exported.Vote
		voteIter.UnmarshalValue(&vote)
		votes = append(votes, vote)
	}

	return types.NewGenesisState(polls, votes)
}
