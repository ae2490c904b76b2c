package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleon-dao/galleon-core/testutils/rand"
	"github.com/galleon-dao/galleon-core/x/poll/exported"
	"github.com/galleon-dao/galleon-core/x/poll/keeper"
	"github.com/galleon-dao/galleon-core/x/poll/types"
)

var (
	blockTime = time.Unix(1000, 0)
	endsAt    = time.Unix(2000, 0)
)

func setup() (sdk.Context, keeper.Keeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ctx := testutil.DefaultContext(storeKey, storetypes.NewTransientStoreKey("t_"+types.StoreKey))
	return ctx.WithBlockTime(blockTime), keeper.NewKeeper(storeKey)
}

func defaultParams() exported.CreatePollParams {
	return exported.CreatePollParams{
		Proposer:      rand.AccAddr(),
		DepositAmount: math.ZeroUint(),
		Label:         "upgrade treasury",
		Description:   "move funds to the new treasury",
		Scheme:        exported.CoinVoting,
		EndsAt:        endsAt,
		Quorum:        math.LegacyMustNewDecFromStr("0.25"),
		Threshold:     math.LegacyMustNewDecFromStr("0.5"),
	}
}

func TestCreatePoll(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, exported.PollID(1), poll.ID)
	assert.True(t, poll.Is(exported.InProgress))
	assert.Empty(t, poll.Results)

	poll, err = k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, exported.PollID(2), poll.ID)

	stored, ok := k.GetPoll(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, blockTime.Unix(), stored.StartedAt.Unix())
}

func TestCreatePollValidation(t *testing.T) {
	ctx, k := setup()

	expired := defaultParams()
	expired.EndsAt = blockTime
	_, err := k.CreatePoll(ctx, expired)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	overThreshold := defaultParams()
	overThreshold.Threshold = math.LegacyMustNewDecFromStr("1.5")
	_, err = k.CreatePoll(ctx, overThreshold)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestCastVote(t *testing.T) {
	ctx, k := setup()
	voter := rand.AccAddr()

	err := k.CastVote(ctx, 1, voter, exported.OutcomeYes, math.NewUint(5))
	assert.ErrorIs(t, err, types.ErrPollNotFound)

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	require.NoError(t, k.CastVote(ctx, poll.ID, voter, exported.OutcomeYes, math.NewUint(5)))

	stored, _ := k.GetPoll(ctx, poll.ID)
	assert.Equal(t, math.NewUint(5), stored.VotesFor(exported.OutcomeYes))

	vote, ok := k.GetVote(ctx, poll.ID, voter)
	assert.True(t, ok)
	assert.Equal(t, exported.OutcomeYes, vote.Outcome)
	assert.Equal(t, math.NewUint(5), vote.Amount)
}

func TestCastVoteReplacesPreviousVote(t *testing.T) {
	ctx, k := setup()
	voter := rand.AccAddr()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	require.NoError(t, k.CastVote(ctx, poll.ID, voter, exported.OutcomeYes, math.NewUint(5)))
	require.NoError(t, k.CastVote(ctx, poll.ID, voter, exported.OutcomeNo, math.NewUint(3)))

	stored, _ := k.GetPoll(ctx, poll.ID)
	assert.Equal(t, math.ZeroUint(), stored.VotesFor(exported.OutcomeYes))
	assert.Equal(t, math.NewUint(3), stored.VotesFor(exported.OutcomeNo))
	assert.Equal(t, math.NewUint(3), stored.TotalVotes())

	vote, _ := k.GetVote(ctx, poll.ID, voter)
	assert.Equal(t, exported.OutcomeNo, vote.Outcome)
}

func TestCastVoteOutsideVotingPeriod(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	err = k.CastVote(ctx.WithBlockTime(endsAt), poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(1))
	assert.ErrorIs(t, err, types.ErrOutsideVotingPeriod)
}

func TestCastVoteOnEndedPoll(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	_, err = k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	require.NoError(t, err)

	err = k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(1))
	assert.ErrorIs(t, err, types.ErrPollAlreadyEnded)
}

func TestEndPollPassed(t *testing.T) {
	ctx, k := setup()

	// voters weighted 1 and 3 both vote yes, 4 votes available in total
	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(1)))
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(3)))

	status, err := k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	require.NoError(t, err)
	assert.True(t, status.Is(exported.Passed))
	assert.Equal(t, exported.OutcomeYes, status.Outcome)

	stored, _ := k.GetPoll(ctx, poll.ID)
	assert.True(t, stored.Is(exported.Passed))
}

func TestEndPollQuorumNotReached(t *testing.T) {
	ctx, k := setup()

	params := defaultParams()
	params.Quorum = math.LegacyMustNewDecFromStr("0.26")
	poll, err := k.CreatePoll(ctx, params)
	require.NoError(t, err)
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(1)))

	// 1/4 = 25% < 26%
	status, err := k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	require.NoError(t, err)
	assert.True(t, status.Is(exported.Rejected))
	assert.Equal(t, exported.QuorumNotReached, status.Reason.Kind)
}

func TestEndPollWithoutVotes(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	err = k.CastVote(ctx.WithBlockTime(endsAt.Add(time.Hour)), poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(1))
	assert.ErrorIs(t, err, types.ErrOutsideVotingPeriod)

	status, err := k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	require.NoError(t, err)
	assert.True(t, status.Is(exported.Rejected))
	assert.Equal(t, exported.QuorumAndThresholdNotReached, status.Reason.Kind)
}

func TestEndPollGuards(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	_, err = k.EndPoll(ctx, poll.ID, math.NewUint(4), true, false)
	assert.ErrorIs(t, err, types.ErrWithinVotingPeriod)

	_, err = k.EndPoll(ctx, 99, math.NewUint(4), true, false)
	assert.ErrorIs(t, err, types.ErrPollNotFound)

	first, err := k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	require.NoError(t, err)

	_, err = k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), true, false)
	assert.ErrorIs(t, err, types.ErrPollAlreadyEnded)

	// terminal status is returned unchanged when already-ended is tolerated
	again, err := k.EndPoll(ctx.WithBlockTime(endsAt), poll.ID, math.NewUint(4), false, false)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestEndPollEarly(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(3)))

	require.NoError(t, k.ValidateCanEndEarly(ctx, poll.ID, math.NewUint(4)))

	status, err := k.EndPoll(ctx, poll.ID, math.NewUint(4), true, true)
	require.NoError(t, err)
	assert.True(t, status.Is(exported.Passed))
}

func TestValidateCanEndEarly(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	err = k.ValidateCanEndEarly(ctx, poll.ID, math.NewUint(100))
	assert.ErrorIs(t, err, types.ErrEndingEarlyQuorumNotReached)

	// quorum reached through abstentions, but no outcome over the threshold
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeAbstain, math.NewUint(50)))
	err = k.ValidateCanEndEarly(ctx, poll.ID, math.NewUint(100))
	assert.ErrorIs(t, err, types.ErrEndingEarlyThresholdNotReached)

	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(10)))
	assert.NoError(t, k.ValidateCanEndEarly(ctx, poll.ID, math.NewUint(100)))

	// once the voting period is over the early-ending conditions no longer apply
	quiet, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	assert.NoError(t, k.ValidateCanEndEarly(ctx.WithBlockTime(endsAt), quiet.ID, math.NewUint(100)))

	assert.ErrorIs(t, k.ValidateCanEndEarly(ctx, 99, math.NewUint(100)), types.ErrPollNotFound)
}

func TestUpdateVotes(t *testing.T) {
	ctx, k := setup()
	voter := rand.AccAddr()

	live, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	ended, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	require.NoError(t, k.CastVote(ctx, live.ID, voter, exported.OutcomeYes, math.NewUint(5)))
	require.NoError(t, k.CastVote(ctx, ended.ID, voter, exported.OutcomeNo, math.NewUint(5)))

	_, err = k.EndPoll(ctx.WithBlockTime(endsAt), ended.ID, math.NewUint(100), true, false)
	require.NoError(t, err)

	require.NoError(t, k.UpdateVotes(ctx, voter, math.NewUint(8)))

	updated, _ := k.GetPoll(ctx, live.ID)
	assert.Equal(t, math.NewUint(8), updated.VotesFor(exported.OutcomeYes))

	untouched, _ := k.GetPoll(ctx, ended.ID)
	assert.Equal(t, math.NewUint(5), untouched.VotesFor(exported.OutcomeNo))

	vote, _ := k.GetVote(ctx, live.ID, voter)
	assert.Equal(t, exported.OutcomeYes, vote.Outcome)
	assert.Equal(t, math.NewUint(8), vote.Amount)
}

func TestPollsQuery(t *testing.T) {
	ctx, k := setup()

	for i := 0; i < 5; i++ {
		_, err := k.CreatePoll(ctx, defaultParams())
		require.NoError(t, err)
	}
	_, err := k.EndPoll(ctx.WithBlockTime(endsAt), 2, math.NewUint(100), true, false)
	require.NoError(t, err)

	all, _, err := k.Polls(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	inProgress := exported.InProgress
	live, _, err := k.Polls(ctx, &inProgress, nil)
	require.NoError(t, err)
	assert.Len(t, live, 4)

	rejected := exported.Rejected
	endedPolls, _, err := k.Polls(ctx, &rejected, nil)
	require.NoError(t, err)
	require.Len(t, endedPolls, 1)
	assert.Equal(t, exported.PollID(2), endedPolls[0].ID)

	page, pageResp, err := k.Polls(ctx, nil, &query.PageRequest{Limit: 2, CountTotal: true})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.EqualValues(t, 5, pageResp.Total)

	next, _, err := k.Polls(ctx, nil, &query.PageRequest{Key: pageResp.NextKey})
	require.NoError(t, err)
	assert.Len(t, next, 3)
}

func TestVoteQueries(t *testing.T) {
	ctx, k := setup()
	voter := rand.AccAddr()

	first, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	second, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)

	require.NoError(t, k.CastVote(ctx, first.ID, voter, exported.OutcomeYes, math.NewUint(5)))
	require.NoError(t, k.CastVote(ctx, second.ID, voter, exported.OutcomeNo, math.NewUint(2)))
	for i := 0; i < 3; i++ {
		require.NoError(t, k.CastVote(ctx, first.ID, rand.AccAddr(), exported.OutcomeNo, math.NewUint(1)))
	}

	vote, ok := k.PollVoter(ctx, first.ID, voter)
	assert.True(t, ok)
	assert.Equal(t, math.NewUint(5), vote.Amount)

	votes, _, err := k.PollVoters(ctx, first.ID, nil)
	require.NoError(t, err)
	assert.Len(t, votes, 4)

	voterVotes, _, err := k.VoterVotes(ctx, voter, nil)
	require.NoError(t, err)
	assert.Len(t, voterVotes, 2)

	assert.Equal(t, math.NewUint(10), k.TotalVotes(ctx, []exported.PollID{first.ID, second.ID}))
	assert.Equal(t, math.NewUint(7), k.VoterTotalVotes(ctx, voter, []exported.PollID{first.ID, second.ID}))

	// unknown polls contribute nothing
	assert.Equal(t, math.NewUint(8), k.TotalVotes(ctx, []exported.PollID{first.ID, 99}))
}

func TestSimulateEndPollStatus(t *testing.T) {
	ctx, k := setup()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	require.NoError(t, k.CastVote(ctx, poll.ID, rand.AccAddr(), exported.OutcomeYes, math.NewUint(3)))

	status, err := k.SimulateEndPollStatus(ctx, poll.ID, math.NewUint(4))
	require.NoError(t, err)
	assert.True(t, status.Is(exported.Passed))

	// the preview leaves the poll untouched
	stored, _ := k.GetPoll(ctx, poll.ID)
	assert.True(t, stored.Is(exported.InProgress))

	_, err = k.SimulateEndPollStatus(ctx, 99, math.NewUint(4))
	assert.ErrorIs(t, err, types.ErrPollNotFound)
}

func TestGenesisRoundTrip(t *testing.T) {
	ctx, k := setup()
	voter := rand.AccAddr()

	poll, err := k.CreatePoll(ctx, defaultParams())
	require.NoError(t, err)
	require.NoError(t, k.CastVote(ctx, poll.ID, voter, exported.OutcomeYes, math.NewUint(5)))

	exportedState := k.ExportGenesis(ctx)
	require.NoError(t, exportedState.Validate())

	ctx2, k2 := setup()
	k2.InitGenesis(ctx2, exportedState)

	restored, ok := k2.GetPoll(ctx2, poll.ID)
	assert.True(t, ok)
	assert.Equal(t, math.NewUint(5), restored.VotesFor(exported.OutcomeYes))

	vote, ok := k2.GetVote(ctx2, poll.ID, voter)
	assert.True(t, ok)
	assert.Equal(t, math.NewUint(5), vote.Amount)

	// the counter continues after the highest restored id
	next, err := k2.CreatePoll(ctx2, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, exported.PollID(2), next.ID)
}
