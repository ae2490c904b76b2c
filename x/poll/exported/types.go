package exported

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// PollID is the unique identifier of a poll, assigned from a monotonic counter starting at 1
type PollID uint64

// String returns the string representation of the poll ID
func (id PollID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Outcome is the ballot choice a voter commits their weight to. The four
// canonical outcomes below carry special meaning during resolution; polls may
// additionally accept arbitrary higher outcome codes for multichoice voting.
type Outcome uint8

const (
	OutcomeYes Outcome = iota
	OutcomeNo
	OutcomeAbstain
	OutcomeVeto
)

// VotingScheme determines how voting weight is derived for a poll
type VotingScheme int32

// CoinVoting weighs each vote by the voter's token amount
const CoinVoting VotingScheme = 0

// PollState is the state of the poll state machine. Passed and Rejected are terminal.
type PollState int32

const (
	NonExistent PollState = iota
	InProgress
	Passed
	Rejected
)

func (s PollState) String() string {
	switch s {
	case NonExistent:
		return "non_existent"
	case InProgress:
		return "in_progress"
	case Passed:
		return "passed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectionReasonKind enumerates the reasons a poll can end up Rejected
type RejectionReasonKind string

const (
	QuorumNotReached             RejectionReasonKind = "quorum_not_reached"
	ThresholdNotReached          RejectionReasonKind = "threshold_not_reached"
	QuorumAndThresholdNotReached RejectionReasonKind = "quorum_and_threshold_not_reached"
	IsRejectingOutcome           RejectionReasonKind = "is_rejecting_outcome"
	IsVetoOutcome                RejectionReasonKind = "is_veto_outcome"
	OutcomeDraw                  RejectionReasonKind = "outcome_draw"
)

// RejectionReason describes why a poll was rejected. The outcome and weight
// fields are only set for draws.
type RejectionReason struct {
	Kind       RejectionReasonKind `json:"kind"`
	OutcomeA   Outcome             `json:"outcome_a,omitempty"`
	OutcomeB   Outcome             `json:"outcome_b,omitempty"`
	TiedWeight *math.Uint          `json:"tied_weight,omitempty"`
}

// NewRejectionReason returns a rejection reason without draw details
func NewRejectionReason(kind RejectionReasonKind) RejectionReason {
	return RejectionReason{Kind: kind}
}

// NewDrawReason returns a rejection reason for two outcomes tied for first place
func NewDrawReason(outcomeA, outcomeB Outcome, tiedWeight math.Uint) RejectionReason {
	return RejectionReason{
		Kind:       OutcomeDraw,
		OutcomeA:   outcomeA,
		OutcomeB:   outcomeB,
		TiedWeight: &tiedWeight,
	}
}

// PollStatus is the current status of a poll. Outcome and Count are only set
// when the poll passed, Reason only when it was rejected.
type PollStatus struct {
	State   PollState        `json:"state"`
	EndsAt  time.Time        `json:"ends_at"`
	Outcome Outcome          `json:"outcome,omitempty"`
	Count   *math.Uint       `json:"count,omitempty"`
	Reason  *RejectionReason `json:"reason,omitempty"`
}

// NewInProgressStatus returns the status of a live poll accepting votes until the given time
func NewInProgressStatus(endsAt time.Time) PollStatus {
	return PollStatus{State: InProgress, EndsAt: endsAt}
}

// NewPassedStatus returns the status of a poll won by the given outcome with the given weight
func NewPassedStatus(outcome Outcome, count math.Uint) PollStatus {
	return PollStatus{State: Passed, Outcome: outcome, Count: &count}
}

// NewRejectedStatus returns the status of a poll rejected for the given reason
func NewRejectedStatus(reason RejectionReason) PollStatus {
	return PollStatus{State: Rejected, Reason: &reason}
}

// Is returns true if the status is in the given state
func (s PollStatus) Is(state PollState) bool {
	return s.State == state
}

// IsEnded returns true if the status is terminal
func (s PollStatus) IsEnded() bool {
	return s.State == Passed || s.State == Rejected
}

// Vote is a voter's live ballot on a poll. A voter holds at most one live vote
// per poll; re-casting replaces it.
type Vote struct {
	PollID  PollID         `json:"poll_id"`
	Voter   sdk.AccAddress `json:"voter"`
	Outcome Outcome        `json:"outcome"`
	Amount  math.Uint      `json:"amount"`
}

// NewVote is the constructor for Vote
func NewVote(pollID PollID, voter sdk.AccAddress, outcome Outcome, amount math.Uint) Vote {
	return Vote{PollID: pollID, Voter: voter, Outcome: outcome, Amount: amount}
}

// CreatePollParams are the caller-supplied parameters of a new poll
type CreatePollParams struct {
	Proposer      sdk.AccAddress  `json:"proposer"`
	DepositAmount math.Uint       `json:"deposit_amount"`
	Label         string          `json:"label"`
	Description   string          `json:"description"`
	Scheme        VotingScheme    `json:"scheme"`
	EndsAt        time.Time       `json:"ends_at"`
	Quorum        math.LegacyDec  `json:"quorum"`
	Threshold     math.LegacyDec  `json:"threshold"`
	VetoThreshold *math.LegacyDec `json:"veto_threshold,omitempty"`
}

// Validate checks the static validity of the poll parameters
func (p CreatePollParams) Validate() error {
	if err := sdk.VerifyAddressFormat(p.Proposer); err != nil {
		return fmt.Errorf("invalid proposer: %s", err.Error())
	}

	if p.Threshold.IsNil() || p.Threshold.IsNegative() || p.Threshold.GT(math.LegacyOneDec()) {
		return fmt.Errorf("invalid threshold %s, must be 0 <= threshold <= 1", p.Threshold)
	}

	if p.Quorum.IsNil() || !p.Quorum.IsPositive() || p.Quorum.GT(math.LegacyOneDec()) {
		return fmt.Errorf("invalid quorum %s, must be 0 < quorum <= 1", p.Quorum)
	}

	if p.VetoThreshold != nil && (p.VetoThreshold.IsNegative() || p.VetoThreshold.GT(math.LegacyOneDec())) {
		return fmt.Errorf("invalid veto threshold %s, must be 0 <= veto_threshold <= 1", p.VetoThreshold)
	}

	if p.DepositAmount.IsNil() {
		return fmt.Errorf("deposit amount not set")
	}

	return nil
}

// Poll is a weighted-outcome poll. Results holds the live per-outcome vote
// weight and only mutates while the poll is in progress.
type Poll struct {
	ID            PollID                `json:"id"`
	Proposer      sdk.AccAddress        `json:"proposer"`
	DepositAmount math.Uint             `json:"deposit_amount"`
	Label         string                `json:"label"`
	Description   string                `json:"description"`
	Scheme        VotingScheme          `json:"scheme"`
	Status        PollStatus            `json:"status"`
	StartedAt     time.Time             `json:"started_at"`
	EndsAt        time.Time             `json:"ends_at"`
	Quorum        math.LegacyDec        `json:"quorum"`
	Threshold     math.LegacyDec        `json:"threshold"`
	VetoThreshold *math.LegacyDec       `json:"veto_threshold,omitempty"`
	Results       map[Outcome]math.Uint `json:"results"`
}

// NewPoll returns a new in-progress poll with empty results
func NewPoll(id PollID, params CreatePollParams, startedAt time.Time) Poll {
	return Poll{
		ID:            id,
		Proposer:      params.Proposer,
		DepositAmount: params.DepositAmount,
		Label:         params.Label,
		Description:   params.Description,
		Scheme:        params.Scheme,
		Status:        NewInProgressStatus(params.EndsAt),
		StartedAt:     startedAt,
		EndsAt:        params.EndsAt,
		Quorum:        params.Quorum,
		Threshold:     params.Threshold,
		VetoThreshold: params.VetoThreshold,
		Results:       make(map[Outcome]math.Uint),
	}
}

// Is returns true if the poll is in the given state
func (p Poll) Is(state PollState) bool {
	return p.Status.Is(state)
}

// TotalVotes returns the total vote weight cast on the poll
func (p Poll) TotalVotes() math.Uint {
	total := math.ZeroUint()
	for _, count := range p.Results {
		total = total.Add(count)
	}
	return total
}

// VotesFor returns the vote weight cast for the given outcome
func (p Poll) VotesFor(outcome Outcome) math.Uint {
	if count, ok := p.Results[outcome]; ok {
		return count
	}
	return math.ZeroUint()
}

// IncreaseResults adds the given weight to the outcome's tally
func (p *Poll) IncreaseResults(outcome Outcome, amount math.Uint) {
	p.Results[outcome] = p.VotesFor(outcome).Add(amount)
}

// DecreaseResults subtracts the given weight from the outcome's tally.
// Panics on underflow, which would mean votes and results went out of sync.
func (p *Poll) DecreaseResults(outcome Outcome, amount math.Uint) {
	p.Results[outcome] = p.VotesFor(outcome).Sub(amount)
}

// QuorumReached returns true if the cast-to-available vote ratio meets the poll's quorum
func (p Poll) QuorumReached(maxAvailableVotes math.Uint) bool {
	if maxAvailableVotes.IsZero() {
		return false
	}

	ratio := math.LegacyNewDecFromBigInt(p.TotalVotes().BigInt()).
		QuoTruncate(math.LegacyNewDecFromBigInt(maxAvailableVotes.BigInt()))
	return ratio.GTE(p.Quorum)
}

// MeetsThreshold returns true if the outcome's share of all non-abstaining
// votes meets the threshold that applies to it. The veto outcome is measured
// against the veto threshold when one is set.
func (p Poll) MeetsThreshold(outcome Outcome, count math.Uint) bool {
	base := p.TotalVotes().Sub(p.VotesFor(OutcomeAbstain))
	if base.IsZero() {
		return false
	}

	threshold := p.Threshold
	if outcome == OutcomeVeto && p.VetoThreshold != nil {
		threshold = *p.VetoThreshold
	}

	ratio := math.LegacyNewDecFromBigInt(count.BigInt()).
		QuoTruncate(math.LegacyNewDecFromBigInt(base.BigInt()))
	return ratio.GTE(threshold)
}

// ThresholdReachedByAny returns true if some non-abstain outcome currently
// meets the threshold that applies to it
func (p Poll) ThresholdReachedByAny() bool {
	for outcome, count := range p.Results {
		if outcome == OutcomeAbstain || count.IsZero() {
			continue
		}
		if p.MeetsThreshold(outcome, count) {
			return true
		}
	}
	return false
}

type tally struct {
	outcome Outcome
	count   math.Uint
}

// leaders returns the non-abstain outcomes with a non-zero tally, most voted
// first. Ties are broken by outcome code so the result is deterministic.
func (p Poll) leaders() []tally {
	var tallies []tally
	for outcome, count := range p.Results {
		if outcome == OutcomeAbstain || count.IsZero() {
			continue
		}
		tallies = append(tallies, tally{outcome: outcome, count: count})
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].count.Equal(tallies[j].count) {
			return tallies[i].outcome < tallies[j].outcome
		}
		return tallies[i].count.GT(tallies[j].count)
	})

	return tallies
}

// FinalStatus resolves the poll's terminal status given the maximum vote
// weight that was available to be cast. It is pure so ending a poll and
// previewing the result of ending it share the same logic.
func (p Poll) FinalStatus(maxAvailableVotes math.Uint) PollStatus {
	quorumReached := p.QuorumReached(maxAvailableVotes)
	leaders := p.leaders()

	isDraw := len(leaders) >= 2 && leaders[0].count.Equal(leaders[1].count)

	var winner *tally
	if len(leaders) > 0 && !isDraw {
		winner = &leaders[0]
	}

	if !quorumReached {
		// a draw or a winner over threshold fails on quorum alone,
		// anything weaker fails on both
		if isDraw || (winner != nil && p.MeetsThreshold(winner.outcome, winner.count)) {
			return NewRejectedStatus(NewRejectionReason(QuorumNotReached))
		}
		return NewRejectedStatus(NewRejectionReason(QuorumAndThresholdNotReached))
	}

	if isDraw {
		return NewRejectedStatus(NewDrawReason(leaders[0].outcome, leaders[1].outcome, leaders[1].count))
	}

	if winner == nil || !p.MeetsThreshold(winner.outcome, winner.count) {
		return NewRejectedStatus(NewRejectionReason(ThresholdNotReached))
	}

	switch winner.outcome {
	case OutcomeNo:
		return NewRejectedStatus(NewRejectionReason(IsRejectingOutcome))
	case OutcomeVeto:
		return NewRejectedStatus(NewRejectionReason(IsVetoOutcome))
	default:
		return NewPassedStatus(winner.outcome, winner.count)
	}
}
