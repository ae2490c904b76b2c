package types

import (
	"fmt"

	"github.com/galleon-dao/galleon-core/x/poll/exported"
)

// GenesisState is the poll module's exportable state
type GenesisState struct {
	Polls []exported.Poll `json:"polls"`
	Votes []exported.Vote `json:"votes"`
}

// NewGenesisState is the constructor for GenesisState
func NewGenesisState(polls []exported.Poll, votes []exported.Vote) GenesisState {
	return GenesisState{Polls: polls, Votes: votes}
}

// DefaultGenesisState returns the empty genesis state
func DefaultGenesisState() GenesisState {
	return NewGenesisState(nil, nil)
}

// Validate checks the genesis state for internal consistency
func (m GenesisState) Validate() error {
	pollIDs := make(map[exported.PollID]bool, len(m.Polls))
	for _, poll := range m.Polls {
		if pollIDs[poll.ID] {
			return fmt.Errorf("duplicate poll id %s", poll.ID)
		}
		pollIDs[poll.ID] = true
	}

	for _, vote := range m.Votes {
		if !pollIDs[vote.PollID] {
			return fmt.Errorf("vote for unknown poll %s", vote.PollID)
		}
		if vote.Amount.IsNil() {
			return fmt.Errorf("vote for poll %s has no amount", vote.PollID)
		}
	}

	return nil
}
