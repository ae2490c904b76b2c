package types

import (
	"time"

	"cosmossdk.io/math"

	"github.com/galleon-dao/galleon-core/x/poll/exported"
)

// PollStatusResponse is the full status of a poll, including the live results
type PollStatusResponse struct {
	Status  exported.PollStatus            `json:"status"`
	EndsAt  time.Time                      `json:"ends_at"`
	Results map[exported.Outcome]math.Uint `json:"results"`
}
