package types

// event types and attribute keys
const (
	EventTypePollCreated = "pollCreated"
	EventTypeVoted       = "voted"
	EventTypePollEnded   = "pollEnded"

	AttributeKeyPollID  = "pollID"
	AttributeKeyVoter   = "voter"
	AttributeKeyOutcome = "outcome"
	AttributeKeyAmount  = "amount"
	AttributeKeyState   = "state"
	AttributeKeyReason  = "reason"
)
