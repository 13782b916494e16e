package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_REQUEST_SUBMITTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published on the bus.
const (
	TypeChatRequestSubmitted = "CHAT_REQUEST_SUBMITTED"
	TypeChatRequestAccepted  = "CHAT_REQUEST_ACCEPTED"
	TypeChatRequestRejected  = "CHAT_REQUEST_REJECTED"
	TypeChatRequestBlocked   = "CHAT_REQUEST_BLOCKED"
	TypeChatRequestCancelled = "CHAT_REQUEST_CANCELLED"
	TypeConversationCreated  = "CONVERSATION_CREATED"
)
