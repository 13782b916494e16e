package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitChatRequestRequest struct {
	ReceiverId uuid.UUID `json:"receiver_id" validate:"required"`
}

type ChatRequestResponse struct {
	Id             uuid.UUID  `json:"id"`
	SenderId       uuid.UUID  `json:"sender_id"`
	ReceiverId     uuid.UUID  `json:"receiver_id"`
	Status         string     `json:"status"`
	RejectedReason *string    `json:"rejected_reason,omitempty"`
	CooldownUntil  *time.Time `json:"cooldown_until,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type RespondChatRequestRequest struct {
	Id       uuid.UUID
	Decision string  `json:"decision" validate:"required,oneof=accept reject block"`
	Reason   *string `json:"reason"`
}

type RespondChatRequestResponse struct {
	Request      ChatRequestResponse   `json:"request"`
	Conversation *ConversationResponse `json:"conversation,omitempty"`
}

// ChatRequestEventMessage is the internal bus payload between the ledger
// and the notifier worker.
type ChatRequestEventMessage struct {
	EventType      string     `json:"event_type"`
	RequestId      uuid.UUID  `json:"request_id"`
	SenderId       uuid.UUID  `json:"sender_id"`
	ReceiverId     uuid.UUID  `json:"receiver_id"`
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
}
