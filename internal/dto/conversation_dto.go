package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Kind      string      `json:"kind" validate:"required,oneof=private group"`
	Title     *string     `json:"title"`
	MemberIds []uuid.UUID `json:"member_ids" validate:"required,min=1"`
}

type MembershipResponse struct {
	UserId            uuid.UUID  `json:"user_id"`
	Role              string     `json:"role"`
	JoinedAt          time.Time  `json:"joined_at"`
	LastReadMessageId *uuid.UUID `json:"last_read_message_id,omitempty"`
}

type ConversationResponse struct {
	Id        uuid.UUID            `json:"id"`
	Kind      string               `json:"kind"`
	Title     *string              `json:"title,omitempty"`
	CreatedBy uuid.UUID            `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	Members   []MembershipResponse `json:"members,omitempty"`
}
