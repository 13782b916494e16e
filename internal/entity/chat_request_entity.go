package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChatRequestStatus string

const (
	ChatRequestStatusPending  ChatRequestStatus = "pending"
	ChatRequestStatusAccepted ChatRequestStatus = "accepted"
	ChatRequestStatusRejected ChatRequestStatus = "rejected"
	ChatRequestStatusBlocked  ChatRequestStatus = "blocked"
)

type ChatRequest struct {
	Id             uuid.UUID
	SenderId       uuid.UUID
	ReceiverId     uuid.UUID
	Status         ChatRequestStatus
	RejectedReason *string
	CooldownUntil  *time.Time
	RespondedAt    *time.Time
	CreatedAt      time.Time
}

func (r *ChatRequest) IsPending() bool {
	return r.Status == ChatRequestStatusPending
}

// PairKey normalizes a user pair into a direction-independent key, used
// by the pending-uniqueness constraint.
func PairKey(a, b uuid.UUID) string {
	sa, sb := a.String(), b.String()
	if strings.Compare(sa, sb) > 0 {
		sa, sb = sb, sa
	}
	return sa + ":" + sb
}
