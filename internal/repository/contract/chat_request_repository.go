package contract

import (
	"context"
	"time"

	"chatlink-be/internal/entity"
	"chatlink-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ResponseUpdate carries the terminal-state fields written by respond().
type ResponseUpdate struct {
	Status         entity.ChatRequestStatus
	RespondedAt    time.Time
	RejectedReason *string
	CooldownUntil  *time.Time
}

type ChatRequestRepository interface {
	Create(ctx context.Context, request *entity.ChatRequest) error
	// DeleteIfPending removes the row outright so cancel() frees the pair
	// immediately. Returns false when the row was already responded to or
	// gone, so a racing respond() keeps its win.
	DeleteIfPending(ctx context.Context, id uuid.UUID) (bool, error)
	// RespondIfPending conditionally moves a pending request to a terminal
	// state. Returns false when the row was not pending anymore, which is
	// how a losing concurrent responder learns it lost.
	RespondIfPending(ctx context.Context, id uuid.UUID, update ResponseUpdate) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
