package contract

import (
	"context"

	"chatlink-be/internal/entity"
	"chatlink-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
	// HasPrivateBetween reports whether a private conversation already
	// links the pair; the ledger's duplicate check.
	HasPrivateBetween(ctx context.Context, a, b uuid.UUID) (bool, error)
}
