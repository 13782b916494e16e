package contract

import (
	"context"

	"chatlink-be/internal/entity"
	"chatlink-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *entity.Membership) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Membership, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Membership, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Exists(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	AdvanceLastRead(ctx context.Context, conversationID, userID, messageID uuid.UUID) error
}
