package unitofwork

import (
	"context"

	"chatlink-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRequestRepository() contract.ChatRequestRepository
	ConversationRepository() contract.ConversationRepository
	MembershipRepository() contract.MembershipRepository
}
