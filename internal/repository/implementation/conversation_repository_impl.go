package implementation

import (
	"context"
	"errors"

	"chatlink-be/internal/entity"
	"chatlink-be/internal/mapper"
	"chatlink-be/internal/model"
	"chatlink-be/internal/repository/contract"
	"chatlink-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.conversation_id = conversations.id").
		Where("memberships.user_id = ?", userID).
		Order("conversations.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ConversationRepositoryImpl) HasPrivateBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Joins("JOIN memberships m1 ON m1.conversation_id = conversations.id AND m1.user_id = ?", a).
		Joins("JOIN memberships m2 ON m2.conversation_id = conversations.id AND m2.user_id = ?", b).
		Where("conversations.kind = ?", string(entity.ConversationKindPrivate)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
