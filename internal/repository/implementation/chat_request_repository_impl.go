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

type ChatRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatRequestMapper
}

func NewChatRequestRepository(db *gorm.DB) contract.ChatRequestRepository {
	return &ChatRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatRequestMapper(),
	}
}

func (r *ChatRequestRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRequestRepositoryImpl) Create(ctx context.Context, request *entity.ChatRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatRequestRepositoryImpl) DeleteIfPending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(entity.ChatRequestStatusPending)).
		Delete(&model.ChatRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ChatRequestRepositoryImpl) RespondIfPending(ctx context.Context, id uuid.UUID, update contract.ResponseUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ChatRequest{}).
		Where("id = ? AND status = ?", id, string(entity.ChatRequestStatusPending)).
		Updates(map[string]interface{}{
			"status":          string(update.Status),
			"responded_at":    update.RespondedAt,
			"rejected_reason": update.RejectedReason,
			"cooldown_until":  update.CooldownUntil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ChatRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRequest, error) {
	var m model.ChatRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatRequestRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRequest, error) {
	var models []*model.ChatRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
