package mapper

import (
	"chatlink-be/internal/entity"
	"chatlink-be/internal/model"
)

type ChatRequestMapper struct{}

func NewChatRequestMapper() *ChatRequestMapper {
	return &ChatRequestMapper{}
}

func (m *ChatRequestMapper) ToEntity(r *model.ChatRequest) *entity.ChatRequest {
	if r == nil {
		return nil
	}

	return &entity.ChatRequest{
		Id:             r.Id,
		SenderId:       r.SenderId,
		ReceiverId:     r.ReceiverId,
		Status:         entity.ChatRequestStatus(r.Status),
		RejectedReason: r.RejectedReason,
		CooldownUntil:  r.CooldownUntil,
		RespondedAt:    r.RespondedAt,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *ChatRequestMapper) ToModel(r *entity.ChatRequest) *model.ChatRequest {
	if r == nil {
		return nil
	}

	return &model.ChatRequest{
		Id:             r.Id,
		SenderId:       r.SenderId,
		ReceiverId:     r.ReceiverId,
		PairKey:        entity.PairKey(r.SenderId, r.ReceiverId),
		Status:         string(r.Status),
		RejectedReason: r.RejectedReason,
		CooldownUntil:  r.CooldownUntil,
		RespondedAt:    r.RespondedAt,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *ChatRequestMapper) ToEntities(models []*model.ChatRequest) []*entity.ChatRequest {
	entities := make([]*entity.ChatRequest, 0, len(models))
	for _, r := range models {
		entities = append(entities, m.ToEntity(r))
	}
	return entities
}
