package mapper

import (
	"chatlink-be/internal/entity"
	"chatlink-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	return &entity.Conversation{
		Id:        c.Id,
		Kind:      entity.ConversationKind(c.Kind),
		Title:     c.Title,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	return &model.Conversation{
		Id:        c.Id,
		Kind:      string(c.Kind),
		Title:     c.Title,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ConversationMapper) ToEntities(models []*model.Conversation) []*entity.Conversation {
	entities := make([]*entity.Conversation, 0, len(models))
	for _, c := range models {
		entities = append(entities, m.ToEntity(c))
	}
	return entities
}

func (m *ConversationMapper) MembershipToEntity(mb *model.Membership) *entity.Membership {
	if mb == nil {
		return nil
	}

	return &entity.Membership{
		Id:                mb.Id,
		ConversationId:    mb.ConversationId,
		UserId:            mb.UserId,
		Role:              entity.MemberRole(mb.Role),
		JoinedAt:          mb.JoinedAt,
		LastReadMessageId: mb.LastReadMessageId,
	}
}

func (m *ConversationMapper) MembershipToModel(mb *entity.Membership) *model.Membership {
	if mb == nil {
		return nil
	}

	return &model.Membership{
		Id:                mb.Id,
		ConversationId:    mb.ConversationId,
		UserId:            mb.UserId,
		Role:              string(mb.Role),
		JoinedAt:          mb.JoinedAt,
		LastReadMessageId: mb.LastReadMessageId,
	}
}

func (m *ConversationMapper) MembershipToEntities(models []*model.Membership) []*entity.Membership {
	entities := make([]*entity.Membership, 0, len(models))
	for _, mb := range models {
		entities = append(entities, m.MembershipToEntity(mb))
	}
	return entities
}
