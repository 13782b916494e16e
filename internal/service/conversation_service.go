package service

import (
	"context"
	"time"

	"chatlink-be/internal/apperror"
	"chatlink-be/internal/dto"
	"chatlink-be/internal/entity"
	"chatlink-be/internal/repository/specification"
	"chatlink-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IConversationService interface {
	Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	Show(ctx context.Context, userId, conversationId uuid.UUID) (*dto.ConversationResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	IsMember(ctx context.Context, conversationId, userId uuid.UUID) (bool, error)
	AdvanceLastRead(ctx context.Context, conversationId, userId, messageId uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
	}
}

func (s *conversationService) Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	kind := entity.ConversationKind(req.Kind)

	if len(req.MemberIds) == 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "At least one member is required")
	}
	if kind == entity.ConversationKindGroup && (req.Title == nil || *req.Title == "") {
		return nil, apperror.New(apperror.KindInvalidInput, "Group conversations require a title")
	}
	if kind == entity.ConversationKindPrivate && req.Title != nil {
		return nil, apperror.New(apperror.KindInvalidInput, "Private conversations cannot have a title")
	}

	// De-duplicate, drop the creator (added as admin below).
	memberIds := make([]uuid.UUID, 0, len(req.MemberIds))
	seen := map[uuid.UUID]bool{creatorId: true}
	for _, id := range req.MemberIds {
		if !seen[id] {
			seen[id] = true
			memberIds = append(memberIds, id)
		}
	}
	if len(memberIds) == 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "At least one member other than the creator is required")
	}
	if kind == entity.ConversationKindPrivate && len(memberIds) != 1 {
		return nil, apperror.New(apperror.KindInvalidInput, "Private conversations have exactly two members")
	}

	now := time.Now()
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		Kind:      kind,
		Title:     req.Title,
		CreatedBy: creatorId,
		CreatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Member inserts share the creation transaction; a failing insert
	// rolls back the whole conversation.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, translateStorageError(err)
	}

	memberships := []*entity.Membership{
		{Id: uuid.New(), ConversationId: conversation.Id, UserId: creatorId, Role: entity.MemberRoleAdmin, JoinedAt: now},
	}
	for _, memberId := range memberIds {
		memberships = append(memberships, &entity.Membership{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			UserId:         memberId,
			Role:           entity.MemberRoleMember,
			JoinedAt:       now,
		})
	}
	for _, membership := range memberships {
		if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
			return nil, translateStorageError(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toConversationResponse(conversation, memberships), nil
}

func (s *conversationService) Show(ctx context.Context, userId, conversationId uuid.UUID) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.New(apperror.KindNotFound, "Conversation not found")
	}

	memberships, err := uow.MembershipRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
	)
	if err != nil {
		return nil, err
	}

	isMember := false
	for _, m := range memberships {
		if m.UserId == userId {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, apperror.New(apperror.KindForbidden, "Not a member of this conversation")
	}

	return toConversationResponse(conversation, memberships), nil
}

func (s *conversationService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAllForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		result = append(result, toConversationResponse(c, nil))
	}
	return result, nil
}

func (s *conversationService) IsMember(ctx context.Context, conversationId, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MembershipRepository().Exists(ctx, conversationId, userId)
}

func (s *conversationService) AdvanceLastRead(ctx context.Context, conversationId, userId, messageId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MembershipRepository().AdvanceLastRead(ctx, conversationId, userId, messageId)
}

func toConversationResponse(c *entity.Conversation, memberships []*entity.Membership) *dto.ConversationResponse {
	members := make([]dto.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, dto.MembershipResponse{
			UserId:            m.UserId,
			Role:              string(m.Role),
			JoinedAt:          m.JoinedAt,
			LastReadMessageId: m.LastReadMessageId,
		})
	}

	return &dto.ConversationResponse{
		Id:        c.Id,
		Kind:      string(c.Kind),
		Title:     c.Title,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		Members:   members,
	}
}
