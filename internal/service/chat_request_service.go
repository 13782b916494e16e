package service

import (
	"context"
	"errors"
	"time"

	"chatlink-be/internal/apperror"
	"chatlink-be/internal/dto"
	"chatlink-be/internal/entity"
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/repository/contract"
	"chatlink-be/internal/repository/specification"
	"chatlink-be/internal/repository/unitofwork"
	"chatlink-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// cooldownPeriod is how long a rejected sender must wait before
// submitting to the same receiver again.
const cooldownPeriod = 7 * 24 * time.Hour

type IChatRequestService interface {
	Submit(ctx context.Context, senderId uuid.UUID, req *dto.SubmitChatRequestRequest) (*dto.ChatRequestResponse, error)
	Respond(ctx context.Context, responderId uuid.UUID, req *dto.RespondChatRequestRequest) (*dto.RespondChatRequestResponse, error)
	Cancel(ctx context.Context, requestId, requesterId uuid.UUID) error
	ListIncoming(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRequestResponse, error)
	ListOutgoing(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRequestResponse, error)
}

type chatRequestService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewChatRequestService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) IChatRequestService {
	return &chatRequestService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *chatRequestService) Submit(ctx context.Context, senderId uuid.UUID, req *dto.SubmitChatRequestRequest) (*dto.ChatRequestResponse, error) {
	receiverId := req.ReceiverId

	if senderId == receiverId {
		return nil, apperror.New(apperror.KindSelfRequest, "Cannot send a chat request to yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	pairKey := entity.PairKey(senderId, receiverId)

	// A standing blocked row is permanent; cooldown expiry never clears it.
	blocked, err := uow.ChatRequestRepository().FindOne(ctx,
		specification.ByPairKey{PairKey: pairKey},
		specification.ByStatus{Status: string(entity.ChatRequestStatusBlocked)},
	)
	if err != nil {
		return nil, err
	}
	if blocked != nil {
		return nil, apperror.New(apperror.KindForbidden, "Chat requests between these users are blocked")
	}

	exists, err := uow.ConversationRepository().HasPrivateBetween(ctx, senderId, receiverId)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(apperror.KindConversationAlreadyExists, "A conversation already exists between these users")
	}

	// Directional: only the rejected sender serves the cooldown.
	inCooldown, err := uow.ChatRequestRepository().Count(ctx,
		specification.BySender{SenderID: senderId},
		specification.ByReceiver{ReceiverID: receiverId},
		specification.ByStatus{Status: string(entity.ChatRequestStatusRejected)},
		specification.CooldownAfter{Now: time.Now()},
	)
	if err != nil {
		return nil, err
	}
	if inCooldown > 0 {
		return nil, apperror.New(apperror.KindCooldownActive, "A recent rejection is still cooling down")
	}

	request := &entity.ChatRequest{
		Id:         uuid.New(),
		SenderId:   senderId,
		ReceiverId: receiverId,
		Status:     entity.ChatRequestStatusPending,
		CreatedAt:  time.Now(),
	}

	// The partial unique index on the pair key is the source of truth for
	// the pending-pair invariant under concurrent submits.
	if err := uow.ChatRequestRepository().Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.KindRequestAlreadyExists, "A pending request already exists between these users")
		}
		return nil, err
	}

	s.publishEvent(ctx, events.TypeChatRequestSubmitted, request, nil)

	return toChatRequestResponse(request), nil
}

func (s *chatRequestService) Respond(ctx context.Context, responderId uuid.UUID, req *dto.RespondChatRequestRequest) (*dto.RespondChatRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.ChatRequestRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.New(apperror.KindNotFound, "Chat request not found")
	}
	if request.ReceiverId != responderId {
		return nil, apperror.New(apperror.KindForbidden, "Only the receiver can respond to this request")
	}
	if !request.IsPending() {
		return nil, apperror.New(apperror.KindAlreadyResponded, "This request has already been responded to")
	}

	now := time.Now()

	switch req.Decision {
	case "accept":
		conversation, err := s.acceptAndCreateConversation(ctx, uow, request, now)
		if err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.TypeChatRequestAccepted, request, &conversation.Id)
		s.publishEvent(ctx, events.TypeConversationCreated, request, &conversation.Id)
		return &dto.RespondChatRequestResponse{
			Request:      *toChatRequestResponse(request),
			Conversation: toConversationResponse(conversation, nil),
		}, nil

	case "reject":
		cooldownUntil := now.Add(cooldownPeriod)
		update := contract.ResponseUpdate{
			Status:         entity.ChatRequestStatusRejected,
			RespondedAt:    now,
			RejectedReason: req.Reason,
			CooldownUntil:  &cooldownUntil,
		}
		if err := s.applyResponse(ctx, uow, request, update); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.TypeChatRequestRejected, request, nil)
		return &dto.RespondChatRequestResponse{Request: *toChatRequestResponse(request)}, nil

	case "block":
		update := contract.ResponseUpdate{
			Status:      entity.ChatRequestStatusBlocked,
			RespondedAt: now,
		}
		if err := s.applyResponse(ctx, uow, request, update); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.TypeChatRequestBlocked, request, nil)
		return &dto.RespondChatRequestResponse{Request: *toChatRequestResponse(request)}, nil

	default:
		return nil, apperror.New(apperror.KindInvalidInput, "Unknown decision")
	}
}

// applyResponse moves the request into a terminal state with a single
// conditional update, so exactly one of two concurrent responders wins.
func (s *chatRequestService) applyResponse(ctx context.Context, uow unitofwork.UnitOfWork, request *entity.ChatRequest, update contract.ResponseUpdate) error {
	responded, err := uow.ChatRequestRepository().RespondIfPending(ctx, request.Id, update)
	if err != nil {
		return err
	}
	if !responded {
		return apperror.New(apperror.KindAlreadyResponded, "This request has already been responded to")
	}

	request.Status = update.Status
	request.RespondedAt = &update.RespondedAt
	request.RejectedReason = update.RejectedReason
	request.CooldownUntil = update.CooldownUntil
	return nil
}

// acceptAndCreateConversation is the atomic accept transition: the
// status flip, the conversation and both memberships commit together or
// not at all. A failure leaves the request pending and safe to retry.
func (s *chatRequestService) acceptAndCreateConversation(ctx context.Context, uow unitofwork.UnitOfWork, request *entity.ChatRequest, now time.Time) (*entity.Conversation, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	responded, err := uow.ChatRequestRepository().RespondIfPending(ctx, request.Id, contract.ResponseUpdate{
		Status:      entity.ChatRequestStatusAccepted,
		RespondedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if !responded {
		// A concurrent responder got here first.
		return nil, apperror.New(apperror.KindAlreadyResponded, "This request has already been responded to")
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		Kind:      entity.ConversationKindPrivate,
		CreatedBy: request.SenderId,
		CreatedAt: now,
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, translateStorageError(err)
	}

	memberships := []*entity.Membership{
		{Id: uuid.New(), ConversationId: conversation.Id, UserId: request.SenderId, Role: entity.MemberRoleAdmin, JoinedAt: now},
		{Id: uuid.New(), ConversationId: conversation.Id, UserId: request.ReceiverId, Role: entity.MemberRoleMember, JoinedAt: now},
	}
	for _, membership := range memberships {
		if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
			return nil, translateStorageError(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	request.Status = entity.ChatRequestStatusAccepted
	request.RespondedAt = &now

	return conversation, nil
}

func (s *chatRequestService) Cancel(ctx context.Context, requestId, requesterId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.ChatRequestRepository().FindOne(ctx, specification.ByID{ID: requestId})
	if err != nil {
		return err
	}
	if request == nil {
		return apperror.New(apperror.KindNotFound, "Chat request not found")
	}
	if request.SenderId != requesterId {
		return apperror.New(apperror.KindForbidden, "Only the sender can cancel this request")
	}
	if !request.IsPending() {
		return apperror.New(apperror.KindAlreadyResponded, "This request has already been responded to")
	}

	deleted, err := uow.ChatRequestRepository().DeleteIfPending(ctx, requestId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.New(apperror.KindAlreadyResponded, "This request has already been responded to")
	}

	s.publishEvent(ctx, events.TypeChatRequestCancelled, request, nil)
	return nil
}

func (s *chatRequestService) ListIncoming(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	requests, err := uow.ChatRequestRepository().FindAll(ctx,
		specification.ByReceiver{ReceiverID: userId},
		specification.ByStatus{Status: string(entity.ChatRequestStatusPending)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return toChatRequestResponses(requests), nil
}

func (s *chatRequestService) ListOutgoing(ctx context.Context, userId uuid.UUID) ([]*dto.ChatRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	requests, err := uow.ChatRequestRepository().FindAll(ctx,
		specification.BySender{SenderID: userId},
		specification.ByStatus{Status: string(entity.ChatRequestStatusPending)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return toChatRequestResponses(requests), nil
}

func (s *chatRequestService) publishEvent(ctx context.Context, eventType string, request *entity.ChatRequest, conversationId *uuid.UUID) {
	if s.publisherService == nil {
		return
	}

	msg := dto.ChatRequestEventMessage{
		EventType:      eventType,
		RequestId:      request.Id,
		SenderId:       request.SenderId,
		ReceiverId:     request.ReceiverId,
		ConversationId: conversationId,
	}
	if err := s.publisherService.Publish(ctx, msg); err != nil {
		s.logger.Warn("ChatRequestService", "Failed to publish request event", map[string]interface{}{
			"event": eventType, "request_id": request.Id, "error": err,
		})
	}
}

// translateStorageError keeps engine-specific failures out of the error
// surface: constraint violations inside the atomic unit become
// StorageConflict.
func translateStorageError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperror.Wrap(apperror.KindStorageConflict, "Conflicting state in storage, please retry", err)
	}
	return err
}

func toChatRequestResponse(r *entity.ChatRequest) *dto.ChatRequestResponse {
	return &dto.ChatRequestResponse{
		Id:             r.Id,
		SenderId:       r.SenderId,
		ReceiverId:     r.ReceiverId,
		Status:         string(r.Status),
		RejectedReason: r.RejectedReason,
		CooldownUntil:  r.CooldownUntil,
		RespondedAt:    r.RespondedAt,
		CreatedAt:      r.CreatedAt,
	}
}

func toChatRequestResponses(requests []*entity.ChatRequest) []*dto.ChatRequestResponse {
	result := make([]*dto.ChatRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toChatRequestResponse(r))
	}
	return result
}
