package service

import (
	"context"
	"encoding/json"
	"strings"

	"chatlink-be/internal/dto"
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/pkg/mailer"
	"chatlink-be/internal/repository/memory"
	internalWS "chatlink-be/internal/websocket"
	"chatlink-be/pkg/events"
	pktNats "chatlink-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// NoticeDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NoticeDelivery interface {
	SendToUser(userID uuid.UUID, event internalWS.ServerEvent)
}

// chatNoticeData is what clients receive for request lifecycle updates.
type chatNoticeData struct {
	RequestId      uuid.UUID  `json:"request_id"`
	SenderId       uuid.UUID  `json:"sender_id"`
	ReceiverId     uuid.UUID  `json:"receiver_id"`
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
}

// INotifierService bridges the in-process request event bus to the NATS
// stream, and fans stream events out to connected clients and email.
type INotifierService interface {
	Consume(ctx context.Context) error
	Start()
}

type notifierService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	publisher    *pktNats.Publisher
	subscriber   *pktNats.Subscriber
	delivery     NoticeDelivery
	emailService mailer.IEmailService
	profiles     *memory.ProfileRepository
	presence     IPresenceService
	logger       logger.ILogger
}

func NewNotifierService(
	pubSub *gochannel.GoChannel,
	topicName string,
	publisher *pktNats.Publisher,
	subscriber *pktNats.Subscriber,
	delivery NoticeDelivery,
	emailService mailer.IEmailService,
	profiles *memory.ProfileRepository,
	presence IPresenceService,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		pubSub:       pubSub,
		topicName:    topicName,
		publisher:    publisher,
		subscriber:   subscriber,
		delivery:     delivery,
		emailService: emailService,
		profiles:     profiles,
		presence:     presence,
		logger:       log,
	}
}

// Consume drains the in-process bus and republishes each request event
// onto the durable NATS stream.
func (s *notifierService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *notifierService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatRequestEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("NotifierService", "Failed to unmarshal bus message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	data := map[string]interface{}{
		"request_id":  payload.RequestId.String(),
		"sender_id":   payload.SenderId.String(),
		"receiver_id": payload.ReceiverId.String(),
	}
	if payload.ConversationId != nil {
		data["conversation_id"] = payload.ConversationId.String()
	}

	evt := events.BaseEvent{
		Type: payload.EventType,
		Data: data,
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("NotifierService", "Failed to publish to stream", map[string]interface{}{
			"type":  payload.EventType,
			"error": err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}

// Start begins listening to the event bus.
func (s *notifierService) Start() {
	err := s.subscriber.Subscribe("events.>", "chat-notifier-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotifierService", "Failed to start stream subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotifierService", "Notifier started, listening to events.>", nil)
}

func (s *notifierService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	s.logger.Info("NotifierService", "Processing event", map[string]interface{}{"type": typeCode})

	notice, err := parseChatNotice(event.Payload())
	if err != nil {
		s.logger.Warn("NotifierService", "Malformed event payload, skipping", map[string]interface{}{
			"type":  typeCode,
			"error": err.Error(),
		})
		return nil
	}

	switch typeCode {
	case events.TypeChatRequestSubmitted:
		s.deliver(notice.ReceiverId, "chat_request_received", notice)
		s.sendEmailNotice(notice)

	case events.TypeChatRequestAccepted:
		s.deliver(notice.SenderId, "chat_request_accepted", notice)

	case events.TypeChatRequestRejected, events.TypeChatRequestBlocked:
		// A block looks like a rejection from the outside; the sender is
		// never told they were blocked.
		s.deliver(notice.SenderId, "chat_request_rejected", notice)

	case events.TypeChatRequestCancelled:
		s.deliver(notice.ReceiverId, "chat_request_cancelled", notice)

	case events.TypeConversationCreated:
		s.deliver(notice.SenderId, "conversation_created", notice)
		s.deliver(notice.ReceiverId, "conversation_created", notice)

	default:
		s.logger.Info("NotifierService", "No handling for event type", map[string]interface{}{"type": typeCode})
	}

	return nil
}

func (s *notifierService) deliver(userID uuid.UUID, eventName string, notice *chatNoticeData) {
	if s.delivery == nil {
		return
	}
	s.delivery.SendToUser(userID, internalWS.ServerEvent{Event: eventName, Data: notice})
}

// sendEmailNotice mails the receiver about a new request. Best-effort:
// we only know emails of users who authenticated against this cluster.
func (s *notifierService) sendEmailNotice(notice *chatNoticeData) {
	if s.emailService == nil || s.profiles == nil {
		return
	}

	// The receiver already got the real-time notice over their socket.
	if s.presence != nil && s.presence.IsOnline(notice.ReceiverId) {
		return
	}

	receiver, found := s.profiles.Get(notice.ReceiverId)
	if !found || receiver.Email == "" {
		s.logger.Info("NotifierService", "No cached email for receiver, skipping mail", map[string]interface{}{
			"receiver_id": notice.ReceiverId,
		})
		return
	}

	senderName := "Someone"
	if sender, ok := s.profiles.Get(notice.SenderId); ok && sender.Name != "" {
		senderName = sender.Name
	}

	if err := s.emailService.SendChatRequestNotice(receiver.Email, senderName); err != nil {
		s.logger.Warn("NotifierService", "Failed to send request notice mail", map[string]interface{}{
			"receiver_id": notice.ReceiverId,
			"error":       err.Error(),
		})
	}
}

func parseChatNotice(payload map[string]interface{}) (*chatNoticeData, error) {
	notice := &chatNoticeData{}

	var err error
	if notice.RequestId, err = parseUUIDField(payload, "request_id"); err != nil {
		return nil, err
	}
	if notice.SenderId, err = parseUUIDField(payload, "sender_id"); err != nil {
		return nil, err
	}
	if notice.ReceiverId, err = parseUUIDField(payload, "receiver_id"); err != nil {
		return nil, err
	}

	if raw, ok := payload["conversation_id"].(string); ok && raw != "" {
		cid, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		notice.ConversationId = &cid
	}

	return notice, nil
}

func parseUUIDField(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, _ := payload[key].(string)
	return uuid.Parse(raw)
}
