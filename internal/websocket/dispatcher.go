package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"chatlink-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const handlerTimeout = 5 * time.Second

// ConversationAccess is the slice of the conversation service the
// dispatcher needs. Declared here to keep the dependency one-way.
type ConversationAccess interface {
	IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	AdvanceLastRead(ctx context.Context, conversationID, userID, messageID uuid.UUID) error
}

// PresenceTracker records user activity for online/last-seen queries.
type PresenceTracker interface {
	Touch(userID uuid.UUID)
}

type eventHandler func(ctx context.Context, client *Client, data json.RawMessage)

// Dispatcher routes inbound client frames to their handlers. The handler
// table is built once at construction; registering the same event twice
// is a programming error and panics immediately.
type Dispatcher struct {
	hub           *Hub
	registry      *Registry
	conversations ConversationAccess
	presence      PresenceTracker
	maxMessageLen int
	logger        logger.ILogger
	handlers      map[string]eventHandler
}

func NewDispatcher(
	hub *Hub,
	registry *Registry,
	conversations ConversationAccess,
	presence PresenceTracker,
	maxMessageLen int,
	log logger.ILogger,
) *Dispatcher {
	d := &Dispatcher{
		hub:           hub,
		registry:      registry,
		conversations: conversations,
		presence:      presence,
		maxMessageLen: maxMessageLen,
		logger:        log,
		handlers:      make(map[string]eventHandler),
	}

	d.register(EventJoin, d.handleJoin)
	d.register(EventLeave, d.handleLeave)
	d.register(EventSendMessage, d.handleSendMessage)
	d.register(EventTyping, d.handleTyping)
	d.register(EventMarkRead, d.handleMarkRead)
	d.register(EventGetOnlineCount, d.handleGetOnlineCount)

	return d
}

func (d *Dispatcher) register(event string, handler eventHandler) {
	if _, exists := d.handlers[event]; exists {
		panic(fmt.Sprintf("websocket: handler for event %q registered twice", event))
	}
	d.handlers[event] = handler
}

// Handle parses one inbound frame and runs its handler. Unknown events
// and malformed envelopes answer with an error event instead of closing
// the connection.
func (d *Dispatcher) Handle(client *Client, raw []byte) {
	var envelope ClientEvent
	if err := json.Unmarshal(raw, &envelope); err != nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Message: "malformed event envelope"}})
		return
	}

	handler, ok := d.handlers[envelope.Event]
	if !ok {
		client.push(ServerEvent{
			Event: EventError,
			Data:  ErrorData{Event: envelope.Event, Message: "unknown event"},
		})
		return
	}

	d.presence.Touch(client.UserID)

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	handler(ctx, client, envelope.Data)
}

func (d *Dispatcher) handleJoin(ctx context.Context, client *Client, data json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventJoin, Message: "room_id is required"}})
		return
	}

	isMember, err := d.conversations.IsMember(ctx, payload.RoomId, client.UserID)
	if err != nil {
		d.logger.Error("Dispatcher", "Membership check failed", map[string]interface{}{
			"room_id": payload.RoomId,
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventJoin, Message: "could not verify membership"}})
		return
	}
	if !isMember {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventJoin, Message: "not a member of this conversation"}})
		return
	}

	d.registry.Join(client, payload.RoomId)

	client.push(ServerEvent{Event: EventJoined, Data: RoomEventData{RoomId: payload.RoomId}})
	d.hub.BroadcastToRoom(payload.RoomId, ServerEvent{
		Event: EventUserJoined,
		Data:  RoomEventData{RoomId: payload.RoomId, UserId: client.UserID},
	}, client.ID)
}

func (d *Dispatcher) handleLeave(_ context.Context, client *Client, data json.RawMessage) {
	var payload LeavePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventLeave, Message: "room_id is required"}})
		return
	}

	if !d.registry.Leave(client, payload.RoomId) {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventLeave, Message: "not joined to this room"}})
		return
	}

	client.push(ServerEvent{Event: EventLeft, Data: RoomEventData{RoomId: payload.RoomId}})
	d.hub.BroadcastToRoom(payload.RoomId, ServerEvent{
		Event: EventUserLeft,
		Data:  RoomEventData{RoomId: payload.RoomId, UserId: client.UserID},
	}, client.ID)
}

func (d *Dispatcher) handleSendMessage(_ context.Context, client *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventSendMessage, Message: "room_id is required"}})
		return
	}
	if payload.Content == "" {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventSendMessage, Message: "content must not be empty"}})
		return
	}
	if utf8.RuneCountInString(payload.Content) > d.maxMessageLen {
		client.push(ServerEvent{
			Event: EventError,
			Data:  ErrorData{Event: EventSendMessage, Message: fmt.Sprintf("content exceeds %d characters", d.maxMessageLen)},
		})
		return
	}
	if !d.registry.InRoom(client.ID, payload.RoomId) {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventSendMessage, Message: "join the room before sending"}})
		return
	}

	// The sender's own connections receive the message too, so every
	// device renders the same timeline.
	d.hub.BroadcastToRoom(payload.RoomId, ServerEvent{
		Event: EventNewMessage,
		Data: NewMessageData{
			MessageId: uuid.New(),
			RoomId:    payload.RoomId,
			SenderId:  client.UserID,
			Content:   payload.Content,
			Timestamp: time.Now().UTC(),
		},
	}, uuid.Nil)
}

// handleTyping is fire-and-forget: malformed or unauthorized typing
// signals are dropped without an error reply.
func (d *Dispatcher) handleTyping(_ context.Context, client *Client, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil {
		return
	}
	if !d.registry.InRoom(client.ID, payload.RoomId) {
		return
	}

	d.hub.BroadcastToRoom(payload.RoomId, ServerEvent{
		Event: EventUserTyping,
		Data: UserTypingData{
			RoomId:   payload.RoomId,
			UserId:   client.UserID,
			IsTyping: payload.IsTyping,
		},
	}, client.ID)
}

func (d *Dispatcher) handleMarkRead(ctx context.Context, client *Client, data json.RawMessage) {
	var payload MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil || payload.MessageId == uuid.Nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventMarkRead, Message: "room_id and message_id are required"}})
		return
	}
	if !d.registry.InRoom(client.ID, payload.RoomId) {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventMarkRead, Message: "join the room before marking read"}})
		return
	}

	if err := d.conversations.AdvanceLastRead(ctx, payload.RoomId, client.UserID, payload.MessageId); err != nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventMarkRead, Message: "could not update read position"}})
		return
	}

	d.hub.BroadcastToRoom(payload.RoomId, ServerEvent{
		Event: EventMessageRead,
		Data: MessageReadData{
			RoomId:    payload.RoomId,
			UserId:    client.UserID,
			MessageId: payload.MessageId,
		},
	}, client.ID)
}

func (d *Dispatcher) handleGetOnlineCount(_ context.Context, client *Client, data json.RawMessage) {
	var payload OnlineCountPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == uuid.Nil {
		client.push(ServerEvent{Event: EventError, Data: ErrorData{Event: EventGetOnlineCount, Message: "room_id is required"}})
		return
	}

	client.push(ServerEvent{
		Event: EventOnlineCount,
		Data: OnlineCountData{
			RoomId: payload.RoomId,
			Count:  d.registry.OnlineUserCount(payload.RoomId),
		},
	})
}
