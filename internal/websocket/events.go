package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Client -> server event names.
const (
	EventJoin           = "join"
	EventLeave          = "leave"
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventMarkRead       = "mark_read"
	EventGetOnlineCount = "get_online_count"
)

// Server -> client event names.
const (
	EventJoined      = "joined"
	EventLeft        = "left"
	EventNewMessage  = "new_message"
	EventUserTyping  = "user_typing"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventMessageRead = "message_read"
	EventOnlineCount = "online_count"
	EventError       = "error"
)

// ClientEvent is the envelope every inbound frame must carry.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerEvent is the envelope for every outbound frame.
type ServerEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type JoinPayload struct {
	RoomId uuid.UUID `json:"room_id"`
}

type LeavePayload struct {
	RoomId uuid.UUID `json:"room_id"`
}

type SendMessagePayload struct {
	RoomId  uuid.UUID `json:"room_id"`
	Content string    `json:"content"`
}

type TypingPayload struct {
	RoomId   uuid.UUID `json:"room_id"`
	IsTyping bool      `json:"is_typing"`
}

type MarkReadPayload struct {
	RoomId    uuid.UUID `json:"room_id"`
	MessageId uuid.UUID `json:"message_id"`
}

type OnlineCountPayload struct {
	RoomId uuid.UUID `json:"room_id"`
}

type RoomEventData struct {
	RoomId uuid.UUID `json:"room_id"`
	UserId uuid.UUID `json:"user_id,omitempty"`
}

type NewMessageData struct {
	MessageId uuid.UUID `json:"message_id"`
	RoomId    uuid.UUID `json:"room_id"`
	SenderId  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type UserTypingData struct {
	RoomId   uuid.UUID `json:"room_id"`
	UserId   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}

type MessageReadData struct {
	RoomId    uuid.UUID `json:"room_id"`
	UserId    uuid.UUID `json:"user_id"`
	MessageId uuid.UUID `json:"message_id"`
}

type OnlineCountData struct {
	RoomId uuid.UUID `json:"room_id"`
	Count  int       `json:"count"`
}

type ErrorData struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}
