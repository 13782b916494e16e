package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationKind string

const (
	ConversationKindPrivate ConversationKind = "private"
	ConversationKindGroup   ConversationKind = "group"
)

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type Conversation struct {
	Id        uuid.UUID
	Kind      ConversationKind
	Title     *string // nil for private conversations
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

type Membership struct {
	Id                uuid.UUID
	ConversationId    uuid.UUID
	UserId            uuid.UUID
	Role              MemberRole
	JoinedAt          time.Time
	LastReadMessageId *uuid.UUID
}
