package model

import (
	"time"

	"github.com/google/uuid"
)

type Membership struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_memberships_conversation_user"`
	UserId            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_memberships_conversation_user;index"`
	Role              string     `gorm:"type:text;not null"`
	JoinedAt          time.Time  `gorm:"autoCreateTime"`
	LastReadMessageId *uuid.UUID `gorm:"type:uuid"`
}

func (Membership) TableName() string {
	return "memberships"
}
