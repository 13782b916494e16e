package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SenderId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiverId uuid.UUID `gorm:"type:uuid;not null;index"`
	// Direction-independent pair key. The partial unique index is the
	// source of truth for "at most one pending request per pair".
	PairKey        string     `gorm:"type:text;not null;uniqueIndex:uq_chat_requests_pending_pair,where:status = 'pending'"`
	Status         string     `gorm:"type:text;not null;index"`
	RejectedReason *string    `gorm:"type:text"`
	CooldownUntil  *time.Time `gorm:""`
	RespondedAt    *time.Time `gorm:""`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
}

func (ChatRequest) TableName() string {
	return "chat_requests"
}
