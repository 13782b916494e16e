package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByPairKey selects requests between a pair regardless of direction.
type ByPairKey struct {
	PairKey string
}

func (s ByPairKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pair_key = ?", s.PairKey)
}

// ByStatus filters by request status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// BySender filters by the original sender (directional checks).
type BySender struct {
	SenderID uuid.UUID
}

func (s BySender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_id = ?", s.SenderID)
}

// ByReceiver filters by the receiving party.
type ByReceiver struct {
	ReceiverID uuid.UUID
}

func (s ByReceiver) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("receiver_id = ?", s.ReceiverID)
}

// CooldownAfter keeps rows whose cooldown is still running at the given
// instant.
type CooldownAfter struct {
	Now time.Time
}

func (s CooldownAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cooldown_until IS NOT NULL AND cooldown_until > ?", s.Now)
}
