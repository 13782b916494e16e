package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IPresenceService tracks whether a user was seen recently on any
// connection. Volatile; a restart just means everyone looks offline
// until they reconnect.
type IPresenceService interface {
	Touch(userId uuid.UUID)
	IsOnline(userId uuid.UUID) bool
}

type presenceService struct {
	cache *cache.Cache
}

func NewPresenceService() IPresenceService {
	// Entries expire after 2 minutes without a touch; purge sweep every 5.
	c := cache.New(2*time.Minute, 5*time.Minute)
	return &presenceService{cache: c}
}

func (s *presenceService) Touch(userId uuid.UUID) {
	s.cache.Set(userId.String(), time.Now(), cache.DefaultExpiration)
}

func (s *presenceService) IsOnline(userId uuid.UUID) bool {
	_, found := s.cache.Get(userId.String())
	return found
}
