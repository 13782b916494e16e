package memory

import (
	"time"

	"chatlink-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Profile is the slice of identity the auth token carries. Issuance and
// the user directory live in a separate service; we only cache what the
// tokens tell us, so email delivery is best-effort for users who never
// authenticated against this instance.
type Profile struct {
	UserId uuid.UUID
	Email  string
	Name   string
}

type ProfileRepository struct {
	cache *cache.Cache
}

func NewProfileRepository() *ProfileRepository {
	// Tokens rotate well within a day; purge stale entries hourly
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &ProfileRepository{
		cache: c,
	}
}

func (r *ProfileRepository) Save(profile *Profile) {
	r.cache.Set(profile.UserId.String(), profile, cache.DefaultExpiration)
}

func (r *ProfileRepository) Get(userId uuid.UUID) (*Profile, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(*Profile), true
	}
	return nil, false
}

// Observe implements serverutils.ClaimsObserver: every verified token
// refreshes the cached profile.
func (r *ProfileRepository) Observe(claims *serverutils.TokenClaims) {
	email, _ := claims.Claims["email"].(string)
	name, _ := claims.Claims["name"].(string)
	if email == "" && name == "" {
		return
	}
	r.Save(&Profile{UserId: claims.UserID, Email: email, Name: name})
}
