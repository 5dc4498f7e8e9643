package models

import "time"

// ShortLink is a single code-to-URL mapping. Soft-deleted rows stay in the
// store for history; DeletedAt set means the record behaves as absent on
// every read path.
type ShortLink struct {
	UUID           int        `json:"uuid,omitempty" db:"id"`
	Code           string     `json:"code" db:"code"`
	OriginalURL    string     `json:"original_url" db:"original_url"`
	OwnerID        string     `json:"-" db:"owner_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Password       *string    `json:"-" db:"password"`
	VisitCount     int64      `json:"visit_count" db:"visit_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty" db:"last_accessed_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

// Expired reports whether the link's expiry, if any, has passed at now.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Live reports whether the link is neither soft-deleted nor expired.
func (l *ShortLink) Live(now time.Time) bool {
	return l.DeletedAt == nil && !l.Expired(now)
}

const (
	TierHobby      = "hobby"
	TierEnterprise = "enterprise"
)

// User is the calling principal: only its identity and account tier matter
// to the engine.
type User struct {
	ID   string `db:"id"`
	Tier string `db:"tier"`
}
