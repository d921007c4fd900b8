package domain

import "time"

// LoginSession represents the authenticated storefront session established for
// a freshly registered shopper.
type LoginSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActive reports whether the session is still valid at the supplied moment.
func (s LoginSession) IsActive(at time.Time) bool {
	return s.ExpiresAt.After(at)
}
