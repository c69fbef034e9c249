package models

import "time"

// TwoFactorChallenge is a pending second-factor login. The challenge id is
// opaque; redeeming it after ExpiresAt fails and the row is removed either
// way.
type TwoFactorChallenge struct {
	ID        string
	UserID    string
	TenantID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
