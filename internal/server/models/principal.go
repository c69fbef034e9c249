// Package models holds the authoritative store's persistence-level records.
package models

import (
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Principal is a directory principal row. PasswordHash is the argon2id PHC
// string and never leaves the server.
type Principal struct {
	ID               string
	TenantID         string
	Username         string
	DisplayName      string
	Email            string
	Role             domain.Role
	Tier             domain.Tier
	IsPremium        bool
	PasswordHash     string
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

// SessionInfo projects the principal onto the wire identity shape.
func (p *Principal) SessionInfo() domain.SessionInfo {
	return domain.SessionInfo{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		Tier:        p.Tier,
		IsPremium:   p.IsPremium,
	}
}
