package domain

import "time"

// LicenseStatus is the validation state of a tenant license.
type LicenseStatus string

const (
	LicenseValid    LicenseStatus = "valid"
	LicenseExpiring LicenseStatus = "expiring"
	LicenseExpired  LicenseStatus = "expired"
)

// LicenseState describes the tenant's subscription license. When
// OverrideActive is true with a non-empty OverrideTier, the effective tier
// used for feature gating is the override, irrespective of Tier. Overriding
// is owner-only and step-up gated.
type LicenseState struct {
	LicenseID       string          `json:"license_id"`
	Tier            Tier            `json:"tier"`
	Status          LicenseStatus   `json:"status"`
	ExpiresAt       time.Time       `json:"expires_at"`
	LastValidatedAt time.Time       `json:"last_validated_at"`
	OverrideActive  bool            `json:"override_active"`
	OverrideTier    Tier            `json:"override_tier,omitempty"`
	Features        map[string]bool `json:"features"`
}

// FeatureDisabled reports whether the license feature sub-map explicitly
// disables the capability behind key. An absent key means "not disabled".
func (l LicenseState) FeatureDisabled(key string) bool {
	v, ok := l.Features[key]
	return ok && !v
}
