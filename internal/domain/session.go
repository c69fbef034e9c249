package domain

import "time"

// SessionInfo identifies a directory principal. It is created by the session
// resolver from the authoritative store, immutable per request, and
// superseded wholesale on re-resolution (login, impersonation start/stop,
// logout).
type SessionInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Tier        Tier   `json:"tier"`
	IsPremium   bool   `json:"is_premium"`
}

// ImpersonationState exists only while an owner has an active impersonation;
// at most one per session. All actions performed while it is active are
// attributed to the true actor in the audit trail.
type ImpersonationState struct {
	Target    SessionInfo `json:"target"`
	Reason    string      `json:"reason,omitempty"`
	StartedAt time.Time   `json:"started_at"`
}
