package domain

import "time"

// AuditSeverity tags an audit entry with its review urgency.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "info"
	SeverityWarning  AuditSeverity = "warning"
	SeverityCritical AuditSeverity = "critical"
)

// AuditIdentity is a denormalized principal reference embedded in audit
// entries, so entries stay readable after the principal changes or is
// removed.
type AuditIdentity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// AuditLogEntry records one sensitive operation. Actor always holds the true
// signed-in principal; Impersonated is set only while an impersonation was
// active and never replaces the actor. Entries are append-only: the
// Immutable flag documents the contract, enforcement belongs to the store.
type AuditLogEntry struct {
	ID           string            `json:"id"`
	Actor        AuditIdentity     `json:"actor"`
	Impersonated *AuditIdentity    `json:"impersonated,omitempty"`
	Action       string            `json:"action"`
	TargetEntity string            `json:"target_entity"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Immutable    bool              `json:"immutable"`
	Severity     AuditSeverity     `json:"severity"`
	Timestamp    time.Time         `json:"timestamp"`
}
