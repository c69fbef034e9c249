package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// AuditRecorder appends attributed audit entries. Attribution always comes
// from token claims: the actor is the true signed-in principal, the
// impersonated identity rides along only while an impersonation is active.
type AuditRecorder struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
}

func NewAuditRecorder(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *AuditRecorder {
	return &AuditRecorder{db: db, rm: rm, log: log}
}

// identity resolves a principal id to a denormalized audit identity. A
// lookup failure degrades to the bare id so the entry is still written.
func (a *AuditRecorder) identity(ctx context.Context, tenantID, userID string) domain.AuditIdentity {
	p, err := a.rm.Principals(a.db).GetByID(ctx, tenantID, userID)
	if err != nil {
		return domain.AuditIdentity{UserID: userID, Username: userID, DisplayName: userID}
	}
	return domain.AuditIdentity{UserID: p.ID, Username: p.Username, DisplayName: p.DisplayName}
}

func (a *AuditRecorder) build(ctx context.Context, claims *auth.Claims, action, target string, metadata map[string]string, severity domain.AuditSeverity) *domain.AuditLogEntry {
	if severity == "" {
		severity = domain.SeverityInfo
	}
	e := &domain.AuditLogEntry{
		ID:           uuid.NewString(),
		Actor:        a.identity(ctx, claims.TenantID, claims.UserID),
		Action:       action,
		TargetEntity: target,
		Metadata:     metadata,
		Immutable:    true,
		Severity:     severity,
		Timestamp:    time.Now().UTC(),
	}
	if claims.Impersonating() {
		imp := a.identity(ctx, claims.TenantID, claims.ImpersonatedUserID)
		e.Impersonated = &imp
	}
	return e
}

// Record writes a server-originated entry for a gated mutation. A write
// failure is logged and swallowed so the mutation outcome stands.
func (a *AuditRecorder) Record(ctx context.Context, claims *auth.Claims, action, target string, metadata map[string]string, severity domain.AuditSeverity) {
	e := a.build(ctx, claims, action, target, metadata, severity)
	if err := a.rm.AuditLog(a.db).Append(ctx, claims.TenantID, e); err != nil {
		a.log.Error(ctx, "audit append failed", "action", action, "error", err)
	}
}

// Append writes a console-originated entry (POST /admin/audit) and returns
// it with server-side id, attribution, and timestamp filled in.
func (a *AuditRecorder) Append(ctx context.Context, claims *auth.Claims, req *api.AuditAppendRequest) (*domain.AuditLogEntry, error) {
	e := a.build(ctx, claims, req.Action, req.TargetEntity, req.Metadata, req.Severity)
	e.Immutable = req.Immutable
	if err := a.rm.AuditLog(a.db).Append(ctx, claims.TenantID, e); err != nil {
		return nil, err
	}
	return e, nil
}
