package services

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// AppendAuditLog records a console-originated event best-effort: a failed
// append is logged and swallowed, it never blocks or undoes the operation
// itself. Attribution (true actor plus impersonated identity, if any) is
// stamped by the store from the access token in use at call time.
//
// Gated mutations are NOT appended here: the store writes their audit entry
// while handling the mutation, so calling both sides would duplicate it.
func (c *Console) AppendAuditLog(ctx context.Context, action, targetEntity string, metadata map[string]string, severity domain.AuditSeverity) {
	if _, ok := c.state.Identity(); !ok {
		return
	}
	if severity == "" {
		severity = domain.SeverityInfo
	}

	entry, err := c.client.AppendAudit(ctx, api.AuditAppendRequest{
		Action:       action,
		TargetEntity: targetEntity,
		Metadata:     metadata,
		Severity:     severity,
		Immutable:    true,
	})
	if err != nil {
		c.log.Warn(ctx, "audit append failed", "action", action, "target", targetEntity, "error", err)
		return
	}

	c.state.PrependAudit(entry)
}
