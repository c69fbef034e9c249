// Package auditlog stores the append-only audit trail. There is no update
// or delete operation on purpose.
package auditlog

import (
	"context"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type Repository interface {
	// Append inserts one entry. The caller supplies a fully attributed
	// entry; the repository never rewrites identities.
	Append(ctx context.Context, tenantID string, e *domain.AuditLogEntry) error

	// List returns the most recent entries, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]domain.AuditLogEntry, error)

	// CountSince returns the number of entries recorded after the given
	// timestamp, used as the monitoring backlog gauge.
	CountSince(ctx context.Context, tenantID string, since time.Time) (int, error)
}
