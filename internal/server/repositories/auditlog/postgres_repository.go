package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, tenantID string, e *domain.AuditLogEntry) error {
	var metadata []byte
	if len(e.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("metadata marshal: %w", err)
		}
	}

	var impID, impUsername, impDisplayName sql.NullString
	if e.Impersonated != nil {
		impID = sql.NullString{String: e.Impersonated.UserID, Valid: true}
		impUsername = sql.NullString{String: e.Impersonated.Username, Valid: true}
		impDisplayName = sql.NullString{String: e.Impersonated.DisplayName, Valid: true}
	}

	query := `
		INSERT INTO audit_log (id, tenant_id, actor_user_id, actor_username, actor_display_name,
			impersonated_user_id, impersonated_username, impersonated_display_name,
			action, target_entity, metadata, immutable, severity, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if _, err := r.db.ExecContext(ctx, query,
		e.ID, tenantID, e.Actor.UserID, e.Actor.Username, e.Actor.DisplayName,
		impID, impUsername, impDisplayName,
		e.Action, e.TargetEntity, metadata, e.Immutable, e.Severity, e.Timestamp); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string, limit int) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT id, actor_user_id, actor_username, actor_display_name,
			impersonated_user_id, impersonated_username, impersonated_display_name,
			action, target_entity, metadata, immutable, severity, ts
		FROM audit_log
		WHERE tenant_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var e domain.AuditLogEntry
		var impID, impUsername, impDisplayName sql.NullString
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.Actor.UserID, &e.Actor.Username, &e.Actor.DisplayName,
			&impID, &impUsername, &impDisplayName,
			&e.Action, &e.TargetEntity, &metadata, &e.Immutable, &e.Severity, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if impID.Valid {
			e.Impersonated = &domain.AuditIdentity{
				UserID:      impID.String,
				Username:    impUsername.String,
				DisplayName: impDisplayName.String,
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("metadata unmarshal: %w", err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM audit_log
		WHERE tenant_id = $1 AND ts > $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, tenantID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
