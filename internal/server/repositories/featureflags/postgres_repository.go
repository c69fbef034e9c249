package featureflags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const flagColumns = `key, description, value, overridable_by, required_tier, last_changed_at, overridden_by_user_id, notes`

// overridable_by is stored as a comma-separated role list.
func parseRoles(s string) []domain.Role {
	var roles []domain.Role
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if r, err := domain.ParseRole(part); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

func scanFlag(scan func(dest ...any) error) (*domain.FeatureFlagRecord, error) {
	f := &domain.FeatureFlagRecord{}
	var overridableBy string
	if err := scan(&f.Key, &f.Description, &f.Value, &overridableBy, &f.RequiredTier,
		&f.LastChangedAt, &f.OverriddenByUserID, &f.Notes); err != nil {
		return nil, err
	}
	f.OverridableBy = parseRoles(overridableBy)
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string) ([]domain.FeatureFlagRecord, error) {
	query := `
		SELECT ` + flagColumns + `
		FROM feature_flags
		WHERE tenant_id = $1
		ORDER BY key
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []domain.FeatureFlagRecord
	for rows.Next() {
		f, err := scanFlag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID, key string) (*domain.FeatureFlagRecord, error) {
	query := `
		SELECT ` + flagColumns + `
		FROM feature_flags
		WHERE tenant_id = $1 AND key = $2
	`
	f, err := scanFlag(r.db.QueryRowContext(ctx, query, tenantID, key).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenantID, key string, value bool, notes, byUserID string, at time.Time) error {
	query := `
		UPDATE feature_flags
		SET value = $3, notes = $4, overridden_by_user_id = $5, last_changed_at = $6
		WHERE tenant_id = $1 AND key = $2
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, key, value, notes, byUserID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
