package configitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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

const itemColumns = `key, value, encrypted, masked, description, last_updated_at, last_updated_by_user_id, requires_step_up`

func scanItem(scan func(dest ...any) error) (*domain.ConfigItem, error) {
	c := &domain.ConfigItem{}
	if err := scan(&c.Key, &c.Value, &c.Encrypted, &c.Masked, &c.Description,
		&c.LastUpdatedAt, &c.LastUpdatedByUserID, &c.RequiresStepUp); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string) ([]domain.ConfigItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM config_items
		WHERE tenant_id = $1
		ORDER BY key
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []domain.ConfigItem
	for rows.Next() {
		c, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID, key string) (*domain.ConfigItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM config_items
		WHERE tenant_id = $1 AND key = $2
	`
	c, err := scanItem(r.db.QueryRowContext(ctx, query, tenantID, key).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenantID, key, value, byUserID string, at time.Time) error {
	query := `
		UPDATE config_items
		SET value = $3, last_updated_by_user_id = $4, last_updated_at = $5
		WHERE tenant_id = $1 AND key = $2
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, key, value, byUserID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
