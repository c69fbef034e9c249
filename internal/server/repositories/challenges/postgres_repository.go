package challenges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ch *models.TwoFactorChallenge) error {
	query := `
		INSERT INTO two_factor_challenges (id, user_id, tenant_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, ch.ID, ch.UserID, ch.TenantID, ch.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.TwoFactorChallenge, error) {
	query := `
		SELECT id, user_id, tenant_id, expires_at
		FROM two_factor_challenges
		WHERE id = $1
	`
	ch := &models.TwoFactorChallenge{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ch.ID, &ch.UserID, &ch.TenantID, &ch.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ch, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM two_factor_challenges
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
