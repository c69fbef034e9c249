package stepups

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

func (r *PostgresRepository) Upsert(ctx context.Context, v *models.StepUpVerification) error {
	query := `
		INSERT INTO step_up_verifications (user_id, action, verified_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET action = $2, verified_at = $3
	`
	if _, err := r.db.ExecContext(ctx, query, v.UserID, v.Action, v.VerifiedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*models.StepUpVerification, error) {
	query := `
		SELECT user_id, action, verified_at
		FROM step_up_verifications
		WHERE user_id = $1
	`
	v := &models.StepUpVerification{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&v.UserID, &v.Action, &v.VerifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	query := `
		DELETE FROM step_up_verifications
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
