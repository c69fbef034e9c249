package principals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
)

const principalColumns = `id, tenant_id, username, display_name, email, role, tier, is_premium, password_hash, two_factor_enabled, created_at`

// PostgresRepository reads principals over dbx.DBTX (satisfied by *sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPrincipal(row *sql.Row) (*models.Principal, error) {
	p := &models.Principal{}
	err := row.Scan(&p.ID, &p.TenantID, &p.Username, &p.DisplayName, &p.Email,
		&p.Role, &p.Tier, &p.IsPremium, &p.PasswordHash, &p.TwoFactorEnabled, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, tenantID, username string) (*models.Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE tenant_id = $1 AND username = $2
	`
	return scanPrincipal(r.db.QueryRowContext(ctx, query, tenantID, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE tenant_id = $1 AND id = $2
	`
	return scanPrincipal(r.db.QueryRowContext(ctx, query, tenantID, id))
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string) ([]*models.Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE tenant_id = $1
		ORDER BY username
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Principal
	for rows.Next() {
		p := &models.Principal{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Username, &p.DisplayName, &p.Email,
			&p.Role, &p.Tier, &p.IsPremium, &p.PasswordHash, &p.TwoFactorEnabled, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
