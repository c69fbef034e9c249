package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/server/migrations"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/configitems"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/featureflags"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/principals"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/stepups"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/tenantstate"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Principals(db dbx.DBTX) principals.Repository {
	return principals.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Challenges(db dbx.DBTX) challenges.Repository {
	return challenges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) StepUps(db dbx.DBTX) stepups.Repository {
	return stepups.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) FeatureFlags(db dbx.DBTX) featureflags.Repository {
	return featureflags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ConfigItems(db dbx.DBTX) configitems.Repository {
	return configitems.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditLog(db dbx.DBTX) auditlog.Repository {
	return auditlog.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TenantState(db dbx.DBTX) tenantstate.Repository {
	return tenantstate.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations points goose at the embedded migrations and applies them.
// The demo seed is a registered Go migration and runs as part of the same
// sequence.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
