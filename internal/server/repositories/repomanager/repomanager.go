// Package repomanager vends PostgreSQL-backed repositories bound to a DBTX
// and runs schema migrations via goose.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/configitems"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/featureflags"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/principals"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/stepups"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/tenantstate"
)

// RepositoryManager hands out repositories bound to either the shared pool
// or an open transaction, so services choose the transactional scope.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Principals(db dbx.DBTX) principals.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Challenges(db dbx.DBTX) challenges.Repository
	StepUps(db dbx.DBTX) stepups.Repository
	FeatureFlags(db dbx.DBTX) featureflags.Repository
	ConfigItems(db dbx.DBTX) configitems.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
	TenantState(db dbx.DBTX) tenantstate.Repository
}
