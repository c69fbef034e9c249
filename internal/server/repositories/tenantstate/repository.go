// Package tenantstate stores the single per-tenant row carrying license,
// infrastructure, and monitoring state.
package tenantstate

import (
	"context"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type Repository interface {
	GetLicense(ctx context.Context, tenantID string) (*domain.LicenseState, error)

	// SetLicenseOverride activates or clears the tier override. The stored
	// subscription tier is untouched either way.
	SetLicenseOverride(ctx context.Context, tenantID string, active bool, tier domain.Tier) error

	GetInfrastructure(ctx context.Context, tenantID string) (*domain.InfrastructureStatus, error)

	RecordBackup(ctx context.Context, tenantID string, at time.Time, mode domain.BackupMode) error

	// RecordRestore stamps the restore timestamp; a dry run touches only the
	// dry-run column.
	RecordRestore(ctx context.Context, tenantID string, at time.Time, dryRun bool) error

	ScheduleDeletion(ctx context.Context, tenantID string, at time.Time) error

	CancelDeletion(ctx context.Context, tenantID string) error

	// GetMonitoring returns the last saved snapshot; common.ErrorNotFound
	// when no refresh has happened yet.
	GetMonitoring(ctx context.Context, tenantID string) (*domain.MonitoringSnapshot, error)

	SaveMonitoring(ctx context.Context, tenantID string, snap *domain.MonitoringSnapshot) error
}
