package tenantstate

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) GetLicense(ctx context.Context, tenantID string) (*domain.LicenseState, error) {
	query := `
		SELECT license_id, license_tier, license_status, license_expires_at, license_validated_at,
			license_override_active, license_override_tier, license_features
		FROM tenant_state
		WHERE tenant_id = $1
	`
	l := &domain.LicenseState{}
	var overrideTier string
	var features []byte
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&l.LicenseID, &l.Tier, &l.Status, &l.ExpiresAt, &l.LastValidatedAt,
		&l.OverrideActive, &overrideTier, &features)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	l.OverrideTier = domain.Tier(overrideTier)
	if len(features) > 0 {
		if err := json.Unmarshal(features, &l.Features); err != nil {
			return nil, fmt.Errorf("features unmarshal: %w", err)
		}
	}
	return l, nil
}

func (r *PostgresRepository) SetLicenseOverride(ctx context.Context, tenantID string, active bool, tier domain.Tier) error {
	query := `
		UPDATE tenant_state
		SET license_override_active = $2, license_override_tier = $3
		WHERE tenant_id = $1
	`
	return r.exec(ctx, query, tenantID, active, string(tier))
}

func (r *PostgresRepository) GetInfrastructure(ctx context.Context, tenantID string) (*domain.InfrastructureStatus, error) {
	query := `
		SELECT last_backup_at, last_backup_mode, last_restore_at, last_restore_dry_run_at, deletion_scheduled_for
		FROM tenant_state
		WHERE tenant_id = $1
	`
	s := &domain.InfrastructureStatus{}
	var mode string
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&s.LastBackupAt, &mode, &s.LastRestoreAt, &s.LastRestoreDryRunAt, &s.DeletionScheduledFor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.LastBackupMode = domain.BackupMode(mode)
	return s, nil
}

func (r *PostgresRepository) RecordBackup(ctx context.Context, tenantID string, at time.Time, mode domain.BackupMode) error {
	query := `
		UPDATE tenant_state
		SET last_backup_at = $2, last_backup_mode = $3
		WHERE tenant_id = $1
	`
	return r.exec(ctx, query, tenantID, at, string(mode))
}

func (r *PostgresRepository) RecordRestore(ctx context.Context, tenantID string, at time.Time, dryRun bool) error {
	if dryRun {
		return r.exec(ctx, `
			UPDATE tenant_state
			SET last_restore_dry_run_at = $2
			WHERE tenant_id = $1
		`, tenantID, at)
	}
	return r.exec(ctx, `
		UPDATE tenant_state
		SET last_restore_at = $2
		WHERE tenant_id = $1
	`, tenantID, at)
}

func (r *PostgresRepository) ScheduleDeletion(ctx context.Context, tenantID string, at time.Time) error {
	query := `
		UPDATE tenant_state
		SET deletion_scheduled_for = $2
		WHERE tenant_id = $1
	`
	return r.exec(ctx, query, tenantID, at)
}

func (r *PostgresRepository) CancelDeletion(ctx context.Context, tenantID string) error {
	query := `
		UPDATE tenant_state
		SET deletion_scheduled_for = NULL
		WHERE tenant_id = $1
	`
	return r.exec(ctx, query, tenantID)
}

func (r *PostgresRepository) GetMonitoring(ctx context.Context, tenantID string) (*domain.MonitoringSnapshot, error) {
	query := `
		SELECT monitoring
		FROM tenant_state
		WHERE tenant_id = $1
	`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(raw) == 0 {
		return nil, common.ErrorNotFound
	}
	snap := &domain.MonitoringSnapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("monitoring unmarshal: %w", err)
	}
	return snap, nil
}

func (r *PostgresRepository) SaveMonitoring(ctx context.Context, tenantID string, snap *domain.MonitoringSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("monitoring marshal: %w", err)
	}
	query := `
		UPDATE tenant_state
		SET monitoring = $2
		WHERE tenant_id = $1
	`
	return r.exec(ctx, query, tenantID, raw)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
