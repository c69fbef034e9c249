package domain

import "time"

// BackupMode selects what a backup run covers.
type BackupMode string

const (
	BackupFull       BackupMode = "full"
	BackupConfigOnly BackupMode = "config_only"
)

// InfrastructureStatus is the single per-tenant row describing backup,
// restore, and deletion scheduling state. A scheduled deletion may be
// cancelled any time before it executes.
type InfrastructureStatus struct {
	LastBackupAt         *time.Time `json:"last_backup_at,omitempty"`
	LastBackupMode       BackupMode `json:"last_backup_mode,omitempty"`
	LastRestoreAt        *time.Time `json:"last_restore_at,omitempty"`
	LastRestoreDryRunAt  *time.Time `json:"last_restore_dry_run_at,omitempty"`
	DeletionScheduledFor *time.Time `json:"deletion_scheduled_for,omitempty"`
}

// MonitoringSnapshot is a read-mostly health summary, refreshed on demand.
type MonitoringSnapshot struct {
	LastUpdatedAt     time.Time `json:"last_updated_at"`
	DBConnection      string    `json:"db_connection"`
	SMTPStatus        string    `json:"smtp_status"`
	UptimeSeconds     int64     `json:"uptime_seconds"`
	CPUUtilization    float64   `json:"cpu_utilization"`
	MemoryUtilization float64   `json:"memory_utilization"`
	QueueBacklog      int       `json:"queue_backlog"`
}
