package domain

// BootstrapSnapshot is the full administrative state aggregate served by
// GET /admin/bootstrap in a single round trip. It is internally consistent:
// a point-in-time snapshot, not a stream of partial updates.
type BootstrapSnapshot struct {
	Users          []SessionInfo        `json:"users"`
	FeatureFlags   []FeatureFlagRecord  `json:"feature_flags"`
	License        LicenseState         `json:"license"`
	ConfigItems    []ConfigItem         `json:"config_items"`
	Monitoring     MonitoringSnapshot   `json:"monitoring"`
	Infrastructure InfrastructureStatus `json:"infrastructure"`
	AuditLogs      []AuditLogEntry      `json:"audit_logs"`
}
