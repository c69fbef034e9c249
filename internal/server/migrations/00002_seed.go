package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/owncent-admin/internal/server/passwords"
)

func init() {
	goose.AddMigrationContext(upSeedDemo, downSeedDemo)
}

// demoPassword is shared by every seeded principal. The seed exists so a
// fresh instance is immediately usable from the console.
const demoPassword = "demo-password-123"

const demoTenant = "tenant-demo"

type seedPrincipal struct {
	id          string
	username    string
	displayName string
	email       string
	role        string
	tier        string
	isPremium   bool
	twoFactor   bool
}

var seedPrincipals = []seedPrincipal{
	{"u-owner", "olga.owner", "Olga Ozola", "olga@owncent.test", "owner", "premium", true, true},
	{"u-manager", "maris.manager", "Maris Berzins", "maris@owncent.test", "manager", "advanced", false, false},
	{"u-user", "uldis.user", "Uldis Kalns", "uldis@owncent.test", "user", "free", false, false},
	{"u-family", "fanija.family", "Fanija Liepa", "fanija@owncent.test", "family", "family", true, false},
	{"u-readonly", "rita.readonly", "Rita Vitola", "rita@owncent.test", "readonly", "free", false, false},
}

func upSeedDemo(ctx context.Context, tx *sql.Tx) error {
	for _, p := range seedPrincipals {
		hash, err := passwords.Hash(demoPassword)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO principals (id, tenant_id, username, display_name, email, role, tier, is_premium, password_hash, two_factor_enabled)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.id, demoTenant, p.username, p.displayName, p.email, p.role, p.tier, p.isPremium, hash, p.twoFactor); err != nil {
			return err
		}
	}

	flags := []struct {
		key           string
		description   string
		value         bool
		overridableBy string
		requiredTier  string
	}{
		{"debt_optimizer_enabled", "Debt payoff optimizer", true, "owner,manager", "premium"},
		{"strategy_simulator_enabled", "Investment strategy simulator", true, "owner,manager", "advanced"},
		{"bank_api_enabled", "Live bank API connections", false, "owner", "premium"},
		{"family_features_enabled", "Shared family budgets", true, "owner", "family"},
		{"reports_enabled", "Scheduled PDF reports", true, "owner,manager", "free"},
	}
	for _, f := range flags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO feature_flags (tenant_id, key, description, value, overridable_by, required_tier)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, demoTenant, f.key, f.description, f.value, f.overridableBy, f.requiredTier); err != nil {
			return err
		}
	}

	configItems := []struct {
		key            string
		value          string
		encrypted      bool
		masked         bool
		description    string
		requiresStepUp bool
	}{
		{"smtp.host", "smtp.owncent.test", false, false, "Outgoing mail server", false},
		{"smtp.port", "587", false, false, "Outgoing mail port", false},
		{"smtp.password", "demo-smtp-secret", true, true, "Outgoing mail credential", true},
		{"backup.retention_days", "30", false, false, "How long backup objects are kept", false},
		{"support.email", "support@owncent.test", false, false, "Address shown on error pages", false},
	}
	for _, c := range configItems {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO config_items (tenant_id, key, value, encrypted, masked, description, requires_step_up)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, demoTenant, c.key, c.value, c.encrypted, c.masked, c.description, c.requiresStepUp); err != nil {
			return err
		}
	}

	expires := time.Now().AddDate(1, 0, 0)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tenant_state (tenant_id, license_id, license_tier, license_status, license_expires_at, license_validated_at, license_features)
		VALUES ($1, $2, $3, $4, $5, now(), $6)
	`, demoTenant, "lic-demo-001", "premium", "valid", expires, `{"bank_api": true, "reports": true}`); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (id, tenant_id, actor_user_id, actor_username, actor_display_name, action, target_entity, severity)
		VALUES ('seed-0001', $1, 'system', 'system', 'System', 'tenant.provisioned', 'tenant:tenant-demo', 'info')
	`, demoTenant)
	return err
}

func downSeedDemo(ctx context.Context, tx *sql.Tx) error {
	for _, q := range []string{
		`DELETE FROM audit_log WHERE tenant_id = $1`,
		`DELETE FROM tenant_state WHERE tenant_id = $1`,
		`DELETE FROM config_items WHERE tenant_id = $1`,
		`DELETE FROM feature_flags WHERE tenant_id = $1`,
		`DELETE FROM principals WHERE tenant_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, demoTenant); err != nil {
			return err
		}
	}
	return nil
}
