package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/authz"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// deletionGracePeriod separates scheduling a tenant deletion from its
// execution, leaving room to cancel.
const deletionGracePeriod = 72 * time.Hour

const bootstrapAuditLimit = 50

// AdminService serves the bootstrap aggregate and executes the gated
// administrative mutations. It shares the authz predicates with the console,
// so both sides enforce identical rules; the server's verdict is the one
// that counts.
type AdminService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	cfg    *config.Config
	stepup *StepUpService
	audit  *AuditRecorder
	log    logging.Logger
}

func NewAdminService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, stepup *StepUpService, audit *AuditRecorder, log logging.Logger) *AdminService {
	return &AdminService{db: db, rm: rm, cfg: cfg, stepup: stepup, audit: audit, log: log}
}

func forbidden(d authz.Decision) error {
	return fmt.Errorf("%w: %s", common.ErrorForbidden, d.Reason)
}

// Bootstrap assembles the full administrative state aggregate in one shot.
// Config values are redacted before they leave the service.
func (s *AdminService) Bootstrap(ctx context.Context, tenantID string) (*domain.BootstrapSnapshot, error) {
	snap := &domain.BootstrapSnapshot{}

	principals, err := s.rm.Principals(s.db).List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, p := range principals {
		snap.Users = append(snap.Users, p.SessionInfo())
	}

	if snap.FeatureFlags, err = s.rm.FeatureFlags(s.db).List(ctx, tenantID); err != nil {
		return nil, err
	}

	license, err := s.rm.TenantState(s.db).GetLicense(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	snap.License = *license

	items, err := s.rm.ConfigItems(s.db).List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		snap.ConfigItems = append(snap.ConfigItems, item.Redacted())
	}

	monitoring, err := s.rm.TenantState(s.db).GetMonitoring(ctx, tenantID)
	switch {
	case err == nil:
		snap.Monitoring = *monitoring
	case errors.Is(err, common.ErrorNotFound):
		// no refresh yet, serve the zero snapshot
	default:
		return nil, err
	}

	infra, err := s.rm.TenantState(s.db).GetInfrastructure(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	snap.Infrastructure = *infra

	if snap.AuditLogs, err = s.rm.AuditLog(s.db).List(ctx, tenantID, bootstrapAuditLimit); err != nil {
		return nil, err
	}

	return snap, nil
}

// UpdateFeatureFlag re-validates the mutation against the flag's own
// overridable-by set and writes the change with attribution.
func (s *AdminService) UpdateFeatureFlag(ctx context.Context, claims *auth.Claims, key string, value bool, reason string) (*domain.FeatureFlagRecord, error) {
	flag, err := s.rm.FeatureFlags(s.db).Get(ctx, claims.TenantID, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownKey, key)
		}
		return nil, err
	}

	if d := authz.CanMutateFlag(*flag, claims.Role, claims.Impersonating()); !d.Allowed {
		return nil, forbidden(d)
	}

	now := time.Now().UTC()
	if err := s.rm.FeatureFlags(s.db).Update(ctx, claims.TenantID, key, value, reason, claims.UserID, now); err != nil {
		return nil, err
	}

	flag.Value = value
	flag.Notes = reason
	flag.OverriddenByUserID = claims.UserID
	flag.LastChangedAt = now

	s.audit.Record(ctx, claims, "feature_flag.update", "feature_flag:"+key, map[string]string{
		"value":  strconv.FormatBool(value),
		"reason": reason,
	}, domain.SeverityInfo)

	return flag, nil
}

// UpdateConfigItem enforces the owner/no-impersonation rule, per-item
// step-up freshness, and the masked-value contract: a blank replacement for
// a masked item never means "keep current".
func (s *AdminService) UpdateConfigItem(ctx context.Context, claims *auth.Claims, key, value, note string) (*domain.ConfigItem, error) {
	item, err := s.rm.ConfigItems(s.db).Get(ctx, claims.TenantID, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownKey, key)
		}
		return nil, err
	}

	if d := authz.CanModifyConfig(claims.Role, claims.Impersonating()); !d.Allowed {
		return nil, forbidden(d)
	}
	if item.RequiresStepUp {
		if err := s.stepup.RequireFresh(ctx, claims.UserID); err != nil {
			return nil, err
		}
	}
	if item.Masked && strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: masked item requires a full replacement value", common.ErrorValidation)
	}

	now := time.Now().UTC()
	if err := s.rm.ConfigItems(s.db).Update(ctx, claims.TenantID, key, value, claims.UserID, now); err != nil {
		return nil, err
	}

	item.Value = value
	item.LastUpdatedAt = now
	item.LastUpdatedByUserID = claims.UserID

	audited := value
	if item.Masked {
		audited = domain.MaskValue(value)
	}
	metadata := map[string]string{"value": audited}
	if note != "" {
		metadata["note"] = note
	}
	s.audit.Record(ctx, claims, "config.update", "config:"+key, metadata, domain.SeverityWarning)

	redacted := item.Redacted()
	return &redacted, nil
}

// OverrideLicense sets or clears the tier override. Clearing restores the
// stored subscription tier for feature gating.
func (s *AdminService) OverrideLicense(ctx context.Context, claims *auth.Claims, tier *domain.Tier) (*domain.LicenseState, error) {
	if d := authz.CanRunCriticalOps(claims.Role, claims.Impersonating()); !d.Allowed {
		return nil, forbidden(d)
	}
	if err := s.stepup.RequireFresh(ctx, claims.UserID); err != nil {
		return nil, err
	}

	var overrideTier domain.Tier
	metadata := map[string]string{"override": "cleared"}
	if tier != nil {
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: unknown tier %q", common.ErrorValidation, *tier)
		}
		overrideTier = *tier
		metadata["override"] = tier.String()
	}

	if err := s.rm.TenantState(s.db).SetLicenseOverride(ctx, claims.TenantID, tier != nil, overrideTier); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, claims, "license.override", "license", metadata, domain.SeverityCritical)

	return s.rm.TenantState(s.db).GetLicense(ctx, claims.TenantID)
}

// ScheduleDeletion requires the typed confirmation phrase on top of the
// owner/step-up gate; both frictions apply simultaneously. The deletion
// executes after a grace period and can be cancelled until then.
func (s *AdminService) ScheduleDeletion(ctx context.Context, claims *auth.Claims, confirmation string, requestedAt time.Time) (*domain.InfrastructureStatus, error) {
	if d := authz.CanRunCriticalOps(claims.Role, claims.Impersonating()); !d.Allowed {
		return nil, forbidden(d)
	}
	if err := s.stepup.RequireFresh(ctx, claims.UserID); err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(confirmation), common.DeletionConfirmationPhrase) {
		return nil, fmt.Errorf("%w: confirmation phrase does not match", common.ErrorValidation)
	}

	if requestedAt.IsZero() {
		requestedAt = time.Now().UTC()
	}
	scheduledFor := requestedAt.Add(deletionGracePeriod)

	if err := s.rm.TenantState(s.db).ScheduleDeletion(ctx, claims.TenantID, scheduledFor); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, claims, "deletion.schedule", "tenant:"+claims.TenantID, map[string]string{
		"scheduled_for": scheduledFor.Format(time.RFC3339),
	}, domain.SeverityCritical)

	return s.rm.TenantState(s.db).GetInfrastructure(ctx, claims.TenantID)
}

// CancelDeletion is reversible and low-risk: admin access suffices, no
// step-up.
func (s *AdminService) CancelDeletion(ctx context.Context, claims *auth.Claims) (*domain.InfrastructureStatus, error) {
	if d := authz.CanAccessAdmin(claims.Role); !d.Allowed {
		return nil, forbidden(d)
	}

	if err := s.rm.TenantState(s.db).CancelDeletion(ctx, claims.TenantID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, claims, "deletion.cancel", "tenant:"+claims.TenantID, nil, domain.SeverityInfo)

	return s.rm.TenantState(s.db).GetInfrastructure(ctx, claims.TenantID)
}
