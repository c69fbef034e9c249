package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/authz"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Every mutation below ends with a single audit entry, written by the store
// while it handles the request. The console never appends its own copy.

// UpdateFeatureFlag flips a feature flag after gating on the true actor's
// role against the flag's OverridableBy set.
func (c *Console) UpdateFeatureFlag(ctx context.Context, key string, value bool, reason string) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}

	flag, ok := c.state.FeatureFlag(key)
	if !ok {
		return fmt.Errorf("%w: feature flag %q", common.ErrUnknownKey, key)
	}
	if d := authz.CanMutateFlag(flag, identity.Role, impersonating); !d.Allowed {
		return forbidden(d.Reason)
	}

	updated, err := c.client.PatchFeatureFlag(ctx, key, api.FeatureFlagPatchRequest{Value: value, Reason: reason})
	if err != nil {
		return err
	}
	c.state.SetFeatureFlag(updated)
	return nil
}

// UpdateConfigItem edits one configuration entry. Owner-only; step-up gated
// items require a fresh verification; masked items demand a full replacement
// value, an empty value is rejected rather than treated as "keep current".
func (c *Console) UpdateConfigItem(ctx context.Context, key, value, note string) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}

	item, ok := c.state.ConfigItem(key)
	if !ok {
		return fmt.Errorf("%w: config item %q", common.ErrUnknownKey, key)
	}
	if d := authz.CanModifyConfig(identity.Role, impersonating); !d.Allowed {
		return forbidden(d.Reason)
	}
	if item.RequiresStepUp && !c.IsStepUpValid() {
		return common.ErrStepUpStale
	}
	if item.Masked && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: masked items require a full replacement value", common.ErrorValidation)
	}

	updated, err := c.client.PatchConfigItem(ctx, key, api.ConfigItemPatchRequest{Value: value, Note: note})
	if err != nil {
		return err
	}
	c.state.SetConfigItem(updated)
	return nil
}

// TriggerBackup starts a backup run in the given mode. Admin roles may run
// backups; never while impersonating.
func (c *Console) TriggerBackup(ctx context.Context, mode domain.BackupMode) (api.BackupResponse, error) {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return api.BackupResponse{}, err
	}
	if d := authz.CanAccessAdmin(identity.Role); !d.Allowed {
		return api.BackupResponse{}, forbidden(d.Reason)
	}
	if impersonating {
		return api.BackupResponse{}, common.ErrImpersonationRequired
	}

	resp, err := c.client.TriggerBackup(ctx, mode)
	if err != nil {
		return api.BackupResponse{}, err
	}
	c.state.SetInfrastructure(resp.Status)
	return resp, nil
}

// TriggerRestore restores from a named backup. Owner-only, step-up gated. A
// dry run validates the backup without touching data and only records the
// dry-run timestamp.
func (c *Console) TriggerRestore(ctx context.Context, backupID string, dryRun bool, note string) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}
	if d := authz.CanRunCriticalOps(identity.Role, impersonating); !d.Allowed {
		return forbidden(d.Reason)
	}
	if !c.IsStepUpValid() {
		return common.ErrStepUpStale
	}
	if strings.TrimSpace(backupID) == "" {
		return fmt.Errorf("%w: backup id is required", common.ErrorValidation)
	}

	resp, err := c.client.TriggerRestore(ctx, api.RestoreRequest{DryRun: dryRun, BackupID: backupID, Note: note})
	if err != nil {
		return err
	}
	c.state.SetInfrastructure(resp.Status)
	return nil
}

// ScheduleDeletion schedules full tenant deletion. Owner-only, step-up
// gated, and the confirmation phrase must be typed verbatim (comparison is
// case-insensitive and ignores surrounding whitespace).
func (c *Console) ScheduleDeletion(ctx context.Context, confirmationText string) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}
	if d := authz.CanRunCriticalOps(identity.Role, impersonating); !d.Allowed {
		return forbidden(d.Reason)
	}
	if !c.IsStepUpValid() {
		return common.ErrStepUpStale
	}

	typed := strings.TrimSpace(confirmationText)
	if !strings.EqualFold(typed, common.DeletionConfirmationPhrase) {
		return fmt.Errorf("%w: confirmation text mismatch", common.ErrorValidation)
	}

	status, err := c.client.ScheduleDeletion(ctx, api.DeletionScheduleRequest{
		ConfirmationText: typed,
		RequestedAt:      c.now().UTC(),
	})
	if err != nil {
		return err
	}
	c.state.SetInfrastructure(status)
	return nil
}

// CancelDeletion cancels a scheduled deletion. Moving away from the
// dangerous state needs nothing beyond admin access: no step-up, and any
// admin role may do it.
func (c *Console) CancelDeletion(ctx context.Context) error {
	identity, _, err := c.requireActor()
	if err != nil {
		return err
	}
	if d := authz.CanAccessAdmin(identity.Role); !d.Allowed {
		return forbidden(d.Reason)
	}

	status, err := c.client.CancelDeletion(ctx)
	if err != nil {
		return err
	}
	c.state.SetInfrastructure(status)
	return nil
}

// OverrideLicenseTier sets or clears the support escape hatch that gates
// features by the override tier instead of the licensed one. Owner-only,
// step-up gated. A nil tier clears the override.
func (c *Console) OverrideLicenseTier(ctx context.Context, tier *domain.Tier) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}
	if d := authz.CanRunCriticalOps(identity.Role, impersonating); !d.Allowed {
		return forbidden(d.Reason)
	}
	if !c.IsStepUpValid() {
		return common.ErrStepUpStale
	}
	if tier != nil && !tier.Valid() {
		return fmt.Errorf("%w: unknown tier %q", common.ErrorValidation, string(*tier))
	}

	lic, err := c.client.OverrideLicense(ctx, tier)
	if err != nil {
		return err
	}
	c.state.SetLicense(lic)
	return nil
}

// RefreshMonitoring pulls a fresh health snapshot on demand.
func (c *Console) RefreshMonitoring(ctx context.Context) (domain.MonitoringSnapshot, error) {
	identity, _, err := c.requireActor()
	if err != nil {
		return domain.MonitoringSnapshot{}, err
	}
	if d := authz.CanAccessAdmin(identity.Role); !d.Allowed {
		return domain.MonitoringSnapshot{}, forbidden(d.Reason)
	}

	snap, err := c.client.RefreshMonitoring(ctx)
	if err != nil {
		return domain.MonitoringSnapshot{}, err
	}
	c.state.SetMonitoring(snap)
	return snap, nil
}

// FeatureAvailable reports whether the effective (possibly impersonated)
// session sees the feature behind key right now.
func (c *Console) FeatureAvailable(key string) bool {
	flag, ok := c.state.FeatureFlag(key)
	if !ok {
		return false
	}
	effective, ok := c.state.EffectiveSession()
	if !ok {
		return false
	}
	return authz.FeatureAvailable(flag, c.state.License(), effective)
}
