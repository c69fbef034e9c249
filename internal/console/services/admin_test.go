package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

func TestUpdateFeatureFlag_Success(t *testing.T) {
	fc := &fakeClient{
		patchFlagResp: domain.FeatureFlagRecord{
			Key: domain.FlagDebtOptimizer, Value: false,
			RequiredTier:       domain.TierPremium,
			OverridableBy:      []domain.Role{domain.RoleOwner, domain.RoleManager},
			OverriddenByUserID: "u-manager",
		},
	}
	f := newFixture(fc)
	f.signedInAs(managerIdentity, nil)

	require.NoError(t, f.console.UpdateFeatureFlag(context.Background(), domain.FlagDebtOptimizer, false, "rollout pause"))

	assert.Equal(t, domain.FlagDebtOptimizer, fc.lastFlagKey)
	assert.False(t, fc.lastFlagPatch.Value)

	flag, ok := f.state.FeatureFlag(domain.FlagDebtOptimizer)
	require.True(t, ok)
	assert.False(t, flag.Value, "cache reflects the store's response")
	assert.Equal(t, "u-manager", flag.OverriddenByUserID)

	assert.Zero(t, fc.callCount("AppendAudit"),
		"the store writes the audit entry for the mutation; a console append would duplicate it")
}

func TestUpdateFeatureFlag_UnknownKey(t *testing.T) {
	f := newFixture(&fakeClient{})
	f.signedInAs(ownerIdentity, nil)

	err := f.console.UpdateFeatureFlag(context.Background(), "made_up_flag", true, "")
	require.True(t, errors.Is(err, common.ErrUnknownKey))
}

func TestUpdateFeatureFlag_RoleNotInOverridableBy(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(managerIdentity, nil)

	// reports_enabled is owner-only in the fixture.
	err := f.console.UpdateFeatureFlag(context.Background(), domain.FlagReports, false, "")
	require.True(t, errors.Is(err, common.ErrorForbidden))
	assert.Zero(t, fc.callCount("PatchFeatureFlag"))
}

func TestUpdateFeatureFlag_DeniedDuringImpersonation(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, &domain.ImpersonationState{Target: freeUserIdentity})

	err := f.console.UpdateFeatureFlag(context.Background(), domain.FlagDebtOptimizer, false, "")
	require.True(t, errors.Is(err, common.ErrorForbidden),
		"even the owner may not mutate flags while impersonating")
	assert.Zero(t, fc.callCount("PatchFeatureFlag"))
}

func TestUpdateConfigItem_Success(t *testing.T) {
	fc := &fakeClient{
		patchConfigResp: domain.ConfigItem{Key: "smtp.host", Value: "mail2.owncent.test"},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)

	require.NoError(t, f.console.UpdateConfigItem(context.Background(), "smtp.host", "mail2.owncent.test", "migration"))

	item, ok := f.state.ConfigItem("smtp.host")
	require.True(t, ok)
	assert.Equal(t, "mail2.owncent.test", item.Value)
}

func TestUpdateConfigItem_OwnerOnly(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(managerIdentity, nil)

	err := f.console.UpdateConfigItem(context.Background(), "smtp.host", "x", "")
	require.True(t, errors.Is(err, common.ErrorForbidden))
	assert.Zero(t, fc.callCount("PatchConfigItem"))
}

func TestUpdateConfigItem_StepUpGated(t *testing.T) {
	fc := &fakeClient{patchConfigResp: domain.ConfigItem{Key: "smtp.password", Masked: true}}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)

	err := f.console.UpdateConfigItem(context.Background(), "smtp.password", "newsecret", "")
	require.True(t, errors.Is(err, common.ErrStepUpStale))

	f.withFreshStepUp()
	require.NoError(t, f.console.UpdateConfigItem(context.Background(), "smtp.password", "newsecret", ""))
}

func TestUpdateConfigItem_MaskedBlankValueRejected(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	err := f.console.UpdateConfigItem(context.Background(), "smtp.password", "   ", "")
	require.True(t, errors.Is(err, common.ErrorValidation),
		"a blank value for a masked item is an error, not keep-current")
	assert.Zero(t, fc.callCount("PatchConfigItem"))
}

func TestGatedMutations_AuditedByStoreOnly(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		patchFlagResp:   domain.FeatureFlagRecord{Key: domain.FlagDebtOptimizer},
		patchConfigResp: domain.ConfigItem{Key: "smtp.host"},
		backupResp:      api.BackupResponse{BackupID: "bkp-1", StartedAt: now},
		restoreResp:     api.RestoreResponse{DryRun: true},
		scheduleResp:    domain.InfrastructureStatus{DeletionScheduledFor: &now},
		licenseResp:     domain.LicenseState{LicenseID: "lic-1"},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	tier := domain.TierFamily
	require.NoError(t, f.console.UpdateFeatureFlag(context.Background(), domain.FlagDebtOptimizer, false, ""))
	require.NoError(t, f.console.UpdateConfigItem(context.Background(), "smtp.host", "mail2.owncent.test", ""))
	_, err := f.console.TriggerBackup(context.Background(), domain.BackupFull)
	require.NoError(t, err)
	require.NoError(t, f.console.TriggerRestore(context.Background(), "bkp-1", true, ""))
	require.NoError(t, f.console.ScheduleDeletion(context.Background(), common.DeletionConfirmationPhrase))
	require.NoError(t, f.console.CancelDeletion(context.Background()))
	require.NoError(t, f.console.OverrideLicenseTier(context.Background(), &tier))

	assert.Zero(t, fc.callCount("AppendAudit"),
		"every mutation must land exactly one audit entry, written by the store")
}

func TestTriggerBackup_ManagerAllowed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	fc := &fakeClient{
		backupResp: api.BackupResponse{
			BackupID:  "bkp-1",
			StartedAt: now,
			Status:    domain.InfrastructureStatus{LastBackupAt: &now, LastBackupMode: domain.BackupFull},
		},
	}
	f := newFixture(fc)
	f.signedInAs(managerIdentity, nil)

	resp, err := f.console.TriggerBackup(context.Background(), domain.BackupFull)
	require.NoError(t, err)
	assert.Equal(t, "bkp-1", resp.BackupID)
	require.NotNil(t, f.state.Infrastructure().LastBackupAt)
	assert.Equal(t, domain.BackupFull, f.state.Infrastructure().LastBackupMode)
}

func TestTriggerBackup_DeniedDuringImpersonation(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, &domain.ImpersonationState{Target: freeUserIdentity})

	_, err := f.console.TriggerBackup(context.Background(), domain.BackupConfigOnly)
	require.True(t, errors.Is(err, common.ErrImpersonationRequired))
	assert.Zero(t, fc.callCount("TriggerBackup"))
}

func TestTriggerRestore_RequiresBackupID(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	err := f.console.TriggerRestore(context.Background(), "  ", false, "")
	require.True(t, errors.Is(err, common.ErrorValidation))
	assert.Zero(t, fc.callCount("TriggerRestore"))
}

func TestTriggerRestore_DryRunForwarded(t *testing.T) {
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		restoreResp: api.RestoreResponse{
			DryRun: true,
			Status: domain.InfrastructureStatus{LastRestoreDryRunAt: &now},
		},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	require.NoError(t, f.console.TriggerRestore(context.Background(), "bkp-1", true, "verify before the real thing"))

	assert.True(t, fc.lastRestore.DryRun)
	assert.Equal(t, "bkp-1", fc.lastRestore.BackupID)
	assert.NotNil(t, f.state.Infrastructure().LastRestoreDryRunAt)
	assert.Nil(t, f.state.Infrastructure().LastRestoreAt)
}

func TestScheduleDeletion_ConfirmationPhrase(t *testing.T) {
	deadline := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	fc := &fakeClient{
		scheduleResp: domain.InfrastructureStatus{DeletionScheduledFor: &deadline},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	err := f.console.ScheduleDeletion(context.Background(), "delete everything")
	require.True(t, errors.Is(err, common.ErrorValidation))
	assert.Zero(t, fc.callCount("ScheduleDeletion"))

	// Case and surrounding whitespace are forgiven, the phrase is not.
	require.NoError(t, f.console.ScheduleDeletion(context.Background(), "  OwnCent-Demo "))
	require.NotNil(t, f.state.Infrastructure().DeletionScheduledFor)
}

func TestScheduleDeletion_RequiresFreshStepUp(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)

	err := f.console.ScheduleDeletion(context.Background(), common.DeletionConfirmationPhrase)
	require.True(t, errors.Is(err, common.ErrStepUpStale))
}

func TestCancelDeletion_NoStepUpNeeded(t *testing.T) {
	fc := &fakeClient{cancelResp: domain.InfrastructureStatus{}}
	f := newFixture(fc)
	deadline := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	f.signedInAs(ownerIdentity, nil)
	f.state.SetInfrastructure(domain.InfrastructureStatus{DeletionScheduledFor: &deadline})

	require.NoError(t, f.console.CancelDeletion(context.Background()))
	assert.Nil(t, f.state.Infrastructure().DeletionScheduledFor)
}

func TestCancelDeletion_ManagerAllowed(t *testing.T) {
	fc := &fakeClient{cancelResp: domain.InfrastructureStatus{}}
	f := newFixture(fc)
	deadline := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	f.signedInAs(managerIdentity, nil)
	f.state.SetInfrastructure(domain.InfrastructureStatus{DeletionScheduledFor: &deadline})

	require.NoError(t, f.console.CancelDeletion(context.Background()),
		"cancelling needs nothing beyond admin access")
	assert.Equal(t, 1, fc.callCount("CancelDeletion"))
	assert.Nil(t, f.state.Infrastructure().DeletionScheduledFor)
}

func TestOverrideLicenseTier_SetAndClear(t *testing.T) {
	fc := &fakeClient{
		licenseResp: domain.LicenseState{
			LicenseID: "lic-1", Tier: domain.TierPremium,
			OverrideActive: true, OverrideTier: domain.TierFamily,
		},
	}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	tier := domain.TierFamily
	require.NoError(t, f.console.OverrideLicenseTier(context.Background(), &tier))
	require.NotNil(t, fc.lastTier)
	assert.Equal(t, domain.TierFamily, *fc.lastTier)
	assert.True(t, f.state.License().OverrideActive)

	fc.licenseResp = domain.LicenseState{LicenseID: "lic-1", Tier: domain.TierPremium}
	require.NoError(t, f.console.OverrideLicenseTier(context.Background(), nil))
	assert.Nil(t, fc.lastTier)
	assert.False(t, f.state.License().OverrideActive)
}

func TestOverrideLicenseTier_UnknownTierRejected(t *testing.T) {
	fc := &fakeClient{}
	f := newFixture(fc)
	f.signedInAs(ownerIdentity, nil)
	f.withFreshStepUp()

	bogus := domain.Tier("platinum")
	err := f.console.OverrideLicenseTier(context.Background(), &bogus)
	require.True(t, errors.Is(err, common.ErrorValidation))
	assert.Zero(t, fc.callCount("OverrideLicense"))
}

func TestRefreshMonitoring_UpdatesCache(t *testing.T) {
	fc := &fakeClient{
		monitoringResp: domain.MonitoringSnapshot{DBConnection: "ok", UptimeSeconds: 4200},
	}
	f := newFixture(fc)
	f.signedInAs(managerIdentity, nil)

	snap, err := f.console.RefreshMonitoring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", snap.DBConnection)
	assert.Equal(t, int64(4200), f.state.Monitoring().UptimeSeconds)
}

func TestFeatureAvailable_TierGateFollowsEffectiveSession(t *testing.T) {
	f := newFixture(&fakeClient{})

	// Owner on premium sees the premium-tier feature.
	f.signedInAs(ownerIdentity, nil)
	assert.True(t, f.console.FeatureAvailable(domain.FlagDebtOptimizer))

	// Impersonating a free-tier user hides it, without touching the flag.
	f.signedInAs(ownerIdentity, &domain.ImpersonationState{Target: freeUserIdentity})
	assert.False(t, f.console.FeatureAvailable(domain.FlagDebtOptimizer))

	// The free-tier feature stays visible.
	assert.True(t, f.console.FeatureAvailable(domain.FlagReports))
}

func TestFeatureAvailable_LicenseOverrideWins(t *testing.T) {
	f := newFixture(&fakeClient{})
	f.signedInAs(ownerIdentity, &domain.ImpersonationState{Target: freeUserIdentity})

	lic := f.state.License()
	lic.OverrideActive = true
	lic.OverrideTier = domain.TierFamily
	f.state.SetLicense(lic)

	assert.True(t, f.console.FeatureAvailable(domain.FlagDebtOptimizer),
		"an active override makes the feature available regardless of tier")
}
