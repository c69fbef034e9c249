package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/state"
	"github.com/dmitrijs2005/owncent-admin/internal/console/tokens"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
)

// memRepo is an in-memory localstore.Repository for token persistence.
type memRepo struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRepo() *memRepo { return &memRepo{data: map[string]string{}} }

func (m *memRepo) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (m *memRepo) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memRepo) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeClient is a programmable transport double. Responses and errors are set
// per method; every call is appended to calls for order/count assertions.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	loginResp api.LoginResponse
	loginErr  error

	verifyResp api.LoginResponse
	verifyErr  error

	logoutErr         error
	lastLogoutRefresh string

	sessionResp api.SessionResponse
	sessionErr  error

	bootstrapResp domain.BootstrapSnapshot
	bootstrapErr  error

	stepUpResp api.StepUpResponse
	stepUpErr  error
	lastStepUp api.StepUpRequest

	impersonateResp api.ImpersonateResponse
	impersonateErr  error
	lastImpersonate api.ImpersonateRequest

	stopResp api.ImpersonateResponse
	stopErr  error

	patchFlagResp domain.FeatureFlagRecord
	patchFlagErr  error
	lastFlagKey   string
	lastFlagPatch api.FeatureFlagPatchRequest

	patchConfigResp domain.ConfigItem
	patchConfigErr  error
	lastConfigKey   string
	lastConfigPatch api.ConfigItemPatchRequest

	auditResp domain.AuditLogEntry
	auditErr  error
	lastAudit api.AuditAppendRequest

	monitoringResp domain.MonitoringSnapshot
	monitoringErr  error

	backupResp api.BackupResponse
	backupErr  error

	restoreResp api.RestoreResponse
	restoreErr  error
	lastRestore api.RestoreRequest

	scheduleResp domain.InfrastructureStatus
	scheduleErr  error
	lastDeletion api.DeletionScheduleRequest

	cancelResp domain.InfrastructureStatus
	cancelErr  error

	licenseResp domain.LicenseState
	licenseErr  error
	lastTier    *domain.Tier
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (api.LoginResponse, error) {
	f.record("Login")
	return f.loginResp, f.loginErr
}

func (f *fakeClient) VerifyTwoFactor(ctx context.Context, challengeID, code string) (api.LoginResponse, error) {
	f.record("VerifyTwoFactor")
	return f.verifyResp, f.verifyErr
}

func (f *fakeClient) Logout(ctx context.Context, refreshToken string) error {
	f.record("Logout")
	f.lastLogoutRefresh = refreshToken
	return f.logoutErr
}

func (f *fakeClient) Session(ctx context.Context) (api.SessionResponse, error) {
	f.record("Session")
	return f.sessionResp, f.sessionErr
}

func (f *fakeClient) Bootstrap(ctx context.Context) (domain.BootstrapSnapshot, error) {
	f.record("Bootstrap")
	return f.bootstrapResp, f.bootstrapErr
}

func (f *fakeClient) VerifyStepUp(ctx context.Context, action common.StepUpAction, code string) (api.StepUpResponse, error) {
	f.record("VerifyStepUp")
	f.lastStepUp = api.StepUpRequest{Action: action, Code: code}
	return f.stepUpResp, f.stepUpErr
}

func (f *fakeClient) StartImpersonation(ctx context.Context, targetUserID, reason string) (api.ImpersonateResponse, error) {
	f.record("StartImpersonation")
	f.lastImpersonate = api.ImpersonateRequest{TargetUserID: targetUserID, Reason: reason}
	return f.impersonateResp, f.impersonateErr
}

func (f *fakeClient) StopImpersonation(ctx context.Context) (api.ImpersonateResponse, error) {
	f.record("StopImpersonation")
	return f.stopResp, f.stopErr
}

func (f *fakeClient) PatchFeatureFlag(ctx context.Context, key string, req api.FeatureFlagPatchRequest) (domain.FeatureFlagRecord, error) {
	f.record("PatchFeatureFlag")
	f.lastFlagKey, f.lastFlagPatch = key, req
	return f.patchFlagResp, f.patchFlagErr
}

func (f *fakeClient) PatchConfigItem(ctx context.Context, key string, req api.ConfigItemPatchRequest) (domain.ConfigItem, error) {
	f.record("PatchConfigItem")
	f.lastConfigKey, f.lastConfigPatch = key, req
	return f.patchConfigResp, f.patchConfigErr
}

func (f *fakeClient) AppendAudit(ctx context.Context, req api.AuditAppendRequest) (domain.AuditLogEntry, error) {
	f.record("AppendAudit")
	f.lastAudit = req
	return f.auditResp, f.auditErr
}

func (f *fakeClient) RefreshMonitoring(ctx context.Context) (domain.MonitoringSnapshot, error) {
	f.record("RefreshMonitoring")
	return f.monitoringResp, f.monitoringErr
}

func (f *fakeClient) TriggerBackup(ctx context.Context, mode domain.BackupMode) (api.BackupResponse, error) {
	f.record("TriggerBackup")
	return f.backupResp, f.backupErr
}

func (f *fakeClient) TriggerRestore(ctx context.Context, req api.RestoreRequest) (api.RestoreResponse, error) {
	f.record("TriggerRestore")
	f.lastRestore = req
	return f.restoreResp, f.restoreErr
}

func (f *fakeClient) ScheduleDeletion(ctx context.Context, req api.DeletionScheduleRequest) (domain.InfrastructureStatus, error) {
	f.record("ScheduleDeletion")
	f.lastDeletion = req
	return f.scheduleResp, f.scheduleErr
}

func (f *fakeClient) CancelDeletion(ctx context.Context) (domain.InfrastructureStatus, error) {
	f.record("CancelDeletion")
	return f.cancelResp, f.cancelErr
}

func (f *fakeClient) OverrideLicense(ctx context.Context, tier *domain.Tier) (domain.LicenseState, error) {
	f.record("OverrideLicense")
	f.lastTier = tier
	return f.licenseResp, f.licenseErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.record("Ping")
	return nil
}

func (f *fakeClient) Close() error { return nil }

// Fixture principals covering the role/tier spread.
var (
	ownerIdentity = domain.SessionInfo{
		ID: "u-owner", Username: "owner@owncent.test", DisplayName: "Olga Owner",
		Role: domain.RoleOwner, Tier: domain.TierPremium, IsPremium: true,
	}
	managerIdentity = domain.SessionInfo{
		ID: "u-manager", Username: "manager@owncent.test", DisplayName: "Max Manager",
		Role: domain.RoleManager, Tier: domain.TierAdvanced,
	}
	freeUserIdentity = domain.SessionInfo{
		ID: "u-free", Username: "free@owncent.test", DisplayName: "Frida Free",
		Role: domain.RoleUser, Tier: domain.TierFree,
	}
)

func testBootstrap() domain.BootstrapSnapshot {
	return domain.BootstrapSnapshot{
		Users: []domain.SessionInfo{ownerIdentity, managerIdentity, freeUserIdentity},
		FeatureFlags: []domain.FeatureFlagRecord{
			{
				Key: domain.FlagDebtOptimizer, Value: true,
				RequiredTier:  domain.TierPremium,
				OverridableBy: []domain.Role{domain.RoleOwner, domain.RoleManager},
			},
			{
				Key: domain.FlagReports, Value: true,
				RequiredTier:  domain.TierFree,
				OverridableBy: []domain.Role{domain.RoleOwner},
			},
		},
		License: domain.LicenseState{
			LicenseID: "lic-1", Tier: domain.TierPremium, Status: domain.LicenseValid,
		},
		ConfigItems: []domain.ConfigItem{
			{Key: "smtp.host", Value: "mail.owncent.test"},
			{Key: "smtp.password", Value: "hunter22", Masked: true, RequiresStepUp: true},
		},
	}
}

type consoleFixture struct {
	console *Console
	client  *fakeClient
	state   *state.Aggregate
	tokens  *tokens.Store
	clock   *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newFixture(fc *fakeClient) *consoleFixture {
	st := state.New()
	ts := tokens.NewStore(newMemRepo())
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	c := New(fc, ts, st, log)
	c.now = clock.Now
	return &consoleFixture{console: c, client: fc, state: st, tokens: ts, clock: clock}
}

// signedInAs installs a resolved session directly into the aggregate.
func (f *consoleFixture) signedInAs(identity domain.SessionInfo, imp *domain.ImpersonationState) {
	f.state.ApplyResolved(identity, imp, testBootstrap())
}

// withFreshStepUp marks a step-up verification done just now.
func (f *consoleFixture) withFreshStepUp() {
	f.state.MarkStepUpVerified(f.clock.Now())
}
