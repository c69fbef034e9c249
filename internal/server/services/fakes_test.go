package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/configitems"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/featureflags"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/principals"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/stepups"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/tenantstate"
)

const testTenant = "tenant-demo"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func ownerClaims() *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
		UserID:           "u-owner",
		TenantID:         testTenant,
		Role:             domain.RoleOwner,
	}
}

func managerClaims() *auth.Claims {
	c := ownerClaims()
	c.UserID = "u-manager"
	c.Role = domain.RoleManager
	return c
}

func impersonatingClaims(target string) *auth.Claims {
	c := ownerClaims()
	c.ImpersonatedUserID = target
	c.ImpersonationReason = "support ticket 4711"
	return c
}

// --- fake repositories ---

type fakePrincipals struct {
	byID map[string]*models.Principal
}

func (f *fakePrincipals) GetByUsername(_ context.Context, tenantID, username string) (*models.Principal, error) {
	for _, p := range f.byID {
		if p.TenantID == tenantID && p.Username == username {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePrincipals) GetByID(_ context.Context, tenantID, id string) (*models.Principal, error) {
	if p, ok := f.byID[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePrincipals) List(_ context.Context, tenantID string) ([]*models.Principal, error) {
	var out []*models.Principal
	for _, p := range f.byID {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type fakeRefreshTokens struct {
	byToken map[string]*models.RefreshToken
	created []string
	deleted []string
}

func (f *fakeRefreshTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.byToken[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := f.byToken[token]; ok {
		return rt, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshTokens) Delete(_ context.Context, token string) error {
	delete(f.byToken, token)
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeChallenges struct {
	byID map[string]*models.TwoFactorChallenge
}

func (f *fakeChallenges) Create(_ context.Context, ch *models.TwoFactorChallenge) error {
	f.byID[ch.ID] = ch
	return nil
}

func (f *fakeChallenges) Find(_ context.Context, id string) (*models.TwoFactorChallenge, error) {
	if ch, ok := f.byID[id]; ok {
		return ch, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeChallenges) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeStepUps struct {
	byUser map[string]*models.StepUpVerification
}

func (f *fakeStepUps) Upsert(_ context.Context, v *models.StepUpVerification) error {
	f.byUser[v.UserID] = v
	return nil
}

func (f *fakeStepUps) Latest(_ context.Context, userID string) (*models.StepUpVerification, error) {
	if v, ok := f.byUser[userID]; ok {
		return v, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStepUps) Clear(_ context.Context, userID string) error {
	delete(f.byUser, userID)
	return nil
}

type fakeFeatureFlags struct {
	byKey map[string]*domain.FeatureFlagRecord
}

func (f *fakeFeatureFlags) List(_ context.Context, _ string) ([]domain.FeatureFlagRecord, error) {
	var out []domain.FeatureFlagRecord
	for _, flag := range f.byKey {
		out = append(out, *flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeFeatureFlags) Get(_ context.Context, _, key string) (*domain.FeatureFlagRecord, error) {
	if flag, ok := f.byKey[key]; ok {
		cp := *flag
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFeatureFlags) Update(_ context.Context, _, key string, value bool, notes, byUserID string, at time.Time) error {
	flag, ok := f.byKey[key]
	if !ok {
		return common.ErrorNotFound
	}
	flag.Value = value
	flag.Notes = notes
	flag.OverriddenByUserID = byUserID
	flag.LastChangedAt = at
	return nil
}

type fakeConfigItems struct {
	byKey map[string]*domain.ConfigItem
}

func (f *fakeConfigItems) List(_ context.Context, _ string) ([]domain.ConfigItem, error) {
	var out []domain.ConfigItem
	for _, item := range f.byKey {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeConfigItems) Get(_ context.Context, _, key string) (*domain.ConfigItem, error) {
	if item, ok := f.byKey[key]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeConfigItems) Update(_ context.Context, _, key, value, byUserID string, at time.Time) error {
	item, ok := f.byKey[key]
	if !ok {
		return common.ErrorNotFound
	}
	item.Value = value
	item.LastUpdatedByUserID = byUserID
	item.LastUpdatedAt = at
	return nil
}

type fakeAuditLog struct {
	entries   []domain.AuditLogEntry
	appendErr error
}

func (f *fakeAuditLog) Append(_ context.Context, _ string, e *domain.AuditLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditLog) List(_ context.Context, _ string, limit int) ([]domain.AuditLogEntry, error) {
	out := make([]domain.AuditLogEntry, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeAuditLog) CountSince(_ context.Context, _ string, since time.Time) (int, error) {
	n := 0
	for _, e := range f.entries {
		if e.Timestamp.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAuditLog) lastAction() string {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

type fakeTenantState struct {
	license    domain.LicenseState
	infra      domain.InfrastructureStatus
	monitoring *domain.MonitoringSnapshot
}

func (f *fakeTenantState) GetLicense(_ context.Context, _ string) (*domain.LicenseState, error) {
	cp := f.license
	return &cp, nil
}

func (f *fakeTenantState) SetLicenseOverride(_ context.Context, _ string, active bool, tier domain.Tier) error {
	f.license.OverrideActive = active
	f.license.OverrideTier = tier
	return nil
}

func (f *fakeTenantState) GetInfrastructure(_ context.Context, _ string) (*domain.InfrastructureStatus, error) {
	cp := f.infra
	return &cp, nil
}

func (f *fakeTenantState) RecordBackup(_ context.Context, _ string, at time.Time, mode domain.BackupMode) error {
	f.infra.LastBackupAt = &at
	f.infra.LastBackupMode = mode
	return nil
}

func (f *fakeTenantState) RecordRestore(_ context.Context, _ string, at time.Time, dryRun bool) error {
	if dryRun {
		f.infra.LastRestoreDryRunAt = &at
	} else {
		f.infra.LastRestoreAt = &at
	}
	return nil
}

func (f *fakeTenantState) ScheduleDeletion(_ context.Context, _ string, at time.Time) error {
	f.infra.DeletionScheduledFor = &at
	return nil
}

func (f *fakeTenantState) CancelDeletion(_ context.Context, _ string) error {
	f.infra.DeletionScheduledFor = nil
	return nil
}

func (f *fakeTenantState) GetMonitoring(_ context.Context, _ string) (*domain.MonitoringSnapshot, error) {
	if f.monitoring == nil {
		return nil, common.ErrorNotFound
	}
	cp := *f.monitoring
	return &cp, nil
}

func (f *fakeTenantState) SaveMonitoring(_ context.Context, _ string, snap *domain.MonitoringSnapshot) error {
	cp := *snap
	f.monitoring = &cp
	return nil
}

// fakeRM vends the in-memory fakes regardless of the DBTX handed in.
type fakeRM struct {
	principals *fakePrincipals
	refresh    *fakeRefreshTokens
	challenges *fakeChallenges
	stepups    *fakeStepUps
	flags      *fakeFeatureFlags
	items      *fakeConfigItems
	audit      *fakeAuditLog
	tenant     *fakeTenantState
}

func newFakeRM() *fakeRM {
	return &fakeRM{
		principals: &fakePrincipals{byID: map[string]*models.Principal{}},
		refresh:    &fakeRefreshTokens{byToken: map[string]*models.RefreshToken{}},
		challenges: &fakeChallenges{byID: map[string]*models.TwoFactorChallenge{}},
		stepups:    &fakeStepUps{byUser: map[string]*models.StepUpVerification{}},
		flags:      &fakeFeatureFlags{byKey: map[string]*domain.FeatureFlagRecord{}},
		items:      &fakeConfigItems{byKey: map[string]*domain.ConfigItem{}},
		audit:      &fakeAuditLog{},
		tenant:     &fakeTenantState{},
	}
}

func (f *fakeRM) RunMigrations(context.Context, *sql.DB) error          { return nil }
func (f *fakeRM) Principals(dbx.DBTX) principals.Repository             { return f.principals }
func (f *fakeRM) RefreshTokens(dbx.DBTX) refreshtokens.Repository       { return f.refresh }
func (f *fakeRM) Challenges(dbx.DBTX) challenges.Repository             { return f.challenges }
func (f *fakeRM) StepUps(dbx.DBTX) stepups.Repository                   { return f.stepups }
func (f *fakeRM) FeatureFlags(dbx.DBTX) featureflags.Repository         { return f.flags }
func (f *fakeRM) ConfigItems(dbx.DBTX) configitems.Repository           { return f.items }
func (f *fakeRM) AuditLog(dbx.DBTX) auditlog.Repository                 { return f.audit }
func (f *fakeRM) TenantState(dbx.DBTX) tenantstate.Repository           { return f.tenant }

func (f *fakeRM) addPrincipal(p *models.Principal) {
	if p.TenantID == "" {
		p.TenantID = testTenant
	}
	f.principals.byID[p.ID] = p
}

func (f *fakeRM) freshStepUp(userID string) {
	f.stepups.byUser[userID] = &models.StepUpVerification{
		UserID:     userID,
		Action:     common.StepUpActionImpersonation,
		VerifiedAt: time.Now(),
	}
}

func (f *fakeRM) staleStepUp(userID string) {
	f.stepups.byUser[userID] = &models.StepUpVerification{
		UserID:     userID,
		Action:     common.StepUpActionImpersonation,
		VerifiedAt: time.Now().Add(-common.StepUpValidityWindow - time.Minute),
	}
}

func seedOwner(rm *fakeRM) *models.Principal {
	p := &models.Principal{
		ID: "u-owner", TenantID: testTenant, Username: "olga.owner",
		DisplayName: "Olga Ozola", Email: "olga@owncent.test",
		Role: domain.RoleOwner, Tier: domain.TierPremium, IsPremium: true,
	}
	rm.addPrincipal(p)
	return p
}

func seedManager(rm *fakeRM) *models.Principal {
	p := &models.Principal{
		ID: "u-manager", TenantID: testTenant, Username: "maris.manager",
		DisplayName: "Maris Berzins", Email: "maris@owncent.test",
		Role: domain.RoleManager, Tier: domain.TierAdvanced,
	}
	rm.addPrincipal(p)
	return p
}

func seedUser(rm *fakeRM) *models.Principal {
	p := &models.Principal{
		ID: "u-user", TenantID: testTenant, Username: "uldis.user",
		DisplayName: "Uldis Kalns", Email: "uldis@owncent.test",
		Role: domain.RoleUser, Tier: domain.TierFree,
	}
	rm.addPrincipal(p)
	return p
}
