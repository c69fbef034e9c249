// Package httpapi exposes the authoritative store over JSON HTTP. It owns
// routing, authentication middleware, and the translation between service
// errors and wire error codes; all business rules live in the services.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/services"
)

const healthCheckTimeout = 2 * time.Second

type SessionService interface {
	Login(ctx context.Context, tenantID, username, password string) (*api.LoginResponse, error)
	VerifyTwoFactor(ctx context.Context, tenantID, challengeID, code string) (*api.LoginResponse, error)
	Refresh(ctx context.Context, tenantID, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	Resolve(ctx context.Context, claims *auth.Claims) (*api.SessionResponse, error)
}

type StepUpVerifier interface {
	Verify(ctx context.Context, userID string, action common.StepUpAction, code string) (*api.StepUpResponse, error)
}

type Impersonator interface {
	Start(ctx context.Context, claims *auth.Claims, targetUserID, reason string) (string, error)
	Stop(ctx context.Context, claims *auth.Claims) (string, error)
}

type AdminBackend interface {
	Bootstrap(ctx context.Context, tenantID string) (*domain.BootstrapSnapshot, error)
	UpdateFeatureFlag(ctx context.Context, claims *auth.Claims, key string, value bool, reason string) (*domain.FeatureFlagRecord, error)
	UpdateConfigItem(ctx context.Context, claims *auth.Claims, key, value, note string) (*domain.ConfigItem, error)
	OverrideLicense(ctx context.Context, claims *auth.Claims, tier *domain.Tier) (*domain.LicenseState, error)
	ScheduleDeletion(ctx context.Context, claims *auth.Claims, confirmation string, requestedAt time.Time) (*domain.InfrastructureStatus, error)
	CancelDeletion(ctx context.Context, claims *auth.Claims) (*domain.InfrastructureStatus, error)
}

type BackupRunner interface {
	TriggerBackup(ctx context.Context, claims *auth.Claims, mode domain.BackupMode) (*api.BackupResponse, error)
	TriggerRestore(ctx context.Context, claims *auth.Claims, req *api.RestoreRequest) (*api.RestoreResponse, error)
}

type MonitoringRefresher interface {
	Refresh(ctx context.Context, claims *auth.Claims) (*domain.MonitoringSnapshot, error)
}

type AuditAppender interface {
	Append(ctx context.Context, claims *auth.Claims, req *api.AuditAppendRequest) (*domain.AuditLogEntry, error)
}

// Services bundles everything the HTTP layer delegates to.
type Services struct {
	Sessions      SessionService
	StepUp        StepUpVerifier
	Impersonation Impersonator
	Admin         AdminBackend
	Backups       BackupRunner
	Monitoring    MonitoringRefresher
	Audit         AuditAppender
}

type Server struct {
	cfg *config.Config
	db  *sql.DB
	svc Services
	log logging.Logger
}

func NewServer(cfg *config.Config, db *sql.DB, svc Services, log logging.Logger) *Server {
	return &Server{cfg: cfg, db: db, svc: svc, log: log.With("component", "httpapi")}
}

// Routes builds the router. Refresh and the login endpoints are the only
// unauthenticated /api/v1 routes; everything else requires a bearer token
// for the tenant named in the header.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestMetrics)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireTenant)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/2fa/verify", s.handleTwoFactorVerify)
		r.Post("/auth/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/session", s.handleSession)
			r.Post("/auth/logout", s.handleLogout)
			r.Post("/auth/step-up", s.handleStepUp)

			r.Post("/impersonate", s.handleImpersonate)
			r.Post("/impersonate/stop", s.handleImpersonateStop)

			r.Get("/admin/bootstrap", s.handleBootstrap)
			r.Patch("/admin/feature-flags/{key}", s.handlePatchFeatureFlag)
			r.Patch("/admin/config/{key}", s.handlePatchConfigItem)
			r.Post("/admin/audit", s.handleAuditAppend)
			r.Post("/admin/monitoring/refresh", s.handleMonitoringRefresh)
			r.Post("/admin/infrastructure/backup", s.handleBackup)
			r.Post("/admin/infrastructure/restore", s.handleRestore)
			r.Post("/admin/infrastructure/deletion/schedule", s.handleDeletionSchedule)
			r.Post("/admin/infrastructure/deletion/cancel", s.handleDeletionCancel)
			r.Post("/admin/license/override", s.handleLicenseOverride)
		})
	})

	return r
}
