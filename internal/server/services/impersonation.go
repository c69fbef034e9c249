package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// ImpersonationService mints and retires scoped impersonation tokens. The
// refresh token is never touched: only the access credential changes when an
// impersonation starts or stops.
type ImpersonationService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	cfg    *config.Config
	stepup *StepUpService
	audit  *AuditRecorder
}

func NewImpersonationService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, stepup *StepUpService, audit *AuditRecorder) *ImpersonationService {
	return &ImpersonationService{db: db, rm: rm, cfg: cfg, stepup: stepup, audit: audit}
}

// Start re-validates every precondition server-side and returns a scoped
// access token carrying both identities.
func (s *ImpersonationService) Start(ctx context.Context, claims *auth.Claims, targetUserID, reason string) (string, error) {
	if claims.Role != domain.RoleOwner {
		return "", common.ErrorForbidden
	}
	if claims.Impersonating() {
		return "", common.ErrImpersonationActive
	}
	if err := s.stepup.RequireFresh(ctx, claims.UserID); err != nil {
		return "", err
	}

	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" || targetUserID == claims.UserID {
		return "", common.ErrorValidation
	}

	target, err := s.rm.Principals(s.db).GetByID(ctx, claims.TenantID, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	token, err := auth.GenerateToken(claims.UserID, claims.TenantID, claims.Role, target.ID, reason,
		[]byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	scoped := *claims
	scoped.ImpersonatedUserID = target.ID
	metadata := map[string]string{"target_user_id": target.ID}
	if reason != "" {
		metadata["reason"] = reason
	}
	s.audit.Record(ctx, &scoped, "impersonation.start", "user:"+target.ID, metadata, domain.SeverityWarning)

	return token, nil
}

// Stop mints a plain actor token. Stopping without an active impersonation
// still succeeds and just reissues the actor credential.
func (s *ImpersonationService) Stop(ctx context.Context, claims *auth.Claims) (string, error) {
	token, err := auth.GenerateToken(claims.UserID, claims.TenantID, claims.Role, "", "",
		[]byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	if claims.Impersonating() {
		s.audit.Record(ctx, claims, "impersonation.stop", "user:"+claims.ImpersonatedUserID, nil, domain.SeverityInfo)
	}
	return token, nil
}
