// Package services contains the authoritative store's business logic. Every
// gated mutation re-validates role, impersonation, and step-up state here;
// the console's local gate is a convenience, not a boundary.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/dbx"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
	"github.com/dmitrijs2005/owncent-admin/internal/server/passwords"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService handles login, the second factor, refresh rotation, logout,
// and session resolution.
type SessionService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	cfg *config.Config
	log logging.Logger
}

func NewSessionService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{db: db, rm: rm, cfg: cfg, log: log}
}

// Login verifies the password. Principals with the second factor enabled get
// a challenge id instead of tokens; everyone else gets a full pair. Unknown
// usernames and bad passwords are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, tenantID, username, password string) (*api.LoginResponse, error) {
	principal, err := s.rm.Principals(s.db).GetByUsername(ctx, tenantID, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := passwords.Verify(password, principal.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrorUnauthorized
	}

	if principal.TwoFactorEnabled {
		ch := &models.TwoFactorChallenge{
			ID:        uuid.NewString(),
			UserID:    principal.ID,
			TenantID:  tenantID,
			ExpiresAt: time.Now().Add(s.cfg.ChallengeTTL),
		}
		if err := s.rm.Challenges(s.db).Create(ctx, ch); err != nil {
			return nil, common.ErrorInternal
		}
		return &api.LoginResponse{ChallengeID: ch.ID}, nil
	}

	pair, err := s.generateTokenPair(ctx, principal, s.db)
	if err != nil {
		return nil, err
	}
	return &api.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// VerifyTwoFactor redeems a challenge. Challenges are single-use: the row is
// deleted before the code is checked, so a failed attempt forces a new
// login.
func (s *SessionService) VerifyTwoFactor(ctx context.Context, tenantID, challengeID, code string) (*api.LoginResponse, error) {
	repo := s.rm.Challenges(s.db)

	ch, err := repo.Find(ctx, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := repo.Delete(ctx, challengeID); err != nil {
		return nil, common.ErrorInternal
	}

	if ch.TenantID != tenantID || time.Now().After(ch.ExpiresAt) || code != s.cfg.TwoFactorCode {
		return nil, common.ErrorUnauthorized
	}

	principal, err := s.rm.Principals(s.db).GetByID(ctx, tenantID, ch.UserID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, principal, s.db)
	if err != nil {
		return nil, err
	}
	return &api.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh pair. An expired or unknown token is a terminal unauthorized.
func (s *SessionService) Refresh(ctx context.Context, tenantID, refreshToken string) (*TokenPair, error) {
	token, err := s.rm.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	principal, err := s.rm.Principals(s.db).GetByID(ctx, tenantID, token.UserID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, principal, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token and drops the principal's step-up
// verification. A missing token is not an error; logout is idempotent.
func (s *SessionService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken != "" {
		if err := s.rm.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
			return err
		}
	}
	if err := s.rm.StepUps(s.db).Clear(ctx, userID); err != nil {
		s.log.Warn(ctx, "step-up clear on logout failed", "error", err)
	}
	return nil
}

// Resolve maps token claims to the session response: the true actor identity
// plus the impersonation state carried in the token.
func (s *SessionService) Resolve(ctx context.Context, claims *auth.Claims) (*api.SessionResponse, error) {
	repo := s.rm.Principals(s.db)

	actor, err := repo.GetByID(ctx, claims.TenantID, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	resp := &api.SessionResponse{Identity: actor.SessionInfo()}

	if claims.Impersonating() {
		target, err := repo.GetByID(ctx, claims.TenantID, claims.ImpersonatedUserID)
		if err != nil {
			return nil, common.ErrorInternal
		}
		started := time.Now()
		if claims.IssuedAt != nil {
			started = claims.IssuedAt.Time
		}
		resp.Impersonation = &domain.ImpersonationState{
			Target:    target.SessionInfo(),
			Reason:    claims.ImpersonationReason,
			StartedAt: started,
		}
	}
	return resp, nil
}

func (s *SessionService) generateTokenPair(ctx context.Context, p *models.Principal, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(p.ID, p.TenantID, p.Role, "", "", []byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.rm.RefreshTokens(tx).Create(ctx, p.ID, refresh, s.cfg.RefreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
