// Package api defines the JSON wire contract between the admin console core
// and the authoritative store. Both sides of the module marshal these types,
// so a field rename cannot silently diverge.
package api

import (
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Code distinguishes token expiry from other 401s so the client knows
	// when a refresh attempt is worthwhile.
	Code string `json:"code,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeTokenExpired = "token_expired"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeValidation   = "validation"
	CodeStepUpStale  = "step_up_stale"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries either a full credential pair or a two-factor
// challenge id, never both.
type LoginResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ChallengeID  string `json:"challenge_id,omitempty"`
}

// TwoFactorRequired reports whether the login must be completed with a
// second factor.
func (r LoginResponse) TwoFactorRequired() bool {
	return r.ChallengeID != ""
}

type TwoFactorVerifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SessionResponse is the result of GET /auth/session: the true actor
// identity plus the impersonation state, if any.
type SessionResponse struct {
	Identity      domain.SessionInfo         `json:"identity"`
	Impersonation *domain.ImpersonationState `json:"impersonation,omitempty"`
}

type StepUpRequest struct {
	Action common.StepUpAction `json:"action"`
	Code   string              `json:"code"`
}

type StepUpResponse struct {
	Success    bool      `json:"success"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`
}

type ImpersonateRequest struct {
	TargetUserID string `json:"target_user_id"`
	Reason       string `json:"reason,omitempty"`
}

// ImpersonateResponse returns the replacement access credential minted for
// the impersonation (or for reverting it).
type ImpersonateResponse struct {
	AccessToken string `json:"access_token"`
}

type FeatureFlagPatchRequest struct {
	Value  bool   `json:"value"`
	Reason string `json:"reason,omitempty"`
}

type ConfigItemPatchRequest struct {
	Value string `json:"value"`
	Note  string `json:"note,omitempty"`
}

// AuditAppendRequest is the console-originated audit entry; the store fills
// in identity attribution and the server timestamp.
type AuditAppendRequest struct {
	Action       string               `json:"action"`
	TargetEntity string               `json:"target_entity"`
	Metadata     map[string]string    `json:"metadata,omitempty"`
	Severity     domain.AuditSeverity `json:"severity,omitempty"`
	Immutable    bool                 `json:"immutable"`
}

type BackupRequest struct {
	Mode domain.BackupMode `json:"mode"`
}

type BackupResponse struct {
	BackupID  string                      `json:"backup_id"`
	StartedAt time.Time                   `json:"started_at"`
	Status    domain.InfrastructureStatus `json:"status"`
}

type RestoreRequest struct {
	DryRun   bool   `json:"dry_run"`
	BackupID string `json:"backup_id"`
	Note     string `json:"note,omitempty"`
}

type RestoreResponse struct {
	DryRun bool                        `json:"dry_run"`
	Status domain.InfrastructureStatus `json:"status"`
}

// InfrastructureStatusResponse wraps the per-tenant infrastructure row
// returned by deletion scheduling/cancellation.
type InfrastructureStatusResponse struct {
	Status domain.InfrastructureStatus `json:"status"`
}

type DeletionScheduleRequest struct {
	ConfirmationText string    `json:"confirmation_text"`
	RequestedAt      time.Time `json:"requested_at"`
}

// LicenseOverrideRequest sets or clears the tier override; a nil Tier
// clears it.
type LicenseOverrideRequest struct {
	Tier *domain.Tier `json:"tier"`
}
