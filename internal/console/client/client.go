package client

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Client is the transport contract between the console core and the
// authoritative store. Implementations must be safe for concurrent use.
type Client interface {
	// Login exchanges credentials for either a token pair or a two-factor
	// challenge id.
	Login(ctx context.Context, username, password string) (api.LoginResponse, error)

	// VerifyTwoFactor completes a pending login challenge.
	VerifyTwoFactor(ctx context.Context, challengeID, code string) (api.LoginResponse, error)

	// Logout revokes the refresh credential on the store side.
	Logout(ctx context.Context, refreshToken string) error

	// Session resolves the current identity and impersonation state from the
	// access token.
	Session(ctx context.Context) (api.SessionResponse, error)

	// Bootstrap fetches the full tenant dataset shown by the console.
	Bootstrap(ctx context.Context) (domain.BootstrapSnapshot, error)

	// VerifyStepUp submits a step-up code for the given action class.
	VerifyStepUp(ctx context.Context, action common.StepUpAction, code string) (api.StepUpResponse, error)

	// StartImpersonation mints a scoped access token acting as the target.
	StartImpersonation(ctx context.Context, targetUserID, reason string) (api.ImpersonateResponse, error)

	// StopImpersonation reverts to the true actor and mints a replacement
	// access token.
	StopImpersonation(ctx context.Context) (api.ImpersonateResponse, error)

	PatchFeatureFlag(ctx context.Context, key string, req api.FeatureFlagPatchRequest) (domain.FeatureFlagRecord, error)
	PatchConfigItem(ctx context.Context, key string, req api.ConfigItemPatchRequest) (domain.ConfigItem, error)

	// AppendAudit records a console-originated audit entry. The store stamps
	// identity attribution and the timestamp.
	AppendAudit(ctx context.Context, req api.AuditAppendRequest) (domain.AuditLogEntry, error)

	RefreshMonitoring(ctx context.Context) (domain.MonitoringSnapshot, error)

	TriggerBackup(ctx context.Context, mode domain.BackupMode) (api.BackupResponse, error)
	TriggerRestore(ctx context.Context, req api.RestoreRequest) (api.RestoreResponse, error)
	ScheduleDeletion(ctx context.Context, req api.DeletionScheduleRequest) (domain.InfrastructureStatus, error)
	CancelDeletion(ctx context.Context) (domain.InfrastructureStatus, error)

	OverrideLicense(ctx context.Context, tier *domain.Tier) (domain.LicenseState, error)

	// Ping checks store reachability without authentication.
	Ping(ctx context.Context) error

	Close() error
}
