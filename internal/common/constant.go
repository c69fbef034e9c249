// Package common contains shared constants and sentinel errors used across
// the OwnCent admin console and the authoritative store.
package common

import "time"

const (
	// AuthorizationHeaderName carries the bearer access token on every
	// authenticated request.
	AuthorizationHeaderName = "Authorization"

	// TenantHeaderName carries the tenant identifier. The authoritative
	// store rejects authenticated requests without it.
	TenantHeaderName = "X-Tenant-Id"

	// BearerPrefix is the scheme prefix expected in the Authorization header.
	BearerPrefix = "Bearer "
)

// StepUpValidityWindow is how long a successful step-up verification stays
// fresh. Both the console gate and the authoritative store apply the same
// window; the store's check is the one that counts.
const StepUpValidityWindow = 5 * time.Minute

// DeletionConfirmationPhrase must be typed verbatim (case-insensitive, outer
// whitespace ignored) to schedule a full tenant deletion.
const DeletionConfirmationPhrase = "owncent-demo"

// StepUpAction classifies the sensitive operation a step-up verification is
// requested for. The store may apply different policies per class.
type StepUpAction string

const (
	StepUpActionImpersonation   StepUpAction = "impersonation"
	StepUpActionConfigEdit      StepUpAction = "config_edit"
	StepUpActionLicenseOverride StepUpAction = "license_override"
	StepUpActionRestore         StepUpAction = "restore"
	StepUpActionFullDeletion    StepUpAction = "full_deletion"
)
