// Package stepups stores the latest step-up verification per principal. The
// store re-checks freshness on every gated mutation; the console's local
// check alone is never trusted.
package stepups

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
)

type Repository interface {
	// Upsert records a successful verification, replacing any previous one
	// for the same principal.
	Upsert(ctx context.Context, v *models.StepUpVerification) error

	// Latest returns the most recent verification for the principal, or
	// common.ErrorNotFound when the principal never verified.
	Latest(ctx context.Context, userID string) (*models.StepUpVerification, error)

	// Clear drops the principal's verification, used on logout.
	Clear(ctx context.Context, userID string) error
}
