// Package challenges stores pending two-factor login challenges.
package challenges

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
)

type Repository interface {
	// Create stores a pending challenge.
	Create(ctx context.Context, ch *models.TwoFactorChallenge) error

	// Find returns the challenge by id, or common.ErrorNotFound.
	Find(ctx context.Context, id string) (*models.TwoFactorChallenge, error)

	// Delete removes a challenge. Challenges are single-use: the redeeming
	// transaction deletes the row whether verification succeeds or fails.
	Delete(ctx context.Context, id string) error
}
