// Package principals declares the repository contract for directory
// principals.
package principals

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
)

// Repository defines read access to the principal directory. Principals are
// provisioned by migrations or an out-of-band directory sync; the admin
// console never creates them.
type Repository interface {
	// GetByUsername returns the principal with the given username inside the
	// tenant, or common.ErrorNotFound.
	GetByUsername(ctx context.Context, tenantID, username string) (*models.Principal, error)

	// GetByID returns the principal by id inside the tenant, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, tenantID, id string) (*models.Principal, error)

	// List returns every principal in the tenant ordered by username.
	List(ctx context.Context, tenantID string) ([]*models.Principal, error)
}
