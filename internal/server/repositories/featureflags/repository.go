// Package featureflags stores the tenant's feature flag set. The flag key
// space is closed; repositories only read and update rows that migrations
// created.
package featureflags

import (
	"context"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type Repository interface {
	// List returns every flag in the tenant in key order.
	List(ctx context.Context, tenantID string) ([]domain.FeatureFlagRecord, error)

	// Get returns one flag, or common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, tenantID, key string) (*domain.FeatureFlagRecord, error)

	// Update sets the flag value and records who changed it and when.
	Update(ctx context.Context, tenantID, key string, value bool, notes, byUserID string, at time.Time) error
}
