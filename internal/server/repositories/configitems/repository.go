// Package configitems stores instance-level configuration entries. Values
// are stored in clear here; masking is applied at the API edge, and the
// Encrypted marker is metadata for the (out of scope) at-rest encryption
// layer.
package configitems

import (
	"context"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

type Repository interface {
	// List returns every config item in the tenant in key order, unredacted.
	List(ctx context.Context, tenantID string) ([]domain.ConfigItem, error)

	// Get returns one item, or common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, tenantID, key string) (*domain.ConfigItem, error)

	// Update replaces the value and records who changed it and when.
	Update(ctx context.Context, tenantID, key, value, byUserID string, at time.Time) error
}
