// Package localstore is the console's durable client-side storage: a small
// SQLite key-value table holding data that must survive restarts, such as
// the refresh credential. Everything else the console keeps in memory.
package localstore

import "context"

// Repository is a tiny key-value contract over the local database.
// Get returns common.ErrorNotFound for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
