// Package tokens holds the console's credentials: the access token lives in
// process memory only, the refresh token is persisted to durable local
// storage. The store is an explicit, injectable object with a defined
// lifecycle (constructed at startup, disposed at logout) rather than
// module-level state, so tests cannot leak credentials into each other.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/localstore"
)

const refreshTokenKey = "refresh_token"

// Store keeps the current credential pair. Safe for concurrent use; the
// HTTP client reads the access token from arbitrary goroutines.
type Store struct {
	mu     sync.RWMutex
	access string
	repo   localstore.Repository
}

func NewStore(repo localstore.Repository) *Store {
	return &Store{repo: repo}
}

// SetTokens stores the access token in memory and, when refresh is
// non-empty, persists it durably. No network I/O happens here.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()

	if refresh == "" {
		return nil
	}
	if err := s.repo.Set(ctx, refreshTokenKey, refresh); err != nil {
		return fmt.Errorf("persisting refresh token: %w", err)
	}
	return nil
}

// SetAccessToken replaces only the in-memory access credential. Used when
// the store mints a scoped token (impersonation start/stop) without
// rotating the refresh credential.
func (s *Store) SetAccessToken(access string) {
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()
}

// AccessToken returns the current access credential, or ok=false when
// unauthenticated.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.access != ""
}

// StoredRefreshToken reads the persisted refresh credential. Returns
// ok=false when none is stored.
func (s *Store) StoredRefreshToken(ctx context.Context) (string, bool, error) {
	v, err := s.repo.Get(ctx, refreshTokenKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading refresh token: %w", err)
	}
	return v, v != "", nil
}

// ClearTokens wipes both credentials: memory immediately, durable storage
// best-effort (the error is returned but memory is cleared regardless).
func (s *Store) ClearTokens(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, refreshTokenKey); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}
