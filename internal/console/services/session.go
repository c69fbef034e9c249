package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
)

// LoginStep tells the caller what to do after a Login call.
type LoginStep int

const (
	// LoginCompleted means the session is resolved and the aggregate loaded.
	LoginCompleted LoginStep = iota
	// LoginTwoFactorRequired means the login must be finished with
	// CompleteTwoFactor using the returned challenge id.
	LoginTwoFactorRequired
)

// LoginResult is the outcome of a successful first-phase login.
type LoginResult struct {
	Step        LoginStep
	ChallengeID string
}

// Login authenticates with username/password. Depending on the account it
// either completes the session immediately or returns a two-factor challenge;
// no local state changes until the session is fully resolved.
func (c *Console) Login(ctx context.Context, username, password string) (LoginResult, error) {
	resp, err := c.client.Login(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}

	if resp.TwoFactorRequired() {
		return LoginResult{Step: LoginTwoFactorRequired, ChallengeID: resp.ChallengeID}, nil
	}

	if err := c.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return LoginResult{}, err
	}
	if err := c.resolveAndApply(ctx); err != nil {
		return LoginResult{}, err
	}

	c.log.Info(ctx, "login completed", "username", username)
	return LoginResult{Step: LoginCompleted}, nil
}

// CompleteTwoFactor finishes a challenged login with the second-factor code.
func (c *Console) CompleteTwoFactor(ctx context.Context, challengeID, code string) error {
	resp, err := c.client.VerifyTwoFactor(ctx, challengeID, code)
	if err != nil {
		return err
	}

	if err := c.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return err
	}
	if err := c.resolveAndApply(ctx); err != nil {
		return err
	}

	c.log.Info(ctx, "two-factor login completed")
	return nil
}

// LoadSession resolves the session from whatever credentials survive a
// restart (the persisted refresh token) and loads the aggregate. A failure
// leaves the console unauthenticated, never half-resolved.
func (c *Console) LoadSession(ctx context.Context) error {
	return c.resolveAndApply(ctx)
}

// resolveAndApply fetches the session identity and the bootstrap snapshot and
// installs them atomically. Identity and aggregate are applied together or
// not at all: a partial failure resets the console to the signed-out state.
func (c *Console) resolveAndApply(ctx context.Context) error {
	sess, err := c.client.Session(ctx)
	if err != nil {
		c.teardown(ctx, err)
		return fmt.Errorf("resolving session: %w", err)
	}

	snap, err := c.client.Bootstrap(ctx)
	if err != nil {
		c.teardown(ctx, err)
		return fmt.Errorf("loading bootstrap snapshot: %w", err)
	}

	c.state.ApplyResolved(sess.Identity, sess.Impersonation, snap)
	return nil
}

// teardown drops local session state after a failed resolution. Stored
// credentials are wiped only when the store said they are no good; a network
// blip must not force a fresh login.
func (c *Console) teardown(ctx context.Context, cause error) {
	c.state.Reset()
	if errors.Is(cause, common.ErrorUnauthorized) {
		if err := c.tokens.ClearTokens(ctx); err != nil {
			c.log.Warn(ctx, "clearing credentials failed", "error", err)
		}
	}
}

// Logout revokes the refresh credential best-effort and unconditionally
// clears all local state. Logout never fails from the user's point of view.
func (c *Console) Logout(ctx context.Context) {
	refresh, ok, err := c.tokens.StoredRefreshToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "reading refresh token for logout failed", "error", err)
	}
	if ok {
		if err := c.client.Logout(ctx, refresh); err != nil {
			c.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	if err := c.tokens.ClearTokens(ctx); err != nil {
		c.log.Warn(ctx, "clearing credentials failed", "error", err)
	}
	c.state.Reset()
	c.log.Info(ctx, "logged out")
}
