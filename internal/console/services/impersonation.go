package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// StartImpersonation switches the session to act as the target user. All
// preconditions are checked before any store call: the true actor must be the
// owner, no impersonation may already be active, and the step-up verification
// must be fresh. The store re-checks each one.
//
// On success the scoped access token replaces the in-memory credential (the
// refresh token stays the actor's) and the session is re-resolved so identity
// and aggregate change together.
func (c *Console) StartImpersonation(ctx context.Context, targetUserID, reason string) error {
	identity, impersonating, err := c.requireActor()
	if err != nil {
		return err
	}
	if impersonating {
		return common.ErrImpersonationActive
	}
	if identity.Role != domain.RoleOwner {
		return forbidden("impersonation requires the owner role")
	}
	if !c.IsStepUpValid() {
		return common.ErrStepUpStale
	}
	if targetUserID == "" {
		return fmt.Errorf("%w: target user id is required", common.ErrorValidation)
	}
	if targetUserID == identity.ID {
		return fmt.Errorf("%w: cannot impersonate yourself", common.ErrorValidation)
	}

	resp, err := c.client.StartImpersonation(ctx, targetUserID, reason)
	if err != nil {
		return err
	}

	c.tokens.SetAccessToken(resp.AccessToken)
	if err := c.resolveAndApply(ctx); err != nil {
		return err
	}

	c.log.Info(ctx, "impersonation started", "target_user_id", targetUserID)
	return nil
}

// StopImpersonation reverts the session to the true actor. The local session
// always leaves the impersonated state, even when the store cannot be
// reached: the scoped credential is dropped and the next request re-resolves
// as the actor through the refresh token.
func (c *Console) StopImpersonation(ctx context.Context) error {
	if _, ok := c.state.Impersonation(); !ok {
		return nil
	}

	resp, err := c.client.StopImpersonation(ctx)
	if err != nil {
		c.log.Warn(ctx, "remote impersonation stop failed, dropping scoped credential", "error", err)
		c.tokens.SetAccessToken("")
		c.state.Reset()
		return err
	}

	c.tokens.SetAccessToken(resp.AccessToken)
	if err := c.resolveAndApply(ctx); err != nil {
		return err
	}

	c.log.Info(ctx, "impersonation stopped")
	return nil
}
