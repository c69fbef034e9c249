package services

import (
	"context"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
)

// VerifyStepUp submits a step-up code for the given action class. A rejected
// code is a business outcome, not an error; transport failures are errors.
// Success records the verification time for local freshness checks.
func (c *Console) VerifyStepUp(ctx context.Context, action common.StepUpAction, code string) (OpResult, error) {
	if _, _, err := c.requireActor(); err != nil {
		return OpResult{}, err
	}

	resp, err := c.client.VerifyStepUp(ctx, action, code)
	if err != nil {
		return OpResult{}, err
	}
	if !resp.Success {
		c.log.Warn(ctx, "step-up code rejected", "action", string(action))
		return OpResult{Success: false, Message: "verification code rejected"}, nil
	}

	at := resp.VerifiedAt
	if at.IsZero() {
		at = c.now()
	}
	c.state.MarkStepUpVerified(at)
	c.log.Info(ctx, "step-up verified", "action", string(action))
	return OpResult{Success: true, Message: "identity verified"}, nil
}

// IsStepUpValid reports whether the last step-up verification is still
// fresh. The window is evaluated against the wall clock at call time; an
// elapsed time of exactly the window is still fresh.
func (c *Console) IsStepUpValid() bool {
	at, ok := c.state.StepUpVerifiedAt()
	if !ok {
		return false
	}
	return c.now().Sub(at) <= common.StepUpValidityWindow
}
