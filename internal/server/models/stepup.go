package models

import (
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
)

// StepUpVerification records the latest successful step-up per principal.
// Freshness is always evaluated against VerifiedAt at decision time.
type StepUpVerification struct {
	UserID     string
	Action     common.StepUpAction
	VerifiedAt time.Time
}
