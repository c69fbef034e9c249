package domain

import (
	"strings"
	"time"
)

// ConfigItem is one instance-level configuration entry. Masked items are
// never echoed in full to any client: editing one requires supplying a fresh
// full value (a blank value is a validation error, not "keep current").
// Items with RequiresStepUp reject edits when the step-up verification is
// stale.
type ConfigItem struct {
	Key                 string    `json:"key"`
	Value               string    `json:"value"`
	Encrypted           bool      `json:"encrypted"`
	Masked              bool      `json:"masked"`
	Description         string    `json:"description"`
	LastUpdatedAt       time.Time `json:"last_updated_at"`
	LastUpdatedByUserID string    `json:"last_updated_by_user_id,omitempty"`
	RequiresStepUp      bool      `json:"requires_step_up"`
}

// MaskValue renders a masked representation suitable for display, keeping at
// most the last four characters visible.
func MaskValue(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

// Redacted returns a copy safe to send to clients: masked values are
// replaced by their masked rendering.
func (c ConfigItem) Redacted() ConfigItem {
	if c.Masked {
		c.Value = MaskValue(c.Value)
	}
	return c
}
