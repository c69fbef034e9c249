package domain

import "time"

// Feature flag keys form a fixed set; mutations against any other key are
// validation errors.
const (
	FlagDebtOptimizer     = "debt_optimizer_enabled"
	FlagStrategySimulator = "strategy_simulator_enabled"
	FlagBankAPI           = "bank_api_enabled"
	FlagFamilyFeatures    = "family_features_enabled"
	FlagReports           = "reports_enabled"
)

// KnownFlagKeys lists every feature flag key in display order.
var KnownFlagKeys = []string{
	FlagDebtOptimizer,
	FlagStrategySimulator,
	FlagBankAPI,
	FlagFamilyFeatures,
	FlagReports,
}

// IsKnownFlagKey reports whether key belongs to the fixed flag set.
func IsKnownFlagKey(key string) bool {
	for _, k := range KnownFlagKeys {
		if k == key {
			return true
		}
	}
	return false
}

// FeatureFlagRecord is one feature flag. Value false disables the feature for
// everyone regardless of tier; Value true exposes it to effective sessions
// whose tier meets RequiredTier. Only roles listed in OverridableBy may
// change it, and never while an impersonation is active.
type FeatureFlagRecord struct {
	Key                string    `json:"key"`
	Description        string    `json:"description"`
	Value              bool      `json:"value"`
	OverridableBy      []Role    `json:"overridable_by"`
	RequiredTier       Tier      `json:"required_tier"`
	LastChangedAt      time.Time `json:"last_changed_at"`
	OverriddenByUserID string    `json:"overridden_by_user_id,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

// Overridable reports whether the given role may mutate this flag.
func (f FeatureFlagRecord) Overridable(r Role) bool {
	for _, allowed := range f.OverridableBy {
		if allowed == r {
			return true
		}
	}
	return false
}
