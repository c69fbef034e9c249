// Package authz contains the authorization gate for the admin console: a set
// of pure predicates over the current actor, impersonation state, license,
// and feature flags.
//
// Two separate questions are answered here and must never be conflated:
// role governs who may change system configuration, tier governs what the
// current (possibly impersonated) viewer is entitled to see. Administrative
// predicates therefore always take the TRUE actor's role; tier gating uses
// the effective session.
package authz

import (
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Decision is the result of a gate predicate: allow/deny plus a
// display-ready reason for denials.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CanAccessAdmin reports whether the actor may open the admin console at all.
func CanAccessAdmin(actorRole domain.Role) Decision {
	if !actorRole.IsAdmin() {
		return deny("admin access requires the owner or manager role")
	}
	return allow()
}

// CanManageUsers gates the users directory. Requires an admin role and no
// active impersonation.
func CanManageUsers(actorRole domain.Role, impersonating bool) Decision {
	if !actorRole.IsAdmin() {
		return deny("managing users requires the owner or manager role")
	}
	if impersonating {
		return deny("not allowed while an impersonation is active")
	}
	return allow()
}

// CanModifyConfig gates configuration edits. Owner-only, never while
// impersonating.
func CanModifyConfig(actorRole domain.Role, impersonating bool) Decision {
	if actorRole != domain.RoleOwner {
		return deny("modifying configuration requires the owner role")
	}
	if impersonating {
		return deny("not allowed while an impersonation is active")
	}
	return allow()
}

// CanRunCriticalOps gates license overrides, restores, and deletion
// scheduling. Owner-only, never while impersonating.
func CanRunCriticalOps(actorRole domain.Role, impersonating bool) Decision {
	if actorRole != domain.RoleOwner {
		return deny("critical operations require the owner role")
	}
	if impersonating {
		return deny("not allowed while an impersonation is active")
	}
	return allow()
}

// CanMutateFlag gates feature flag changes: the actor's role must be listed
// in the flag's OverridableBy set, and no impersonation may be active.
func CanMutateFlag(flag domain.FeatureFlagRecord, actorRole domain.Role, impersonating bool) Decision {
	if !flag.Overridable(actorRole) {
		return deny("role " + actorRole.String() + " may not change flag " + flag.Key)
	}
	if impersonating {
		return deny("not allowed while an impersonation is active")
	}
	return allow()
}

// CanEditConfigItem gates edits of a single config item. In addition to the
// owner/no-impersonation rule, items marked RequiresStepUp demand a fresh
// step-up verification, which the caller evaluates at call time and passes
// in.
func CanEditConfigItem(item domain.ConfigItem, actorRole domain.Role, impersonating bool, stepUpFresh bool) Decision {
	if d := CanModifyConfig(actorRole, impersonating); !d.Allowed {
		return d
	}
	if item.RequiresStepUp && !stepUpFresh {
		return deny("step-up verification required or expired")
	}
	return allow()
}

// FeatureAvailable decides whether the effective session sees the feature
// behind flag:
//
//  1. A disabled flag (Value false) is unavailable to everyone.
//  2. An active license override makes it available unconditionally — the
//     explicit support escape hatch.
//  3. Otherwise the effective tier must meet the flag's required tier and
//     the license feature sub-map must not explicitly disable the
//     capability.
func FeatureAvailable(flag domain.FeatureFlagRecord, license domain.LicenseState, effective domain.SessionInfo) bool {
	if !flag.Value {
		return false
	}
	if license.OverrideActive && license.OverrideTier != "" {
		return true
	}
	if !effective.Tier.Meets(flag.RequiredTier) {
		return false
	}
	if license.FeatureDisabled(flag.Key) {
		return false
	}
	return true
}
