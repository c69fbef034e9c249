// Package domain holds the data model shared by the admin console core and
// the authoritative store: directory principals, roles and subscription
// tiers, feature flags, license state, configuration items, audit log
// entries, and infrastructure/monitoring records.
//
// Roles and tiers are closed enumerations, not free-form strings: an
// unrecognized value fails ParseRole/ParseTier instead of silently passing
// an authorization check.
package domain

import "fmt"

// Role is a directory principal's role inside a tenant. Role governs who may
// change system configuration; it is never derived from the impersonated
// identity.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleUser     Role = "user"
	RoleFamily   Role = "family"
	RoleReadonly Role = "readonly"
)

var validRoles = map[Role]struct{}{
	RoleOwner:    {},
	RoleManager:  {},
	RoleUser:     {},
	RoleFamily:   {},
	RoleReadonly: {},
}

// ParseRole validates a wire/database value against the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := validRoles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// IsAdmin reports whether the role grants admin console access.
func (r Role) IsAdmin() bool {
	return r == RoleOwner || r == RoleManager
}

func (r Role) String() string { return string(r) }
