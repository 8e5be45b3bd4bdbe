package auth

import "strings"

// RoleName is the canonical name of a role
type RoleName = string

const (
	// RoleAdmin grants administrative privilege
	RoleAdmin RoleName = "ADMIN"
	// RoleUser is the standard role, also the fallback for users
	// that carry no membership
	RoleUser RoleName = "USER"
)

// DefaultRole is the role claim substituted when a user has no
// role membership. Explicit fallback: a token is never issued
// without an authorization role.
const DefaultRole = RoleUser

// NormalizeRoleName trims and upper-cases a requested role name.
func NormalizeRoleName(name string) RoleName {
	return strings.ToUpper(strings.TrimSpace(name))
}

// IsAllowedRole checks the name against the allowed role set.
// Callers are expected to normalize first.
func IsAllowedRole(name RoleName) bool {
	switch name {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// AllRoles returns the allowed role names.
func AllRoles() []RoleName {
	return []RoleName{RoleAdmin, RoleUser}
}

// ParseRole normalizes a string and reports whether it is an allowed role.
func ParseRole(name string) (RoleName, bool) {
	role := NormalizeRoleName(name)
	return role, IsAllowedRole(role)
}
