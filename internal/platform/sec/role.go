// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sec

import "strings"

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Full access, including news publishing.
	RoleAdmin UserRole = "ADMIN"

	// Can publish news posts.
	RoleEditor UserRole = "EDITOR"

	// Default role for registered shoppers. Only this role may subscribe.
	RoleUser UserRole = "USER"
)

// ParseRole normalizes a role string from the wire. Unknown values map to "".
func ParseRole(raw string) UserRole {
	switch role := UserRole(strings.ToUpper(strings.TrimSpace(raw))); role {
	case RoleAdmin, RoleEditor, RoleUser:
		return role
	default:
		return ""
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
