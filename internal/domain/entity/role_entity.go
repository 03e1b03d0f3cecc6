package entity

import "strings"

// Role represents an authorization role stored on a user.
// Anonymous callers have no role; they simply carry no valid token.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleManager       Role = "MANAGER"
	RoleAuthenticated Role = "AUTHENTICATED"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleAuthenticated}

// IsValid reports whether r is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAuthenticated:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole maps a role name to a Role. Matching ignores case and
// surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", false
	}
	return r, true
}

// RoleOrDefault returns the parsed role, or RoleAuthenticated when s is
// empty or unknown.
func RoleOrDefault(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return RoleAuthenticated
}

// RoleSet is the set of roles allowed to perform an operation.
type RoleSet []Role

var (
	// StaffRoles may read and edit user records.
	StaffRoles = RoleSet{RoleAdmin, RoleManager}
	// AdminOnly may create and delete user records and change roles.
	AdminOnly = RoleSet{RoleAdmin}
	// AnyRole admits every authenticated caller.
	AnyRole = RoleSet{RoleAdmin, RoleManager, RoleAuthenticated}
)

// Allows reports whether r is a member of the set.
func (s RoleSet) Allows(r Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}
