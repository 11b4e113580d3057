// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level carried by a verified token.
type UserRole string

const (
	// RoleAdmin manages the category tree and every destructive catalog operation.
	RoleAdmin UserRole = "admin"

	// RoleSeller creates and maintains listings, manufacturers and categories.
	RoleSeller UserRole = "seller"

	// RoleCustomer browses the storefront.
	RoleCustomer UserRole = "customer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleSeller:
		return 30
	case RoleCustomer:
		return 10
	default:
		return 0
	}
}
