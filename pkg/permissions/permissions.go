// Package permissions checks a user's permission list against required
// permissions, with wildcard support.
//
// Permission format:
//   - "*" - full access
//   - "resource.*" - all actions on a resource (e.g., "attendance.*")
//   - "resource.action" - specific action (e.g., "attendance.record")
package permissions

import (
	"strings"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "attendance.*" matches "attendance.read", "attendance.record", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true // No permission required
	}

	for _, p := range userPerms {
		if p == "*" {
			return true // Full admin access
		}
		if p == required {
			return true // Exact match
		}
		// Check wildcard patterns like "attendance.*"
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the user has all of the required permissions.
func HasAllPermissions(userPerms []string, required []string) bool {
	for _, req := range required {
		if !HasPermission(userPerms, req) {
			return false
		}
	}
	return true
}

// MergePermissions merges multiple permission sets, removing duplicates.
func MergePermissions(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}

// School roles
const (
	RoleAdmin     = "admin"
	RolePrincipal = "principal"
	RoleTeacher   = "teacher"
	RoleClerk     = "clerk"
)

// RolePermissions maps school roles to their default permission sets.
// Admins get everything; principals manage their branch's staff and
// attendance; clerks record attendance; teachers only read their own.
var RolePermissions = map[string][]string{
	RoleAdmin: {"*"},
	RolePrincipal: {
		"staff.read",
		"staff.write",
		"attendance.*",
		"reports.*",
	},
	RoleClerk: {
		"staff.read",
		"attendance.read",
		"attendance.record",
	},
	RoleTeacher: {
		"attendance.read",
	},
}

// ForRole returns the default permissions for a role. Unknown roles get
// nothing.
func ForRole(role string) []string {
	perms, ok := RolePermissions[role]
	if !ok {
		return nil
	}
	return perms
}

// KnownPermissions is the list of standard permissions used in SchoolHub.
var KnownPermissions = []string{
	// Staff directory
	"staff.read",
	"staff.write",
	"staff.delete",
	"staff.*",

	// Attendance
	"attendance.read",
	"attendance.record",
	"attendance.manage",
	"attendance.delete",
	"attendance.*",

	// Reports
	"reports.read",
	"reports.generate",
	"reports.*",

	// Admin
	"admin.settings",
	"admin.tenant.manage",
	"admin.*",

	// Full access
	"*",
}

// IsValidPermission checks if a permission string is in the known list.
// Allows wildcards and custom permissions that follow the resource.action pattern.
func IsValidPermission(perm string) bool {
	if perm == "*" {
		return true
	}

	for _, p := range KnownPermissions {
		if p == perm {
			return true
		}
	}

	parts := strings.Split(perm, ".")
	return len(parts) >= 2
}
