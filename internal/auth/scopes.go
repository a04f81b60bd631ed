// Package auth - scopes.go defines permission scope constants for all directory resources
// and provides HasScope, HasAnyScope, and HasAllScopes helper functions for scope checking.
package auth

import (
	"fmt"
)

// Scope represents a permission/scope type
type Scope string

const (
	// Restaurant scopes
	ScopeRestaurantsRead  Scope = "restaurants:read"
	ScopeRestaurantsWrite Scope = "restaurants:write"

	// Soup scopes
	ScopeSoupsWrite Scope = "soups:write"

	// Claim review scope (approve/deny ownership claims)
	ScopeClaimsReview Scope = "claims:review"

	// User management scopes
	ScopeUsersRead  Scope = "users:read"
	ScopeUsersWrite Scope = "users:write"

	// Organization management scopes
	ScopeOrganizationsRead  Scope = "organizations:read"  // View organizations and members
	ScopeOrganizationsWrite Scope = "organizations:write" // Create, update, delete organizations and manage members

	// API key management scopes
	ScopeAPIKeysManage Scope = "api_keys:manage"

	// Audit log scopes
	ScopeAuditRead Scope = "audit:read"

	// Admin scope (wildcard - all permissions)
	ScopeAdmin Scope = "admin"
)

// AllScopes returns all valid scopes
func AllScopes() []Scope {
	return []Scope{
		ScopeRestaurantsRead,
		ScopeRestaurantsWrite,
		ScopeSoupsWrite,
		ScopeClaimsReview,
		ScopeUsersRead,
		ScopeUsersWrite,
		ScopeOrganizationsRead,
		ScopeOrganizationsWrite,
		ScopeAPIKeysManage,
		ScopeAuditRead,
		ScopeAdmin,
	}
}

// ValidScopes returns a map of valid scope strings
func ValidScopes() map[string]bool {
	validScopes := make(map[string]bool)
	for _, scope := range AllScopes() {
		validScopes[string(scope)] = true
	}
	return validScopes
}

// ValidateScopes checks if all provided scopes are valid
func ValidateScopes(scopes []string) error {
	validScopes := ValidScopes()

	for _, scope := range scopes {
		if !validScopes[scope] {
			return fmt.Errorf("invalid scope: %s", scope)
		}
	}

	return nil
}

// HasScope checks if a user has a required scope
// Supports wildcard admin scope
func HasScope(userScopes []string, required Scope) bool {
	requiredStr := string(required)

	for _, scope := range userScopes {
		// Check for exact match
		if scope == requiredStr {
			return true
		}

		// Check for admin wildcard
		if scope == string(ScopeAdmin) {
			return true
		}

		// Write/manage permission implies the matching read permission
		if required == ScopeRestaurantsRead && scope == string(ScopeRestaurantsWrite) {
			return true
		}
		if required == ScopeUsersRead && scope == string(ScopeUsersWrite) {
			return true
		}
		if required == ScopeOrganizationsRead && scope == string(ScopeOrganizationsWrite) {
			return true
		}
	}

	return false
}

// HasAnyScope checks if a user has at least one of the required scopes
func HasAnyScope(userScopes []string, required ...Scope) bool {
	for _, scope := range required {
		if HasScope(userScopes, scope) {
			return true
		}
	}
	return false
}

// HasAllScopes checks if a user has every one of the required scopes
func HasAllScopes(userScopes []string, required ...Scope) bool {
	for _, scope := range required {
		if !HasScope(userScopes, scope) {
			return false
		}
	}
	return true
}

// AdminScopes returns the scope set granted to is_admin users
func AdminScopes() []string {
	return []string{string(ScopeAdmin)}
}

// MemberScopes returns the scope set granted to ordinary signed-in users
func MemberScopes() []string {
	return []string{
		string(ScopeRestaurantsRead),
		string(ScopeOrganizationsRead),
	}
}
