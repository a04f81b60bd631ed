// Package models - organization_member.go defines user-to-organization
// membership, including the member's role within the organization.
package models

import "time"

// Membership roles.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleMember  = "member"
)

// OrganizationMember represents a user's membership in an organization
type OrganizationMember struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	RoleInOrg      string    `json:"role_in_org"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrganizationMemberWithUser includes user details for display
type OrganizationMemberWithUser struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	RoleInOrg      string    `json:"role_in_org"`
	CreatedAt      time.Time `json:"created_at"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
}
