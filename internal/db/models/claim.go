// Package models - claim.go defines the Claim model: a user's request to be
// recognised as the owner of a restaurant. Claims move pending → approved or
// pending → denied; both outcomes are terminal.
package models

import "time"

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusDenied   = "denied"
)

// Default decision notes recorded when an administrator resolves a claim
// without supplying their own.
const (
	DefaultApprovalNotes = "Claim approved by administrator"
	DefaultDenialNotes   = "Claim denied by administrator"
)

// Claim represents an ownership claim on a restaurant
type Claim struct {
	ID            string     `json:"id"`
	RestaurantID  string     `json:"restaurant_id"`
	UserID        string     `json:"user_id"`
	Status        string     `json:"status"`
	Evidence      string     `json:"evidence"`
	ReviewedBy    *string    `json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	DecisionNotes *string    `json:"decision_notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the claim has been resolved. Terminal claims
// are immutable except for audit metadata.
func (c *Claim) IsTerminal() bool {
	return c.Status == ClaimStatusApproved || c.Status == ClaimStatusDenied
}

// ClaimWithContext joins a claim with the names an admin needs to review it.
type ClaimWithContext struct {
	Claim
	RestaurantName string `json:"restaurant_name"`
	RestaurantSlug string `json:"restaurant_slug"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
}
