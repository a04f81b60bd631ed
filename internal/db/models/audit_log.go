// Package models - audit_log.go defines the AuditLog model for recording
// administrative mutations, capturing actor, action, affected resource,
// client IP, and arbitrary metadata. Rows are append-only.
package models

import "time"

// Audit actions written by the claim-resolution workflow.
const (
	AuditActionClaimApprove = "claim.approve"
	AuditActionClaimDeny    = "claim.deny"
)

// AuditLog represents an audit log entry for tracking admin actions
type AuditLog struct {
	ID             string                 `json:"id"`
	ActorUserID    *string                `json:"actor_user_id"` // Nullable for system actions
	OrganizationID *string                `json:"organization_id"`
	Action         string                 `json:"action"`        // "claim.approve", "restaurant.delete", ...
	ResourceType   *string                `json:"resource_type"` // "claim", "restaurant", "user", ...
	ResourceID     *string                `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata"` // JSONB: additional context
	IPAddress      *string                `json:"ip_address"`
	CreatedAt      time.Time              `json:"created_at"`
}
