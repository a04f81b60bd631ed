// Package models - api_key.go defines the APIKey model for programmatic access.
package models

import "time"

// APIKey represents an API key for authentication
type APIKey struct {
	ID             string     `json:"id"`
	UserID         *string    `json:"user_id"`         // Optional: can be a service key
	OrganizationID *string    `json:"organization_id"` // Optional: keys scoped to an org
	Name           string     `json:"name"`            // Friendly name (e.g., "Import Pipeline Key")
	KeyPrefix      string     `json:"key_prefix"`      // First 10 chars for display (e.g., "fsn_abc123")
	KeyHash        string     `json:"-"`               // Bcrypt hash of the full key, never serialized
	Scopes         []string   `json:"scopes"`          // JSONB array: ["restaurants:read", "claims:review"]
	ExpiresAt      *time.Time `json:"expires_at"`
	LastUsedAt     *time.Time `json:"last_used_at"`
	CreatedAt      time.Time  `json:"created_at"`
	// Joined fields (not stored in api_keys table)
	UserName *string `json:"user_name,omitempty"`
}

// IsExpired reports whether the key has passed its expiry, if one is set.
func (k *APIKey) IsExpired() bool {
	return k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt)
}
