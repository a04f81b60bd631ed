// Package models - organization.go defines the Organization model: the
// ownership container that a verified restaurant belongs to.
package models

import "time"

// Organization represents an ownership entity for verified restaurants
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`         // URL-safe name
	DisplayName string    `json:"display_name"` // Human-readable display name
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
