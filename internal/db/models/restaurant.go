// Package models - restaurant.go defines the Restaurant model, the central
// entity of the directory. Ownership fields (OwnerOrgID, VerifiedAt) are set
// exclusively by the claim-approval workflow.
package models

import "time"

// Restaurant represents a restaurant listing in the directory
type Restaurant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Zip         string     `json:"zip"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	HoursJSON   string     `json:"hours_json"`
	PriceRange  string     `json:"price_range"`
	CuisineTags []string   `json:"cuisine_tags"`
	OwnerOrgID  *string    `json:"owner_org_id"`
	VerifiedAt  *time.Time `json:"verified_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsVerified reports whether the restaurant has a confirmed owner.
// A verified restaurant always has a non-nil OwnerOrgID.
func (r *Restaurant) IsVerified() bool {
	return r.VerifiedAt != nil
}
