// Package models - soup.go defines the Soup model, a menu entry belonging to
// exactly one restaurant.
package models

import "time"

// AllWeekdays is the default availability for imported soups: available
// every day unless the source data says otherwise.
var AllWeekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Soup represents one soup on a restaurant's menu
type Soup struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SoupType      string    `json:"soup_type"`
	DietaryInfo   []string  `json:"dietary_info"`
	IsSeasonal    bool      `json:"is_seasonal"`
	AvailableDays []string  `json:"available_days"`
	CreatedAt     time.Time `json:"created_at"`
}
