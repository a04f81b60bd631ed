// stats_repository.go implements StatsRepository, the read-only diagnostics
// queries behind the admin dashboard and the data-quality job. Built on sqlx
// so aggregate rows scan straight into tagged structs.
package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StatsRepository handles read-only aggregate queries
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// SlugGroup is one duplicated slug and how many restaurants share it
type SlugGroup struct {
	Slug  string `db:"slug" json:"slug"`
	Count int64  `db:"count" json:"count"`
}

// OrphanSoup is a soup row whose restaurant no longer exists
type OrphanSoup struct {
	SoupID       string `db:"soup_id" json:"soup_id"`
	RestaurantID string `db:"restaurant_id" json:"restaurant_id"`
	Name         string `db:"name" json:"name"`
}

// CoverageStats summarises how much of the directory has menu data
type CoverageStats struct {
	RestaurantsTotal     int64   `db:"restaurants_total" json:"restaurants_total"`
	RestaurantsWithSoups int64   `db:"restaurants_with_soups" json:"restaurants_with_soups"`
	SoupCoverageRatio    float64 `json:"soup_coverage_ratio"`
	WithCuisineTags      int64   `db:"with_cuisine_tags" json:"with_cuisine_tags"`
}

// DashboardCounts holds the headline counts for the admin dashboard
type DashboardCounts struct {
	Restaurants         int64 `db:"restaurant_count" json:"restaurants"`
	VerifiedRestaurants int64 `db:"verified_count" json:"verified_restaurants"`
	Soups               int64 `db:"soup_count" json:"soups"`
	ClaimsPending       int64 `db:"claims_pending" json:"claims_pending"`
	ClaimsApproved      int64 `db:"claims_approved" json:"claims_approved"`
	ClaimsDenied        int64 `db:"claims_denied" json:"claims_denied"`
	Organizations       int64 `db:"org_count" json:"organizations"`
	Users               int64 `db:"user_count" json:"users"`
}

// DuplicateSlugs returns every slug shared by more than one restaurant.
// The import pipeline never rejects duplicates, so this is the place
// they surface.
func (r *StatsRepository) DuplicateSlugs(ctx context.Context) ([]SlugGroup, error) {
	query := `
		SELECT slug, COUNT(*) AS count
		FROM restaurants
		GROUP BY slug
		HAVING COUNT(*) > 1
		ORDER BY count DESC, slug ASC
	`

	groups := make([]SlugGroup, 0)
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("failed to query duplicate slugs: %w", err)
	}

	return groups, nil
}

// OrphanSoups returns soups whose restaurant row is missing. The FK should
// make this impossible; a non-empty result means rows were loaded around it.
func (r *StatsRepository) OrphanSoups(ctx context.Context) ([]OrphanSoup, error) {
	query := `
		SELECT s.id AS soup_id, s.restaurant_id, s.name
		FROM soups s
		LEFT JOIN restaurants r ON s.restaurant_id = r.id
		WHERE r.id IS NULL
		ORDER BY s.created_at ASC
	`

	orphans := make([]OrphanSoup, 0)
	if err := r.db.SelectContext(ctx, &orphans, query); err != nil {
		return nil, fmt.Errorf("failed to query orphan soups: %w", err)
	}

	return orphans, nil
}

// Coverage returns soup and cuisine-tag coverage across the directory
func (r *StatsRepository) Coverage(ctx context.Context) (*CoverageStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM restaurants) AS restaurants_total,
			(SELECT COUNT(DISTINCT restaurant_id) FROM soups) AS restaurants_with_soups,
			(SELECT COUNT(*) FROM restaurants WHERE jsonb_array_length(cuisine_tags) > 0) AS with_cuisine_tags
	`

	stats := &CoverageStats{}
	if err := r.db.GetContext(ctx, stats, query); err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}

	if stats.RestaurantsTotal > 0 {
		stats.SoupCoverageRatio = float64(stats.RestaurantsWithSoups) / float64(stats.RestaurantsTotal)
	}

	return stats, nil
}

// DashboardStats returns the headline counts in a single round-trip
func (r *StatsRepository) DashboardStats(ctx context.Context) (*DashboardCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM restaurants) AS restaurant_count,
			(SELECT COUNT(*) FROM restaurants WHERE verified_at IS NOT NULL) AS verified_count,
			(SELECT COUNT(*) FROM soups) AS soup_count,
			(SELECT COUNT(*) FROM claims WHERE status = 'pending') AS claims_pending,
			(SELECT COUNT(*) FROM claims WHERE status = 'approved') AS claims_approved,
			(SELECT COUNT(*) FROM claims WHERE status = 'denied') AS claims_denied,
			(SELECT COUNT(*) FROM organizations) AS org_count,
			(SELECT COUNT(*) FROM users) AS user_count
	`

	counts := &DashboardCounts{}
	if err := r.db.GetContext(ctx, counts, query); err != nil {
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}

	return counts, nil
}
