// Package repositories implements the data access layer (repository pattern) for FindSoupNearMe.
// Each repository type encapsulates all database queries for a domain entity.
// Handlers never issue SQL directly: all database access goes through this layer, which keeps query logic testable in isolation.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
)

// RestaurantRepository handles restaurant database operations
type RestaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository creates a new RestaurantRepository
func NewRestaurantRepository(db *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// RestaurantFilters contains filters for searching restaurants
type RestaurantFilters struct {
	Query        string // matches name, city, or cuisine tags
	City         string
	State        string
	VerifiedOnly bool
}

// CreateRestaurant creates a new restaurant
func (r *RestaurantRepository) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	restaurant.ID = uuid.New().String()
	restaurant.CreatedAt = time.Now()
	restaurant.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(restaurant.CuisineTags)
	if err != nil {
		return fmt.Errorf("failed to marshal cuisine tags: %w", err)
	}
	if restaurant.HoursJSON == "" {
		restaurant.HoursJSON = "{}"
	}

	query := `
		INSERT INTO restaurants (id, name, slug, address, city, state, zip, latitude, longitude,
		                         phone, website, hours_json, price_range, cuisine_tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.ExecContext(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Slug,
		restaurant.Address,
		restaurant.City,
		restaurant.State,
		restaurant.Zip,
		restaurant.Latitude,
		restaurant.Longitude,
		restaurant.Phone,
		restaurant.Website,
		restaurant.HoursJSON,
		restaurant.PriceRange,
		tagsJSON,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}

	return nil
}

const restaurantColumns = `id, name, slug, address, city, state, zip, latitude, longitude,
	       phone, website, hours_json, price_range, cuisine_tags, owner_org_id, verified_at, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	var tagsJSON []byte

	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Slug,
		&restaurant.Address,
		&restaurant.City,
		&restaurant.State,
		&restaurant.Zip,
		&restaurant.Latitude,
		&restaurant.Longitude,
		&restaurant.Phone,
		&restaurant.Website,
		&restaurant.HoursJSON,
		&restaurant.PriceRange,
		&tagsJSON,
		&restaurant.OwnerOrgID,
		&restaurant.VerifiedAt,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &restaurant.CuisineTags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cuisine tags: %w", err)
	}

	return restaurant, nil
}

// GetRestaurantByID retrieves a restaurant by ID
func (r *RestaurantRepository) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1`, restaurantColumns)

	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return restaurant, nil
}

// GetRestaurantBySlug retrieves a restaurant by slug. When duplicate slugs
// exist the oldest row wins, matching the public directory's behavior.
func (r *RestaurantRepository) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE slug = $1 ORDER BY created_at ASC LIMIT 1`, restaurantColumns)

	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return restaurant, nil
}

// UpdateRestaurant updates a restaurant's directory fields. Ownership fields
// (owner_org_id, verified_at) are only written by the claim workflow.
func (r *RestaurantRepository) UpdateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	restaurant.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(restaurant.CuisineTags)
	if err != nil {
		return fmt.Errorf("failed to marshal cuisine tags: %w", err)
	}

	query := `
		UPDATE restaurants
		SET name = $2, slug = $3, address = $4, city = $5, state = $6, zip = $7,
		    latitude = $8, longitude = $9, phone = $10, website = $11,
		    hours_json = $12, price_range = $13, cuisine_tags = $14, updated_at = $15
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Slug,
		restaurant.Address,
		restaurant.City,
		restaurant.State,
		restaurant.Zip,
		restaurant.Latitude,
		restaurant.Longitude,
		restaurant.Phone,
		restaurant.Website,
		restaurant.HoursJSON,
		restaurant.PriceRange,
		tagsJSON,
		restaurant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteRestaurant deletes a restaurant and, via FK cascade, its soups
func (r *RestaurantRepository) DeleteRestaurant(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SearchRestaurants retrieves restaurants matching the filters with pagination,
// returning the matching page and the total match count
func (r *RestaurantRepository) SearchRestaurants(ctx context.Context, filters RestaurantFilters, limit, offset int) ([]*models.Restaurant, int, error) {
	whereClause := "WHERE 1=1"
	var args []interface{}
	argCount := 0

	if filters.Query != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR city ILIKE $%d OR cuisine_tags::text ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+filters.Query+"%")
	}

	if filters.City != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND city ILIKE $%d", argCount)
		args = append(args, filters.City)
	}

	if filters.State != "" {
		argCount++
		whereClause += fmt.Sprintf(" AND state ILIKE $%d", argCount)
		args = append(args, filters.State)
	}

	if filters.VerifiedOnly {
		whereClause += " AND verified_at IS NOT NULL"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM restaurants %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count restaurants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurants
		%s
		ORDER BY name ASC, created_at ASC
		LIMIT $%d OFFSET $%d
	`, restaurantColumns, whereClause, argCount+1, argCount+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]*models.Restaurant, 0)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return restaurants, total, nil
}
