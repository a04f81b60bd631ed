// soup_repository.go implements SoupRepository, providing database queries for
// soups attached to restaurant listings.
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

// SoupRepository handles soup database operations
type SoupRepository struct {
	db *sql.DB
}

// NewSoupRepository creates a new SoupRepository
func NewSoupRepository(db *sql.DB) *SoupRepository {
	return &SoupRepository{db: db}
}

// CreateSoup creates a new soup for a restaurant
func (r *SoupRepository) CreateSoup(ctx context.Context, soup *models.Soup) error {
	soup.ID = uuid.New().String()
	soup.CreatedAt = time.Now()

	dietaryJSON, err := json.Marshal(soup.DietaryInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal dietary info: %w", err)
	}
	daysJSON, err := json.Marshal(soup.AvailableDays)
	if err != nil {
		return fmt.Errorf("failed to marshal available days: %w", err)
	}

	query := `
		INSERT INTO soups (id, restaurant_id, name, description, soup_type, dietary_info, is_seasonal, available_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		soup.ID,
		soup.RestaurantID,
		soup.Name,
		soup.Description,
		soup.SoupType,
		dietaryJSON,
		soup.IsSeasonal,
		daysJSON,
		soup.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create soup: %w", err)
	}

	return nil
}

// GetSoupByID retrieves a soup by ID
func (r *SoupRepository) GetSoupByID(ctx context.Context, id string) (*models.Soup, error) {
	query := `
		SELECT id, restaurant_id, name, description, soup_type, dietary_info, is_seasonal, available_days, created_at
		FROM soups
		WHERE id = $1
	`

	soup := &models.Soup{}
	var dietaryJSON, daysJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&soup.ID,
		&soup.RestaurantID,
		&soup.Name,
		&soup.Description,
		&soup.SoupType,
		&dietaryJSON,
		&soup.IsSeasonal,
		&daysJSON,
		&soup.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get soup: %w", err)
	}

	if err := json.Unmarshal(dietaryJSON, &soup.DietaryInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dietary info: %w", err)
	}
	if err := json.Unmarshal(daysJSON, &soup.AvailableDays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal available days: %w", err)
	}

	return soup, nil
}

// ListSoupsByRestaurant retrieves all soups on a restaurant's menu
func (r *SoupRepository) ListSoupsByRestaurant(ctx context.Context, restaurantID string) ([]*models.Soup, error) {
	query := `
		SELECT id, restaurant_id, name, description, soup_type, dietary_info, is_seasonal, available_days, created_at
		FROM soups
		WHERE restaurant_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list soups: %w", err)
	}
	defer rows.Close()

	soups := make([]*models.Soup, 0)
	for rows.Next() {
		soup := &models.Soup{}
		var dietaryJSON, daysJSON []byte

		err := rows.Scan(
			&soup.ID,
			&soup.RestaurantID,
			&soup.Name,
			&soup.Description,
			&soup.SoupType,
			&dietaryJSON,
			&soup.IsSeasonal,
			&daysJSON,
			&soup.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan soup: %w", err)
		}

		if err := json.Unmarshal(dietaryJSON, &soup.DietaryInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dietary info: %w", err)
		}
		if err := json.Unmarshal(daysJSON, &soup.AvailableDays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal available days: %w", err)
		}

		soups = append(soups, soup)
	}

	return soups, rows.Err()
}

// UpdateSoup updates a soup's menu fields. The owning restaurant never
// changes through an update.
func (r *SoupRepository) UpdateSoup(ctx context.Context, soup *models.Soup) error {
	dietaryJSON, err := json.Marshal(soup.DietaryInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal dietary info: %w", err)
	}
	daysJSON, err := json.Marshal(soup.AvailableDays)
	if err != nil {
		return fmt.Errorf("failed to marshal available days: %w", err)
	}

	query := `
		UPDATE soups
		SET name = $2, description = $3, soup_type = $4, dietary_info = $5,
		    is_seasonal = $6, available_days = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		soup.ID,
		soup.Name,
		soup.Description,
		soup.SoupType,
		dietaryJSON,
		soup.IsSeasonal,
		daysJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update soup: %w", err)
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

// DeleteSoup deletes a soup
func (r *SoupRepository) DeleteSoup(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM soups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete soup: %w", err)
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
