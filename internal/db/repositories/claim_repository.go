// claim_repository.go implements ClaimRepository, providing database queries
// for ownership claims. State transitions on claims happen inside the
// services.ClaimResolver transaction, not here; this layer covers creation
// and read paths.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
)

// ClaimRepository handles claim database operations
type ClaimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// ClaimFilters contains filters for listing claims
type ClaimFilters struct {
	Status       *string
	RestaurantID *string
	UserID       *string
}

// CreateClaim files a new pending claim. The partial unique index on
// (restaurant_id, user_id) WHERE status = 'pending' rejects a second live
// claim from the same user on the same restaurant.
func (r *ClaimRepository) CreateClaim(ctx context.Context, claim *models.Claim) error {
	claim.ID = uuid.New().String()
	claim.Status = models.ClaimStatusPending
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = claim.CreatedAt

	query := `
		INSERT INTO claims (id, restaurant_id, user_id, status, evidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		claim.ID,
		claim.RestaurantID,
		claim.UserID,
		claim.Status,
		claim.Evidence,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// GetClaimByID retrieves a claim by ID
func (r *ClaimRepository) GetClaimByID(ctx context.Context, id string) (*models.Claim, error) {
	query := `
		SELECT id, restaurant_id, user_id, status, evidence, reviewed_by, reviewed_at, decision_notes, created_at, updated_at
		FROM claims
		WHERE id = $1
	`

	claim := &models.Claim{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&claim.ID,
		&claim.RestaurantID,
		&claim.UserID,
		&claim.Status,
		&claim.Evidence,
		&claim.ReviewedBy,
		&claim.ReviewedAt,
		&claim.DecisionNotes,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// GetPendingClaim retrieves the live claim for a (restaurant, user) pair, if any
func (r *ClaimRepository) GetPendingClaim(ctx context.Context, restaurantID, userID string) (*models.Claim, error) {
	query := `
		SELECT id, restaurant_id, user_id, status, evidence, reviewed_by, reviewed_at, decision_notes, created_at, updated_at
		FROM claims
		WHERE restaurant_id = $1 AND user_id = $2 AND status = 'pending'
	`

	claim := &models.Claim{}
	err := r.db.QueryRowContext(ctx, query, restaurantID, userID).Scan(
		&claim.ID,
		&claim.RestaurantID,
		&claim.UserID,
		&claim.Status,
		&claim.Evidence,
		&claim.ReviewedBy,
		&claim.ReviewedAt,
		&claim.DecisionNotes,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending claim: %w", err)
	}

	return claim, nil
}

// ListClaims retrieves claims with optional filters and pagination, joined with
// the restaurant and claimant details an admin needs to review them
func (r *ClaimRepository) ListClaims(ctx context.Context, filters ClaimFilters, limit, offset int) ([]*models.ClaimWithContext, int, error) {
	whereClause := "WHERE 1=1"
	var args []interface{}
	argCount := 0

	if filters.Status != nil {
		argCount++
		whereClause += fmt.Sprintf(" AND c.status = $%d", argCount)
		args = append(args, *filters.Status)
	}

	if filters.RestaurantID != nil {
		argCount++
		whereClause += fmt.Sprintf(" AND c.restaurant_id = $%d", argCount)
		args = append(args, *filters.RestaurantID)
	}

	if filters.UserID != nil {
		argCount++
		whereClause += fmt.Sprintf(" AND c.user_id = $%d", argCount)
		args = append(args, *filters.UserID)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM claims c %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count claims: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.restaurant_id, c.user_id, c.status, c.evidence, c.reviewed_by, c.reviewed_at,
		       c.decision_notes, c.created_at, c.updated_at,
		       r.name AS restaurant_name, r.slug AS restaurant_slug,
		       u.name AS user_name, u.email AS user_email
		FROM claims c
		JOIN restaurants r ON c.restaurant_id = r.id
		JOIN users u ON c.user_id = u.id
		%s
		ORDER BY c.created_at ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount+1, argCount+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := make([]*models.ClaimWithContext, 0)
	for rows.Next() {
		claim := &models.ClaimWithContext{}
		err := rows.Scan(
			&claim.ID,
			&claim.RestaurantID,
			&claim.UserID,
			&claim.Status,
			&claim.Evidence,
			&claim.ReviewedBy,
			&claim.ReviewedAt,
			&claim.DecisionNotes,
			&claim.CreatedAt,
			&claim.UpdatedAt,
			&claim.RestaurantName,
			&claim.RestaurantSlug,
			&claim.UserName,
			&claim.UserEmail,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating claims: %w", err)
	}

	return claims, total, nil
}
