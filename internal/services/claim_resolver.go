// Package services implements higher-level business logic that coordinates across multiple repositories and tables.
// The claim resolver, for example, orchestrates approving an ownership claim: flipping the claim status, resolving or creating the claimant's organization, verifying the restaurant, and writing the audit trail. Those steps must land atomically.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/importer"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/telemetry"
)

// Sentinel errors returned by the claim workflow. Handlers map these to
// HTTP status codes; anything else is an internal persistence failure.
var (
	ErrClaimNotFound   = errors.New("claim not found")
	ErrClaimNotPending = errors.New("claim is not pending")
	ErrValidation      = errors.New("validation failed")
)

// ClaimResolver resolves ownership claims. It holds an explicit database
// handle so every decision runs in a transaction it controls.
type ClaimResolver struct {
	db *sqlx.DB
}

// NewClaimResolver creates a new ClaimResolver
func NewClaimResolver(db *sqlx.DB) *ClaimResolver {
	return &ClaimResolver{db: db}
}

// ApprovalResult describes the outcome of an approved claim
type ApprovalResult struct {
	ClaimID        string `json:"claim_id"`
	RestaurantID   string `json:"restaurant_id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"org_id"`
	OrgCreated     bool   `json:"org_created"`
}

// claimRow is the claim joined with the names needed for org creation
type claimRow struct {
	ID             string `db:"id"`
	RestaurantID   string `db:"restaurant_id"`
	UserID         string `db:"user_id"`
	Status         string `db:"status"`
	RestaurantName string `db:"restaurant_name"`
	UserName       string `db:"user_name"`
}

// ApproveClaim approves a pending claim, assigning ownership of the
// restaurant to the claimant's organization. The supplied restaurantID and
// userID must match the claim row; a mismatch means the admin is acting on
// stale data and nothing is written. Empty notes fall back to
// models.DefaultApprovalNotes so every resolved claim carries a decision note.
//
// All writes happen in one transaction. The status flip is a conditional
// update so two concurrent approvals cannot both succeed.
func (s *ClaimResolver) ApproveClaim(ctx context.Context, claimID, restaurantID, userID, actorID, notes string) (*ApprovalResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	claim, err := loadClaim(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.RestaurantID != restaurantID {
		return nil, fmt.Errorf("%w: restaurant_id does not match claim", ErrValidation)
	}
	if claim.UserID != userID {
		return nil, fmt.Errorf("%w: user_id does not match claim", ErrValidation)
	}

	if notes == "" {
		notes = models.DefaultApprovalNotes
	}
	now := time.Now()

	// Race-free terminal check: only a pending claim flips to approved.
	result, err := tx.ExecContext(ctx, `
		UPDATE claims
		SET status = 'approved', reviewed_by = $2, reviewed_at = $3, decision_notes = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`, claimID, actorID, now, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to approve claim: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check claim update: %w", err)
	}
	if rows == 0 {
		return nil, ErrClaimNotPending
	}

	orgID, orgCreated, err := resolveOwnerOrg(ctx, tx, claim, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE restaurants
		SET owner_org_id = $2, verified_at = $3, updated_at = $3
		WHERE id = $1
	`, claim.RestaurantID, orgID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to verify restaurant: %w", err)
	}

	err = writeAuditLog(ctx, tx, actorID, orgID, models.AuditActionClaimApprove, claimID, map[string]interface{}{
		"claim_id":      claimID,
		"restaurant_id": claim.RestaurantID,
		"user_id":       claim.UserID,
		"org_id":        orgID,
		"org_created":   orgCreated,
		"notes":         notes,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	telemetry.ClaimDecisionsTotal.WithLabelValues("approved").Inc()
	slog.Info("claim approved",
		"claim_id", claimID,
		"restaurant_id", claim.RestaurantID,
		"org_id", orgID,
		"org_created", orgCreated,
		"actor_id", actorID)

	return &ApprovalResult{
		ClaimID:        claimID,
		RestaurantID:   claim.RestaurantID,
		UserID:         claim.UserID,
		OrganizationID: orgID,
		OrgCreated:     orgCreated,
	}, nil
}

// DenyClaim denies a pending claim. Unlike approval this has no restaurant
// or organization side effects; only the claim row and the audit trail change.
func (s *ClaimResolver) DenyClaim(ctx context.Context, claimID, actorID, notes string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	claim, err := loadClaim(ctx, tx, claimID)
	if err != nil {
		return err
	}

	if notes == "" {
		notes = models.DefaultDenialNotes
	}
	now := time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE claims
		SET status = 'denied', reviewed_by = $2, reviewed_at = $3, decision_notes = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`, claimID, actorID, now, notes)
	if err != nil {
		return fmt.Errorf("failed to deny claim: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check claim update: %w", err)
	}
	if rows == 0 {
		return ErrClaimNotPending
	}

	err = writeAuditLog(ctx, tx, actorID, "", models.AuditActionClaimDeny, claimID, map[string]interface{}{
		"claim_id":      claimID,
		"restaurant_id": claim.RestaurantID,
		"user_id":       claim.UserID,
		"notes":         notes,
	}, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit denial: %w", err)
	}

	telemetry.ClaimDecisionsTotal.WithLabelValues("denied").Inc()
	slog.Info("claim denied", "claim_id", claimID, "actor_id", actorID)

	return nil
}

// CreateClaim files a new pending claim on behalf of a signed-in user
func (s *ClaimResolver) CreateClaim(ctx context.Context, restaurantID, userID, evidence string) (*models.Claim, error) {
	var verifiedAt *time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT verified_at FROM restaurants WHERE id = $1`, restaurantID,
	).Scan(&verifiedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: restaurant does not exist", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up restaurant: %w", err)
	}
	if verifiedAt != nil {
		return nil, fmt.Errorf("%w: restaurant is already verified", ErrValidation)
	}

	var existing int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE restaurant_id = $1 AND user_id = $2 AND status = 'pending'`,
		restaurantID, userID,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing claims: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: a pending claim already exists for this restaurant", ErrValidation)
	}

	claim := &models.Claim{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		UserID:       userID,
		Status:       models.ClaimStatusPending,
		Evidence:     evidence,
		CreatedAt:    time.Now(),
	}
	claim.UpdatedAt = claim.CreatedAt

	// The partial unique index on (restaurant_id, user_id) WHERE pending
	// closes the race between the count above and this insert.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims (id, restaurant_id, user_id, status, evidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, claim.ID, claim.RestaurantID, claim.UserID, claim.Status, claim.Evidence, claim.CreatedAt, claim.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	slog.Info("claim filed", "claim_id", claim.ID, "restaurant_id", restaurantID, "user_id", userID)

	return claim, nil
}

func loadClaim(ctx context.Context, tx *sqlx.Tx, claimID string) (*claimRow, error) {
	claim := &claimRow{}
	err := tx.GetContext(ctx, claim, `
		SELECT c.id, c.restaurant_id, c.user_id, c.status,
		       r.name AS restaurant_name, u.name AS user_name
		FROM claims c
		JOIN restaurants r ON c.restaurant_id = r.id
		JOIN users u ON c.user_id = u.id
		WHERE c.id = $1
	`, claimID)
	if err == sql.ErrNoRows {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claim: %w", err)
	}
	return claim, nil
}

// resolveOwnerOrg finds the claimant's organization, creating one when the
// user has no memberships. The earliest membership wins for multi-org users.
func resolveOwnerOrg(ctx context.Context, tx *sqlx.Tx, claim *claimRow, now time.Time) (orgID string, created bool, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT o.id
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY m.created_at ASC
		LIMIT 1
	`, claim.UserID).Scan(&orgID)
	if err == nil {
		return orgID, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("failed to resolve organization: %w", err)
	}

	// Org names are unique; suffix with a fragment of the new id so a
	// second restaurant with the same name never collides.
	orgID = uuid.New().String()
	base := importer.Slugify(claim.RestaurantName)
	if base == "" {
		base = importer.Slugify(claim.UserName)
	}
	if base == "" {
		base = "org"
	}
	name := fmt.Sprintf("%s-%s", base, orgID[:8])
	displayName := claim.RestaurantName
	if displayName == "" {
		displayName = claim.UserName
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organizations (id, name, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, orgID, name, displayName, now)
	if err != nil {
		return "", false, fmt.Errorf("failed to create organization: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, role_in_org, created_at)
		VALUES ($1, $2, $3, $4)
	`, orgID, claim.UserID, models.RoleOwner, now)
	if err != nil {
		return "", false, fmt.Errorf("failed to add organization owner: %w", err)
	}

	return orgID, true, nil
}

func writeAuditLog(ctx context.Context, tx *sqlx.Tx, actorID, orgID, action, claimID string, metadata map[string]interface{}, now time.Time) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	var orgRef *string
	if orgID != "" {
		orgRef = &orgID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, organization_id, action, resource_type, resource_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, 'claim', $5, $6, $7)
	`, uuid.New().String(), actorID, orgRef, action, claimID, metadataJSON, now)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}
