// Package admin implements the authenticated HTTP handlers of the directory
// backend. Every route in this package sits behind AuthMiddleware and, where
// noted, a scope check (see internal/middleware/rbac.go), unlike the public
// read endpoints in the sibling directory package.
package admin

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/services"
)

// ClaimHandlers handles the ownership-claim workflow endpoints
type ClaimHandlers struct {
	resolver  *services.ClaimResolver
	claimRepo *repositories.ClaimRepository
}

// NewClaimHandlers creates a new ClaimHandlers instance. The resolver runs
// on sqlx because claim decisions are multi-statement transactions.
func NewClaimHandlers(db *sql.DB) *ClaimHandlers {
	return &ClaimHandlers{
		resolver:  services.NewClaimResolver(sqlx.NewDb(db, "postgres")),
		claimRepo: repositories.NewClaimRepository(db),
	}
}

// FileClaimRequest represents the request to claim a restaurant
type FileClaimRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	Evidence     string `json:"evidence" binding:"required"`
}

// ApproveClaimRequest confirms which claim the reviewer believes they are
// approving. Both IDs must match the claim row or the approval is rejected.
// Decision notes are optional; a default is recorded when omitted.
type ApproveClaimRequest struct {
	RestaurantID  string `json:"restaurant_id" binding:"required"`
	UserID        string `json:"user_id" binding:"required"`
	DecisionNotes string `json:"decision_notes"`
}

// DenyClaimRequest carries the optional reviewer notes for a denial
type DenyClaimRequest struct {
	DecisionNotes string `json:"decision_notes"`
}

// @Summary      File ownership claim
// @Description  File a claim asserting that the authenticated user owns a restaurant. A user may have at most one pending claim per restaurant.
// @Tags         Claims
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  FileClaimRequest  true  "Claim details"
// @Success      201  {object}  map[string]interface{}  "claim: models.Claim"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/claims [post]
// FileClaimHandler files a new ownership claim for the authenticated user
// POST /api/v1/claims
func (h *ClaimHandlers) FileClaimHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		var req FileClaimRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		claim, err := h.resolver.CreateClaim(c.Request.Context(), req.RestaurantID, userID, req.Evidence)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to file claim",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"claim": claim,
		})
	}
}

// @Summary      List claims
// @Description  List ownership claims with restaurant and claimant context, optionally filtered by status.
// @Tags         Claims
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Filter by status (pending, approved, denied)"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "claims: [], pagination: {page, per_page, total}"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/claims [get]
// ListClaimsHandler lists claims for review, newest first
// GET /api/v1/claims?status=pending&page=1&per_page=20
func (h *ClaimHandlers) ListClaimsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		offset := (page - 1) * perPage

		filters := repositories.ClaimFilters{}
		if status := c.Query("status"); status != "" {
			filters.Status = &status
		}
		if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
			filters.RestaurantID = &restaurantID
		}

		claims, total, err := h.claimRepo.ListClaims(c.Request.Context(), filters, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list claims",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"claims": claims,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get claim
// @Description  Retrieve a single claim by ID.
// @Tags         Claims
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Claim ID"
// @Success      200  {object}  map[string]interface{}  "claim: models.Claim"
// @Failure      404  {object}  map[string]interface{}  "Claim not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/claims/{id} [get]
// GetClaimHandler retrieves one claim
// GET /api/v1/claims/:id
func (h *ClaimHandlers) GetClaimHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, err := h.claimRepo.GetClaimByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get claim",
			})
			return
		}
		if claim == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Claim not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"claim": claim,
		})
	}
}

// @Summary      Approve claim
// @Description  Approve a pending claim. Atomically flips the claim to approved, assigns (creating if necessary) the claimant's organization as restaurant owner, marks the restaurant verified, and writes an audit entry.
// @Tags         Claims
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Claim ID"
// @Param        request  body  ApproveClaimRequest  true  "Claim confirmation"
// @Success      200  {object}  map[string]interface{}  "success, claim_id, restaurant_id, org_id, org_created"
// @Failure      400  {object}  map[string]interface{}  "Stale, invalid, or non-pending claim"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "Claim not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/claims/{id}/approve [post]
// ApproveClaimHandler approves a pending claim
// POST /api/v1/claims/:id/approve
func (h *ClaimHandlers) ApproveClaimHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetString("user_id")
		if actorID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		var req ApproveClaimRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		result, err := h.resolver.ApproveClaim(c.Request.Context(), c.Param("id"), req.RestaurantID, req.UserID, actorID, req.DecisionNotes)
		if err != nil {
			respondClaimDecisionError(c, err, "Failed to approve claim")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"claim_id":      result.ClaimID,
			"restaurant_id": result.RestaurantID,
			"org_id":        result.OrganizationID,
			"org_created":   result.OrgCreated,
		})
	}
}

// @Summary      Deny claim
// @Description  Deny a pending claim with optional reviewer notes. The restaurant is left untouched.
// @Tags         Claims
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string            true   "Claim ID"
// @Param        request  body  DenyClaimRequest  false  "Reviewer notes"
// @Success      200  {object}  map[string]interface{}  "success, claim_id"
// @Failure      400  {object}  map[string]interface{}  "Claim is not pending"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "Claim not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/claims/{id}/deny [post]
// DenyClaimHandler denies a pending claim
// POST /api/v1/claims/:id/deny
func (h *ClaimHandlers) DenyClaimHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetString("user_id")
		if actorID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		// Body is optional; an empty one falls back to the default notes.
		var req DenyClaimRequest
		_ = c.ShouldBindJSON(&req)

		claimID := c.Param("id")
		if err := h.resolver.DenyClaim(c.Request.Context(), claimID, actorID, req.DecisionNotes); err != nil {
			respondClaimDecisionError(c, err, "Failed to deny claim")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"claim_id": claimID,
		})
	}
}

// respondClaimDecisionError maps resolver errors to HTTP status codes shared
// by the approve and deny endpoints. A decision on a non-pending claim is a
// client error: the reviewer is acting on a stale list.
func respondClaimDecisionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrClaimNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Claim not found",
		})
	case errors.Is(err, services.ErrClaimNotPending):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Claim is not pending",
		})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   fallback,
			"details": err.Error(),
		})
	}
}
