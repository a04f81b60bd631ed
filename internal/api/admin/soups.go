// soups.go implements handlers for managing a restaurant's soup menu.
package admin

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
)

// SoupHandlers handles soup management endpoints
type SoupHandlers struct {
	db             *sql.DB
	soupRepo       *repositories.SoupRepository
	restaurantRepo *repositories.RestaurantRepository
}

// NewSoupHandlers creates a new SoupHandlers instance
func NewSoupHandlers(db *sql.DB) *SoupHandlers {
	return &SoupHandlers{
		db:             db,
		soupRepo:       repositories.NewSoupRepository(db),
		restaurantRepo: repositories.NewRestaurantRepository(db),
	}
}

// CreateSoupRequest represents the request to add a soup to a menu
type CreateSoupRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	SoupType      string   `json:"soup_type"`
	DietaryInfo   []string `json:"dietary_info"`
	IsSeasonal    bool     `json:"is_seasonal"`
	AvailableDays []string `json:"available_days"`
}

// @Summary      Add soup
// @Description  Add a soup to a restaurant's menu. Availability defaults to every day of the week.
// @Tags         Soups
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Restaurant ID"
// @Param        request  body  CreateSoupRequest  true  "Soup details"
// @Success      201  {object}  map[string]interface{}  "soup: models.Soup"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Restaurant not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/{id}/soups [post]
// CreateSoupHandler adds a soup to a restaurant's menu
// POST /api/v1/restaurants/:id/soups
func (h *SoupHandlers) CreateSoupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurant, err := h.restaurantRepo.GetRestaurantByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get restaurant",
			})
			return
		}
		if restaurant == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Restaurant not found",
			})
			return
		}

		var req CreateSoupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		availableDays := req.AvailableDays
		if len(availableDays) == 0 {
			availableDays = models.AllWeekdays
		}
		dietaryInfo := req.DietaryInfo
		if dietaryInfo == nil {
			dietaryInfo = []string{}
		}

		soup := &models.Soup{
			RestaurantID:  restaurant.ID,
			Name:          req.Name,
			Description:   req.Description,
			SoupType:      req.SoupType,
			DietaryInfo:   dietaryInfo,
			IsSeasonal:    req.IsSeasonal,
			AvailableDays: availableDays,
		}

		if err := h.soupRepo.CreateSoup(c.Request.Context(), soup); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create soup",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"soup": soup,
		})
	}
}

// UpdateSoupRequest represents the request to update a soup. The owning
// restaurant cannot be changed.
type UpdateSoupRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	SoupType      *string  `json:"soup_type"`
	DietaryInfo   []string `json:"dietary_info"`
	IsSeasonal    *bool    `json:"is_seasonal"`
	AvailableDays []string `json:"available_days"`
}

// @Summary      Update soup
// @Description  Update a soup's menu details. The owning restaurant cannot be changed.
// @Tags         Soups
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Soup ID"
// @Param        request  body  UpdateSoupRequest  true  "Fields to update"
// @Success      200  {object}  map[string]interface{}  "soup: models.Soup"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Soup not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/soups/{id} [put]
// UpdateSoupHandler updates a soup's menu details
// PUT /api/v1/soups/:id
func (h *SoupHandlers) UpdateSoupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		soup, err := h.soupRepo.GetSoupByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get soup",
			})
			return
		}
		if soup == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Soup not found",
			})
			return
		}

		var req UpdateSoupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Name != nil {
			soup.Name = *req.Name
		}
		if req.Description != nil {
			soup.Description = *req.Description
		}
		if req.SoupType != nil {
			soup.SoupType = *req.SoupType
		}
		if req.DietaryInfo != nil {
			soup.DietaryInfo = req.DietaryInfo
		}
		if req.IsSeasonal != nil {
			soup.IsSeasonal = *req.IsSeasonal
		}
		if req.AvailableDays != nil {
			soup.AvailableDays = req.AvailableDays
		}

		if err := h.soupRepo.UpdateSoup(c.Request.Context(), soup); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update soup",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"soup": soup,
		})
	}
}

// @Summary      Delete soup
// @Description  Remove a soup from its restaurant's menu.
// @Tags         Soups
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Soup ID"
// @Success      200  {object}  map[string]interface{}  "success: true"
// @Failure      404  {object}  map[string]interface{}  "Soup not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/soups/{id} [delete]
// DeleteSoupHandler removes a soup
// DELETE /api/v1/soups/:id
func (h *SoupHandlers) DeleteSoupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		soup, err := h.soupRepo.GetSoupByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get soup",
			})
			return
		}
		if soup == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Soup not found",
			})
			return
		}

		if err := h.soupRepo.DeleteSoup(c.Request.Context(), soup.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete soup",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
		})
	}
}
