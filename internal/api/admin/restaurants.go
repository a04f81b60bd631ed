// restaurants.go implements handlers for restaurant listing management.
package admin

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/config"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/importer"
)

// RestaurantHandlers handles restaurant management endpoints
type RestaurantHandlers struct {
	cfg            *config.Config
	db             *sql.DB
	restaurantRepo *repositories.RestaurantRepository
}

// NewRestaurantHandlers creates a new RestaurantHandlers instance
func NewRestaurantHandlers(cfg *config.Config, db *sql.DB) *RestaurantHandlers {
	return &RestaurantHandlers{
		cfg:            cfg,
		db:             db,
		restaurantRepo: repositories.NewRestaurantRepository(db),
	}
}

// CreateRestaurantRequest represents the request to create a restaurant
type CreateRestaurantRequest struct {
	Name        string   `json:"name" binding:"required"`
	Slug        string   `json:"slug"` // Derived from the name when omitted
	Address     string   `json:"address"`
	City        string   `json:"city" binding:"required"`
	State       string   `json:"state" binding:"required"`
	Zip         string   `json:"zip"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Phone       string   `json:"phone"`
	Website     string   `json:"website"`
	HoursJSON   string   `json:"hours_json"`
	PriceRange  string   `json:"price_range"`
	CuisineTags []string `json:"cuisine_tags"`
}

// UpdateRestaurantRequest represents the request to update a restaurant.
// Ownership fields are absent on purpose; they only change through the
// claim workflow.
type UpdateRestaurantRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Zip         *string  `json:"zip"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Phone       *string  `json:"phone"`
	Website     *string  `json:"website"`
	HoursJSON   *string  `json:"hours_json"`
	PriceRange  *string  `json:"price_range"`
	CuisineTags []string `json:"cuisine_tags"`
}

// @Summary      Create restaurant
// @Description  Create a new unverified restaurant listing. The slug is derived from the name when not supplied.
// @Tags         Restaurants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  CreateRestaurantRequest  true  "Restaurant details"
// @Success      201  {object}  map[string]interface{}  "restaurant: models.Restaurant"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants [post]
// CreateRestaurantHandler creates a new restaurant
// POST /api/v1/restaurants
func (h *RestaurantHandlers) CreateRestaurantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		slug := req.Slug
		if slug == "" {
			slug = importer.Slugify(req.Name)
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Name does not produce a usable slug",
			})
			return
		}

		priceRange := req.PriceRange
		if priceRange == "" {
			priceRange = h.cfg.Import.DefaultPriceRange
		}
		cuisineTags := req.CuisineTags
		if cuisineTags == nil {
			cuisineTags = []string{}
		}

		restaurant := &models.Restaurant{
			Name:        req.Name,
			Slug:        slug,
			Address:     req.Address,
			City:        req.City,
			State:       req.State,
			Zip:         req.Zip,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			Phone:       req.Phone,
			Website:     req.Website,
			HoursJSON:   req.HoursJSON,
			PriceRange:  priceRange,
			CuisineTags: cuisineTags,
		}

		if err := h.restaurantRepo.CreateRestaurant(c.Request.Context(), restaurant); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create restaurant",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"restaurant": restaurant,
		})
	}
}

// @Summary      Update restaurant
// @Description  Update a restaurant's listing details. Ownership and verification fields cannot be changed here.
// @Tags         Restaurants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Restaurant ID"
// @Param        request  body  UpdateRestaurantRequest  true  "Fields to update"
// @Success      200  {object}  map[string]interface{}  "restaurant: models.Restaurant"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Restaurant not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/{id} [put]
// UpdateRestaurantHandler updates listing details of an existing restaurant
// PUT /api/v1/restaurants/:id
func (h *RestaurantHandlers) UpdateRestaurantHandler() gin.HandlerFunc {
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

		var req UpdateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Name != nil {
			restaurant.Name = *req.Name
		}
		if req.Address != nil {
			restaurant.Address = *req.Address
		}
		if req.City != nil {
			restaurant.City = *req.City
		}
		if req.State != nil {
			restaurant.State = *req.State
		}
		if req.Zip != nil {
			restaurant.Zip = *req.Zip
		}
		if req.Latitude != nil {
			restaurant.Latitude = *req.Latitude
		}
		if req.Longitude != nil {
			restaurant.Longitude = *req.Longitude
		}
		if req.Phone != nil {
			restaurant.Phone = *req.Phone
		}
		if req.Website != nil {
			restaurant.Website = *req.Website
		}
		if req.HoursJSON != nil {
			restaurant.HoursJSON = *req.HoursJSON
		}
		if req.PriceRange != nil {
			restaurant.PriceRange = *req.PriceRange
		}
		if req.CuisineTags != nil {
			restaurant.CuisineTags = req.CuisineTags
		}

		if err := h.restaurantRepo.UpdateRestaurant(c.Request.Context(), restaurant); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update restaurant",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurant": restaurant,
		})
	}
}

// @Summary      Delete restaurant
// @Description  Delete a restaurant and, via cascade, its soups and claims.
// @Tags         Restaurants
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Restaurant ID"
// @Success      200  {object}  map[string]interface{}  "success: true"
// @Failure      404  {object}  map[string]interface{}  "Restaurant not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/{id} [delete]
// DeleteRestaurantHandler deletes a restaurant
// DELETE /api/v1/restaurants/:id
func (h *RestaurantHandlers) DeleteRestaurantHandler() gin.HandlerFunc {
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

		if err := h.restaurantRepo.DeleteRestaurant(c.Request.Context(), restaurant.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete restaurant",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
		})
	}
}
