// Package directory implements the public, unauthenticated read endpoints of
// the restaurant directory. Write operations live in the admin package and
// require authentication.
package directory

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
)

// @Summary      Get restaurant
// @Description  Retrieve a single restaurant by UUID or URL slug.
// @Tags         Directory
// @Produce      json
// @Param        id  path  string  true  "Restaurant UUID or slug"
// @Success      200  {object}  map[string]interface{}  "restaurant: models.Restaurant"
// @Failure      404  {object}  map[string]interface{}  "Restaurant not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/{id} [get]
// GetRestaurantHandler fetches one restaurant by ID or slug
// GET /api/v1/restaurants/:id
func GetRestaurantHandler(db *sql.DB) gin.HandlerFunc {
	restaurantRepo := repositories.NewRestaurantRepository(db)

	return func(c *gin.Context) {
		restaurant, err := lookupRestaurant(c, restaurantRepo)
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

		c.JSON(http.StatusOK, gin.H{
			"restaurant": restaurant,
		})
	}
}

// @Summary      List restaurant soups
// @Description  List every soup on a restaurant's menu, identified by UUID or slug.
// @Tags         Directory
// @Produce      json
// @Param        id  path  string  true  "Restaurant UUID or slug"
// @Success      200  {object}  map[string]interface{}  "soups: []models.Soup"
// @Failure      404  {object}  map[string]interface{}  "Restaurant not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/{id}/soups [get]
// ListSoupsHandler lists the menu of one restaurant
// GET /api/v1/restaurants/:id/soups
func ListSoupsHandler(db *sql.DB) gin.HandlerFunc {
	restaurantRepo := repositories.NewRestaurantRepository(db)
	soupRepo := repositories.NewSoupRepository(db)

	return func(c *gin.Context) {
		restaurant, err := lookupRestaurant(c, restaurantRepo)
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

		soups, err := soupRepo.ListSoupsByRestaurant(c.Request.Context(), restaurant.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list soups",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurant_id": restaurant.ID,
			"soups":         soups,
		})
	}
}

// lookupRestaurant resolves the :id path parameter as a UUID first and
// falls back to a slug lookup. Slugs are never valid UUIDs, so the two
// namespaces cannot collide.
func lookupRestaurant(c *gin.Context, repo *repositories.RestaurantRepository) (*models.Restaurant, error) {
	idOrSlug := c.Param("id")

	if _, err := uuid.Parse(idOrSlug); err == nil {
		return repo.GetRestaurantByID(c.Request.Context(), idOrSlug)
	}

	return repo.GetRestaurantBySlug(c.Request.Context(), idOrSlug)
}
