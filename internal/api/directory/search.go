// search.go implements the public restaurant search endpoint.
package directory

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/telemetry"
)

// @Summary      Search restaurants
// @Description  Search the directory by name, city, state, or cuisine tag with pagination.
// @Tags         Directory
// @Produce      json
// @Param        q         query  string  false  "Search query (matches name, city, cuisine tags)"
// @Param        city      query  string  false  "Filter by city"
// @Param        state     query  string  false  "Filter by state"
// @Param        verified  query  bool    false  "Only return verified restaurants"
// @Param        limit     query  int     false  "Maximum results to return (default 20, max 100)"
// @Param        offset    query  int     false  "Offset for pagination (default 0)"
// @Success      200  {object}  map[string]interface{}  "restaurants: [], meta: {limit, offset, total}"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/restaurants/search [get]
// SearchHandler handles restaurant search requests
// Implements: GET /api/v1/restaurants/search?q=<query>&city=<city>&state=<state>&verified=<bool>&limit=<limit>&offset=<offset>
func SearchHandler(db *sql.DB) gin.HandlerFunc {
	restaurantRepo := repositories.NewRestaurantRepository(db)

	return func(c *gin.Context) {
		filters := repositories.RestaurantFilters{
			Query:        c.Query("q"),
			City:         c.Query("city"),
			State:        c.Query("state"),
			VerifiedOnly: c.Query("verified") == "true",
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}

		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		telemetry.RestaurantSearchesTotal.Inc()

		restaurants, total, err := restaurantRepo.SearchRestaurants(c.Request.Context(), filters, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to search restaurants",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"restaurants": restaurants,
			"meta": gin.H{
				"limit":  limit,
				"offset": offset,
				"total":  total,
			},
		})
	}
}
