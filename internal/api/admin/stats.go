// stats.go implements handlers for the admin dashboard counts and the
// data-quality diagnostics (duplicate slugs, orphan soups, coverage).
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
)

// StatsHandlers handles stats and diagnostics endpoints
type StatsHandlers struct {
	statsRepo *repositories.StatsRepository
}

// NewStatsHandlers creates a new StatsHandlers instance
func NewStatsHandlers(db *sqlx.DB) *StatsHandlers {
	return &StatsHandlers{
		statsRepo: repositories.NewStatsRepository(db),
	}
}

// @Summary      Get dashboard statistics
// @Description  Returns the headline directory counts (restaurants, soups, claims by status, organizations, users) in a single database round-trip.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "stats: repositories.DashboardCounts"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/stats/dashboard [get]
// GetDashboardStatsHandler returns the dashboard counts
// GET /api/v1/stats/dashboard
func (h *StatsHandlers) GetDashboardStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.statsRepo.DashboardStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get dashboard stats",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"stats": counts,
		})
	}
}

// @Summary      List duplicate slugs
// @Description  Returns slugs shared by more than one restaurant, largest group first. The import pipeline tolerates duplicates; this is where they surface.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "duplicate_slugs: []repositories.SlugGroup, count"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/stats/duplicate-slugs [get]
// GetDuplicateSlugsHandler lists duplicated restaurant slugs
// GET /api/v1/stats/duplicate-slugs
func (h *StatsHandlers) GetDuplicateSlugsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := h.statsRepo.DuplicateSlugs(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get duplicate slugs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"duplicate_slugs": groups,
			"count":           len(groups),
		})
	}
}

// @Summary      List orphan soups
// @Description  Returns soups whose restaurant row no longer exists. A non-empty result means rows were loaded around the foreign key.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "orphan_soups: []repositories.OrphanSoup, count"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/stats/orphan-soups [get]
// GetOrphanSoupsHandler lists soups without a restaurant
// GET /api/v1/stats/orphan-soups
func (h *StatsHandlers) GetOrphanSoupsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orphans, err := h.statsRepo.OrphanSoups(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get orphan soups",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orphan_soups": orphans,
			"count":        len(orphans),
		})
	}
}

// @Summary      Get coverage statistics
// @Description  Returns soup and cuisine-tag coverage across the directory.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "coverage: repositories.CoverageStats"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/stats/coverage [get]
// GetCoverageHandler returns directory coverage stats
// GET /api/v1/stats/coverage
func (h *StatsHandlers) GetCoverageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		coverage, err := h.statsRepo.Coverage(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get coverage stats",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"coverage": coverage,
		})
	}
}
