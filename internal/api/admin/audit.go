// audit.go implements the read-only audit log listing endpoint.
package admin

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
)

// AuditHandlers handles audit log endpoints
type AuditHandlers struct {
	db        *sql.DB
	auditRepo *repositories.AuditRepository
}

// NewAuditHandlers creates a new AuditHandlers instance
func NewAuditHandlers(db *sql.DB) *AuditHandlers {
	return &AuditHandlers{
		db:        db,
		auditRepo: repositories.NewAuditRepository(db),
	}
}

// @Summary      List audit logs
// @Description  List audit log entries, newest first, with optional filters.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        actor_user_id    query  string  false  "Filter by acting user"
// @Param        organization_id  query  string  false  "Filter by organization"
// @Param        action           query  string  false  "Filter by action"
// @Param        resource_type    query  string  false  "Filter by resource type"
// @Param        start_date       query  string  false  "Entries at or after this RFC3339 time"
// @Param        end_date         query  string  false  "Entries at or before this RFC3339 time"
// @Param        page             query  int     false  "Page number (default 1)"
// @Param        per_page         query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "audit_logs: [], pagination: {page, per_page, total}"
// @Failure      400  {object}  map[string]interface{}  "Invalid date filter"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/audit [get]
// ListAuditLogsHandler lists audit log entries with filters and pagination
// GET /api/v1/audit?action=&actor_user_id=&page=1&per_page=20
func (h *AuditHandlers) ListAuditLogsHandler() gin.HandlerFunc {
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

		filters := repositories.AuditFilters{}
		if v := c.Query("actor_user_id"); v != "" {
			filters.ActorUserID = &v
		}
		if v := c.Query("organization_id"); v != "" {
			filters.OrganizationID = &v
		}
		if v := c.Query("action"); v != "" {
			filters.Action = &v
		}
		if v := c.Query("resource_type"); v != "" {
			filters.ResourceType = &v
		}
		if v := c.Query("start_date"); v != "" {
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid start_date: must be RFC3339",
				})
				return
			}
			filters.StartDate = &parsed
		}
		if v := c.Query("end_date"); v != "" {
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid end_date: must be RFC3339",
				})
				return
			}
			filters.EndDate = &parsed
		}

		logs, total, err := h.auditRepo.ListAuditLogs(c.Request.Context(), filters, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list audit logs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"audit_logs": logs,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}
