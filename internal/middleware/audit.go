// audit.go provides Gin middleware that records authenticated write operations
// to the audit log.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/safego"
)

// AuditMiddleware logs successful authenticated write operations to the database
func AuditMiddleware(auditRepo *repositories.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request first
		c.Next()

		// Skip OPTIONS always
		if c.Request.Method == "OPTIONS" {
			return
		}

		// Only successful write operations are recorded. Read traffic is high
		// volume and carries no mutation to account for, and failed writes
		// changed nothing.
		if c.Request.Method == "GET" || c.Writer.Status() >= 400 {
			return
		}

		userID, _ := c.Get("user_id")
		orgID, _ := c.Get("organization_id")
		authMethod, _ := c.Get("auth_method")

		action := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		ipAddress := c.ClientIP()

		auditLog := &models.AuditLog{
			Action:    action,
			IPAddress: &ipAddress,
			CreatedAt: time.Now(),
		}

		if userID != nil {
			if uid, ok := userID.(string); ok {
				auditLog.ActorUserID = &uid
			}
		}

		if orgID != nil {
			if oid, ok := orgID.(string); ok {
				auditLog.OrganizationID = &oid
			}
		}

		path := c.Request.URL.Path
		var resourceType string
		switch {
		case strings.Contains(path, "/claims"):
			// Claim decisions are audited by the resolver inside the decision
			// transaction, which guarantees the entry commits atomically with
			// the status flip. Logging them here again would duplicate them.
			if strings.Contains(path, "/approve") || strings.Contains(path, "/deny") {
				return
			}
			resourceType = "claim"
			auditLog.ResourceType = &resourceType
		case strings.Contains(path, "/restaurants"):
			resourceType = "restaurant"
			auditLog.ResourceType = &resourceType
		case strings.Contains(path, "/soups"):
			resourceType = "soup"
			auditLog.ResourceType = &resourceType
		case strings.Contains(path, "/users"):
			resourceType = "user"
			auditLog.ResourceType = &resourceType
		case strings.Contains(path, "/apikeys"):
			resourceType = "api_key"
			auditLog.ResourceType = &resourceType
		case strings.Contains(path, "/organizations"):
			resourceType = "organization"
			auditLog.ResourceType = &resourceType
		}

		if id := c.Param("id"); id != "" {
			resourceID := id
			auditLog.ResourceID = &resourceID
		}

		metadata := map[string]interface{}{
			"status_code": c.Writer.Status(),
		}
		if authMethod != nil {
			metadata["auth_method"] = authMethod
		}
		auditLog.Metadata = metadata

		// Async log creation (non-blocking)
		safego.Go("audit-log-write", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := auditRepo.CreateAuditLog(ctx, auditLog); err != nil {
				slog.Error("failed to create audit log", "action", auditLog.Action, "error", err)
			}
		})
	}
}
