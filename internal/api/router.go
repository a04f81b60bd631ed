// Package api wires together all HTTP routes for the directory backend.
//
// Route grouping philosophy:
//   - Directory read routes (/api/v1/restaurants/...) are public. Diners
//     browsing for soup never present credentials; a token, when present,
//     only populates user context.
//   - Claim, admin, and management routes always require authentication and,
//     beyond filing a claim, the appropriate RBAC scope.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/api/admin"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/api/directory"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/auth"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/config"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/jobs"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/middleware"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/safego"
)

// Version is the service version reported by /version. Overridden at build
// time via -ldflags.
var Version = "0.1.0"

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) is
// responsible for calling Shutdown() when the process receives a termination
// signal.
type BackgroundServices struct {
	dataQualityJob *jobs.DataQualityJob
	rateLimiters   []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests drain first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.dataQualityJob != nil {
		bg.dataQualityJob.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Repositories shared by middleware and route setup
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Wrap *sql.DB with sqlx for the stats queries and the claim resolver
	sqlxDB := sqlx.NewDb(db, "postgres")
	statsRepo := repositories.NewStatsRepository(sqlxDB)

	// Data-quality job: recomputes the diagnostics gauges on an interval
	dataQualityJob := jobs.NewDataQualityJob(statsRepo, cfg.Jobs.DataQualityInterval)
	safego.Go("data-quality-job", func() {
		dataQualityJob.Start(context.Background())
	})

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Readiness check endpoint
	router.GET("/ready", readinessHandler(db))

	// API version
	router.GET("/version", versionHandler())

	// Initialize rate limiters
	publicRateLimiter := middleware.NewRateLimiter(publicRateLimitConfig(cfg))
	generalRateLimiter := middleware.NewRateLimiter(generalRateLimitConfig(cfg))

	// Initialize admin handlers
	claimHandlers := admin.NewClaimHandlers(db)
	restaurantHandlers := admin.NewRestaurantHandlers(cfg, db)
	soupHandlers := admin.NewSoupHandlers(db)
	orgHandlers := admin.NewOrganizationHandlers(db)
	userHandlers := admin.NewUserHandlers(db)
	apiKeyHandlers := admin.NewAPIKeyHandlers(cfg, db)
	auditHandlers := admin.NewAuditHandlers(db)
	statsHandlers := admin.NewStatsHandlers(sqlxDB)

	apiV1 := router.Group("/api/v1")
	{
		// Public directory endpoints need no auth; optional auth
		// populates user context if a token is present.
		publicGroup := apiV1.Group("")
		publicGroup.Use(middleware.OptionalAuthMiddleware(userRepo, apiKeyRepo))
		publicGroup.Use(middleware.RateLimitMiddleware(publicRateLimiter))
		{
			publicGroup.GET("/restaurants", directory.SearchHandler(db))
			publicGroup.GET("/restaurants/search", directory.SearchHandler(db))
			publicGroup.GET("/restaurants/:id", directory.GetRestaurantHandler(db))
			publicGroup.GET("/restaurants/:id/soups", directory.ListSoupsHandler(db))
		}

		// Authenticated endpoints
		authenticatedGroup := apiV1.Group("")
		authenticatedGroup.Use(middleware.AuthMiddleware(userRepo, apiKeyRepo))
		authenticatedGroup.Use(middleware.RateLimitMiddleware(generalRateLimiter))
		authenticatedGroup.Use(middleware.AuditMiddleware(auditRepo)) // Audit all authenticated writes
		{
			// Claim workflow. Filing needs no scope beyond being signed in;
			// review operations require claims:review.
			authenticatedGroup.POST("/claims", claimHandlers.FileClaimHandler())
			authenticatedGroup.GET("/claims",
				middleware.RequireScope(auth.ScopeClaimsReview),
				claimHandlers.ListClaimsHandler())
			authenticatedGroup.GET("/claims/:id",
				middleware.RequireScope(auth.ScopeClaimsReview),
				claimHandlers.GetClaimHandler())
			authenticatedGroup.POST("/claims/:id/approve",
				middleware.RequireScope(auth.ScopeClaimsReview),
				claimHandlers.ApproveClaimHandler())
			authenticatedGroup.POST("/claims/:id/deny",
				middleware.RequireScope(auth.ScopeClaimsReview),
				claimHandlers.DenyClaimHandler())

			// Restaurant admin endpoints - require write permissions
			authenticatedGroup.POST("/restaurants",
				middleware.RequireScope(auth.ScopeRestaurantsWrite),
				restaurantHandlers.CreateRestaurantHandler())
			authenticatedGroup.PUT("/restaurants/:id",
				middleware.RequireScope(auth.ScopeRestaurantsWrite),
				restaurantHandlers.UpdateRestaurantHandler())
			authenticatedGroup.DELETE("/restaurants/:id",
				middleware.RequireScope(auth.ScopeRestaurantsWrite),
				restaurantHandlers.DeleteRestaurantHandler())

			// Soup admin endpoints - require write permissions
			authenticatedGroup.POST("/restaurants/:id/soups",
				middleware.RequireScope(auth.ScopeSoupsWrite),
				soupHandlers.CreateSoupHandler())
			authenticatedGroup.PUT("/soups/:id",
				middleware.RequireScope(auth.ScopeSoupsWrite),
				soupHandlers.UpdateSoupHandler())
			authenticatedGroup.DELETE("/soups/:id",
				middleware.RequireScope(auth.ScopeSoupsWrite),
				soupHandlers.DeleteSoupHandler())

			// Organizations management
			orgsGroup := authenticatedGroup.Group("/organizations")
			{
				// Read operations require organizations:read
				orgsGroup.GET("", middleware.RequireScope(auth.ScopeOrganizationsRead), orgHandlers.ListOrganizationsHandler())
				orgsGroup.GET("/:id", middleware.RequireScope(auth.ScopeOrganizationsRead), orgHandlers.GetOrganizationHandler())

				// Create and member management require organizations:write
				orgsGroup.POST("", middleware.RequireScope(auth.ScopeOrganizationsWrite), orgHandlers.CreateOrganizationHandler())
				orgsGroup.POST("/:id/members", middleware.RequireScope(auth.ScopeOrganizationsWrite), orgHandlers.AddMemberHandler())
				orgsGroup.DELETE("/:id/members/:user_id", middleware.RequireScope(auth.ScopeOrganizationsWrite), orgHandlers.RemoveMemberHandler())
			}

			// Users management
			usersGroup := authenticatedGroup.Group("/users")
			usersGroup.Use(middleware.RequireScope(auth.ScopeUsersRead))
			{
				usersGroup.GET("", userHandlers.ListUsersHandler())
				usersGroup.GET("/:id", userHandlers.GetUserHandler())
			}

			usersWriteGroup := authenticatedGroup.Group("/users")
			usersWriteGroup.Use(middleware.RequireScope(auth.ScopeUsersWrite))
			{
				usersWriteGroup.POST("", userHandlers.CreateUserHandler())
				usersWriteGroup.PUT("/:id", userHandlers.UpdateUserHandler())
				usersWriteGroup.DELETE("/:id", userHandlers.DeleteUserHandler())
			}

			// API Keys management - self-service for own keys. The handlers
			// verify ownership; api_keys:manage is only needed for revoking
			// other users' keys.
			apiKeysGroup := authenticatedGroup.Group("/apikeys")
			{
				apiKeysGroup.GET("", apiKeyHandlers.ListAPIKeysHandler())
				apiKeysGroup.POST("", apiKeyHandlers.CreateAPIKeyHandler())
				apiKeysGroup.DELETE("/:id", apiKeyHandlers.RevokeAPIKeyHandler())
			}

			// Audit log listing
			authenticatedGroup.GET("/audit",
				middleware.RequireScope(auth.ScopeAuditRead),
				auditHandlers.ListAuditLogsHandler())

			// Stats and diagnostics (admin only)
			statsGroup := authenticatedGroup.Group("/stats")
			statsGroup.Use(middleware.RequireScope(auth.ScopeAdmin))
			{
				statsGroup.GET("/dashboard", statsHandlers.GetDashboardStatsHandler())
				statsGroup.GET("/duplicate-slugs", statsHandlers.GetDuplicateSlugsHandler())
				statsGroup.GET("/orphan-soups", statsHandlers.GetOrphanSoupsHandler())
				statsGroup.GET("/coverage", statsHandlers.GetCoverageHandler())
			}
		}
	}

	bg := &BackgroundServices{
		dataQualityJob: dataQualityJob,
		rateLimiters:   []*middleware.RateLimiter{publicRateLimiter, generalRateLimiter},
	}

	return router, bg
}

// publicRateLimitConfig builds the limiter config for unauthenticated
// directory traffic, honoring configured overrides.
func publicRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.PublicRateLimitConfig()
	if cfg.Security.RateLimiting.Enabled && cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
		rlc.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rlc
}

// generalRateLimitConfig builds the limiter config for authenticated traffic.
// Authenticated callers get more headroom than anonymous ones.
func generalRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.Enabled && cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute * 2
		rlc.BurstSize = cfg.Security.RateLimiting.Burst * 2
	}
	return rlc
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, checks, time"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: database not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service
func readinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the service version and the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		// The global slog handler (configured in telemetry.SetupLogger)
		// decides between JSON and text output.
		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				// Credentials are only valid with a concrete origin; browsers
				// reject Allow-Credentials combined with a wildcard.
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
