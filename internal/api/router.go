package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/api/handlers"
	"github.com/gatehouse-dev/gatehouse/internal/api/middleware"
	"github.com/gatehouse-dev/gatehouse/internal/auth"
	"github.com/gatehouse-dev/gatehouse/internal/authz"
	"github.com/gatehouse-dev/gatehouse/internal/config"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *gorm.DB, authenticator auth.Authenticator) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	// Wire services
	az := authz.New(db)
	clientSvc := service.NewClientService(db)
	permissionSvc := service.NewPermissionService(db)
	workspaceSvc := service.NewWorkspaceService(db, az)
	teamSvc := service.NewTeamService(db, az)
	memberSvc := service.NewMemberService(db, az)
	profileSvc := service.NewProfileService(db, az, workspaceSvc, permissionSvc)

	adminHandler := handlers.NewAdminHandler(db, clientSvc, permissionSvc)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceSvc, db)
	teamHandler := handlers.NewTeamHandler(teamSvc, db)
	memberHandler := handlers.NewMemberHandler(memberSvc, db)
	profileHandler := handlers.NewProfileHandler(profileSvc)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.POST("/auth/login", handlers.Login(authenticator))
	}

	// Protected routes (require authentication and a resolved client context)
	protected := router.Group("/api/v1")
	protected.Use(authenticator.Middleware())
	{
		protected.GET("/auth/me", handlers.GetCurrentUser)
		protected.GET("/profile", profileHandler.GetProfile)

		// Workspace endpoints
		protected.POST("/workspaces", workspaceHandler.CreateWorkspace)
		protected.GET("/workspaces", workspaceHandler.ListWorkspaces)
		protected.GET("/workspaces/:id", workspaceHandler.GetWorkspace)
		protected.DELETE("/workspaces/:id", workspaceHandler.DeleteWorkspace)

		// Team endpoints
		protected.POST("/workspaces/:id/teams", teamHandler.CreateTeam)
		protected.GET("/workspaces/:id/teams", teamHandler.ListTeams)
		protected.GET("/teams/:id", teamHandler.GetTeam)
		protected.PATCH("/teams/:id", teamHandler.UpdateTeam)
		protected.DELETE("/teams/:id", teamHandler.DeleteTeam)
		protected.PUT("/teams/:id/permissions", teamHandler.SyncTeamPermissions)

		// Membership endpoints
		protected.POST("/teams/:id/members", memberHandler.CreateMember)
		protected.GET("/teams/:id/members", memberHandler.ListMembers)
		protected.POST("/members/:id/accept", memberHandler.AcceptInvitation)
		protected.POST("/members/:id/reject", memberHandler.RejectInvitation)
		protected.DELETE("/members/:id", memberHandler.RemoveMember)

		// Admin endpoints (system operators only)
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/clients", adminHandler.CreateClient)
			admin.GET("/clients", adminHandler.ListClients)
			admin.GET("/clients/:id", adminHandler.GetClient)
			admin.DELETE("/clients/:id", adminHandler.DeleteClient)
			admin.POST("/clients/:id/permissions", adminHandler.CreatePermission)
			admin.GET("/clients/:id/permissions", adminHandler.ListClientPermissions)
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
