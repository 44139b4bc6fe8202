package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/config"
	"github.com/boardly/boardly-server/internal/service"
)

// Handler wires the HTTP routes to the service layer.
type Handler struct {
	svc    service.Service
	db     *sqlx.DB // for health checks; may be nil
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc service.Service, db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// SetupRoutes registers all routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	authLimit := RateLimit(h.cfg.RateLimit)
	router.POST("/register", authLimit, h.Register)
	router.POST("/login", authLimit, h.Login)

	api := router.Group("/api")
	{
		// Share resolution is public: the token is the capability.
		api.GET("/share/:token", h.ResolveShareLink)

		// Board reads accept either bearer auth or a share token.
		api.GET("/boards/:id", h.OptionalAuth(), h.GetBoard)

		authed := api.Group("", h.RequireAuth())
		{
			authed.GET("/me", h.GetProfile)

			authed.GET("/boards", h.ListBoards)
			authed.GET("/boards/shared", h.ListSharedBoards)
			authed.POST("/boards", h.CreateBoard)
			authed.PUT("/boards/:id", h.UpdateBoard)
			authed.DELETE("/boards/:id", h.DeleteBoard)
			authed.POST("/boards/:id/archive", h.ArchiveBoard)
			authed.GET("/boards/:id/archives", h.ListBoardArchives)
			authed.POST("/boards/:id/share", h.CreateShareLink)

			authed.DELETE("/share/:token", h.RevokeShareLink)

			authed.POST("/plan-requests", h.CreatePlanRequest)
			authed.GET("/plan-requests", h.ListOwnPlanRequests)

			// Plan-only self service is allowed through the same endpoint;
			// the service checks entitlement.
			authed.PUT("/admin/user/:id/plan-role", h.UpdatePlanRole)

			admin := authed.Group("/admin", h.RequireAdmin())
			{
				admin.GET("/users", h.ListUsers)
				admin.DELETE("/user/:id", h.DeleteUser)
				admin.GET("/plan-requests", h.ListPlanRequests)
				admin.PUT("/plan-requests/:id", h.ResolvePlanRequest)
			}
		}
	}
}

// Health reports liveness, including a database ping when available.
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
