package handlers

import (
	"controlling_vacuums/internal/logger"
	"controlling_vacuums/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Minimal WebSocket connection (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerVacuumRoutes(api)
		h.registerErrorRoutes(api)
	}
}

func (h *Handler) registerVacuumRoutes(api *gin.RouterGroup) {
	vacuums := api.Group("/vacuums")
	{
		vacuums.GET("", h.listVacuums)
		vacuums.POST("", h.createVacuum)
		vacuums.POST("/schedule", h.scheduleTransition)
		vacuums.GET("/:id", h.getVacuum)
		vacuums.PUT("/:id", h.renameVacuum)
		vacuums.DELETE("/:id", h.deleteVacuum)
		// e.g. PUT /api/v1/vacuums/7/actions/start
		vacuums.PUT("/:id/actions/:action", h.requestTransition)
	}
}

func (h *Handler) registerErrorRoutes(api *gin.RouterGroup) {
	errs := api.Group("/errors")
	{
		errs.GET("", h.listErrors)
	}
}
