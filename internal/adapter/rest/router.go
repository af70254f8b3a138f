package rest

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bazario/listing-service/internal/adapter/rest/middleware"
	"github.com/bazario/listing-service/internal/platform/logger"
)

type RouterConfig struct {
	Handler *Handler
	Auth    *middleware.AuthMiddleware
	Logger  *logger.Logger
	// Tracing attaches otelgin spans; requires the global tracer
	// provider to be initialized.
	Tracing bool
}

// NewRouter wires the HTTP surface. Reads are public; every mutation
// goes through the auth middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Tracing {
		router.Use(otelgin.Middleware("listing-service"))
	}
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// Public
	router.POST("/register", cfg.Handler.Register)
	router.POST("/login", cfg.Handler.Login)
	router.GET("/health", cfg.Handler.Health)
	router.GET("/listings", cfg.Handler.ListListings)
	router.GET("/listings/:id", cfg.Handler.GetListing)
	router.GET("/search", cfg.Handler.SearchListings)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.Auth.RequireAuth())
	protected.POST("/listings", cfg.Handler.CreateListing)
	protected.PATCH("/listings/:id/price", cfg.Handler.UpdatePrice)
	protected.PATCH("/listings/:id/activate", cfg.Handler.ActivateListing)
	protected.PATCH("/listings/:id/delist", cfg.Handler.DelistListing)
	protected.PATCH("/listings/:id/attributes/:attribute_id", cfg.Handler.UpdateAttribute)
	protected.POST("/listings/:id/photos", cfg.Handler.UploadPhoto)
	protected.DELETE("/listings/:id", cfg.Handler.DeleteListing)

	return router
}
