package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vero/backend/config"
	"github.com/vero/backend/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// RouterOptions carries the optional collaborators of the router
type RouterOptions struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, opts RouterOptions) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(MetricsMiddleware(opts.Metrics))
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	limit := RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP), logger)

	// Unversioned routes kept for existing clients
	router.POST("/verify-drug-product", limit, handler.VerifyDrugProduct)
	router.POST("/verify-baby-product", limit, handler.VerifyBabyProduct)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(limit)
	{
		v1.POST("/verify-drug-product", handler.VerifyDrugProduct)
		v1.POST("/verify-baby-product", handler.VerifyBabyProduct)
	}

	return router
}
