package api

import (
	"github.com/gin-gonic/gin"
	"github.com/talentwire/docpipe/internal/api/handler"
	"github.com/talentwire/docpipe/internal/api/middleware"
	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/repository"
	"github.com/talentwire/docpipe/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	processing *service.ProcessingService,
	jobs repository.JobStore,
	scorer *service.MatchScorer,
	cfg *config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	documentHandler := handler.NewDocumentHandler(processing, jobs)
	matchHandler := handler.NewMatchHandler(scorer)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Document processing
	r.POST("/documents", documentHandler.Submit)
	r.GET("/documents/:id", documentHandler.Status)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/match", matchHandler.Score)
	}

	return r
}
