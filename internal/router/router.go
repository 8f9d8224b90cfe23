package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Options configures the engine built by SetupRouter.
type Options struct {
	DB          *gorm.DB
	Services    api.Services
	CORSOrigins []string
	// MediaURL and MediaRoot serve locally stored images. Leave MediaRoot
	// empty when images live elsewhere.
	MediaURL  string
	MediaRoot string
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/health", healthHandler(opts.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.MediaRoot != "" {
		mediaURL := "/" + strings.Trim(opts.MediaURL, "/")
		router.Static(mediaURL, opts.MediaRoot)
	}

	api.RegisterRoutes(router.Group("/api"), opts.Services)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
