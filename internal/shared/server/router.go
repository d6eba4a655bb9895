package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vantage-backend/internal/analyses"
	"vantage-backend/internal/shared/config"
	"vantage-backend/internal/shared/metrics"
	"vantage-backend/internal/shared/server/middleware"
	"vantage-backend/internal/shared/server/respond"
)

// RouterDeps carries everything the router needs wired in.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
}

// NewRouter constructs the gin engine with middleware and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: middleware.NewRateLimiter(time.Now),
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 20, Burst: 60},
				"upload":  {Rate: 1, Burst: 10},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/analyses" {
					return "upload"
				}
				return ""
			},
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	deps.AnalysisHandler.RegisterRoutes(api)

	return r
}

// Addr formats the listen address for a port.
func Addr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
