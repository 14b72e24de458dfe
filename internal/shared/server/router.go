package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/analysis"
	"analyst-backend/internal/services/health"
	"analyst-backend/internal/shared/config"
	"analyst-backend/internal/shared/metrics"
	"analyst-backend/internal/shared/server/middleware"
	"analyst-backend/internal/shared/server/respond"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "TDS Data Analyst Agent is live."

const analyzeRateGroup = "ANALYZE"

// RouterDeps groups the handlers mounted on the router.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	Health          *health.Service
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/analyze/" {
					return analyzeRateGroup
				}
				return ""
			},
			Limiter: deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				analyzeRateGroup: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			},
		}))
	}

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"message": LivenessMessage})
	})
	r.GET("/metrics", metrics.Handler())
	if deps.Health != nil {
		r.GET("/healthz", func(c *gin.Context) {
			report := deps.Health.Status(c.Request.Context())
			status := http.StatusOK
			if !report.OK {
				status = http.StatusServiceUnavailable
			}
			respond.JSON(c, status, report)
		})
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(r)
	}
	r.NoRoute(func(c *gin.Context) {
		respond.JSON(c, http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return r
}

// Addr joins host and port into a listen address. The port defaults to 8000.
func Addr(host, port string) string {
	port = strings.TrimPrefix(strings.TrimSpace(port), ":")
	if port == "" {
		port = "8000"
	}
	return net.JoinHostPort(strings.TrimSpace(host), port)
}
