package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"anilog/internal/config"
	"anilog/internal/microservices/http-api/handler"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Registrar is implemented by every handler.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup, g handler.Guards)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// New builds the engine: global middlewares, /healthz, /metrics and every
// handler under /api.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	authn middleware.Authenticator,
	limiter *middleware.RateLimiter,
	health HealthCheck,
	handlers ...Registrar,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.PrometheusEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if health != nil {
			if err := health(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	guards := handler.Guards{
		Auth:     middleware.AuthMiddleware(authn),
		Optional: middleware.OptionalAuth(authn),
		Limit:    limiter.Middleware(),
		Admin:    middleware.RequireAdmin(authn),
	}
	api := r.Group("/api")
	for _, h := range handlers {
		h.RegisterRoutes(api, guards)
	}
	return r
}
