package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/meals"
	"nutrisnap-backend/internal/pipeline"
	"nutrisnap-backend/internal/profiles"
	"nutrisnap-backend/internal/services/health"
	"nutrisnap-backend/internal/shared/config"
	"nutrisnap-backend/internal/shared/metrics"
	"nutrisnap-backend/internal/shared/server/middleware"
	"nutrisnap-backend/internal/shared/server/respond"
	"nutrisnap-backend/internal/shared/storage/object"
)

// RouterDeps holds handlers to register. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	ScanHandler     *pipeline.Handler
	MealsHandler    *meals.Handler
	ProfilesHandler *profiles.Handler
	// Media serves stored images at /media/*key; set only for the local store.
	Media       object.ObjectStore
	RateLimiter *middleware.RateLimiter
	Health      *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/metrics", metrics.Handler())
	if deps.Media != nil {
		api.GET("/media/*key", mediaHandler(deps.Media))
	}

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Verifier, deps.Config.IsDevLike()),
		middleware.Logging(),
	)
	registerMeRoutes(authed)
	if deps.ScanHandler != nil {
		limiter := deps.RateLimiter
		if limiter == nil {
			limiter = middleware.NewRateLimiter(nil)
		}
		rule := middleware.PerMinute(int(deps.Config.ScanRatePerMinute), deps.Config.ScanBurst)
		deps.ScanHandler.RegisterRoutes(authed, middleware.RateLimit(limiter, "scans", rule))
	}
	if deps.MealsHandler != nil {
		deps.MealsHandler.RegisterRoutes(authed)
	}
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterRoutes(authed)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
