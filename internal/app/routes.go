package app

import (
	"log"
	"net/http"
	"time"

	"taskify/server/internal/dto"
	"taskify/server/internal/handlers"
	"taskify/server/internal/middleware"
	"taskify/server/internal/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	globalLimitMessage = "Too many requests from this IP, please try again later."
	authLimitMessage   = "Too many authentication attempts, please try again later."
)

func (a *App) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(a.cfg.Server.TrustedProxies); err != nil {
		log.Printf("ignoring TRUSTED_PROXIES: %v", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RecoveryWithLog())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.APIVersion(dto.APIVersion))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{a.cfg.Server.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-API-Version"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(a.metrics.requests.Middleware())
	if a.limits.global != nil {
		r.Use(middleware.RateLimit(a.limits.global, globalLimitMessage))
	}
	r.Use(middleware.BodyLimit(a.cfg.Server.MaxBodyBytes))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewError(dto.CodeNotFound, "Route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewError(dto.CodeMethodNotAllowed, "Method not allowed"))
	})

	r.GET("/health", monitoring.HealthHandler(a.metrics.requests))
	r.GET("/health/ready", a.metrics.health.ReadinessHandler())
	r.GET("/metrics", a.metricsHandler())

	api := r.Group("/api")
	registerAuthRoutes(api, handlers.NewAuthHandler(a.auth), a.limits.auth)
	registerTaskRoutes(api, handlers.NewTaskHandler(a.tasks), middleware.RequireAuth(a.tokens))

	return r
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, limiter middleware.LimiterStore) {
	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(middleware.RateLimit(limiter, authLimitMessage))
	}
	auth.GET("", h.Index)
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler, requireAuth gin.HandlerFunc) {
	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("", h.List)
	tasks.GET("/:id", h.Get)
	tasks.POST("", h.Create)
	tasks.PUT("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
}

func (a *App) metricsHandler() gin.HandlerFunc {
	if a.cache != nil {
		return a.metrics.requests.MetricsHandler(a.cache.Stats)
	}
	return a.metrics.requests.MetricsHandler(nil)
}
