package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comitanigiacomo/goalmate-engine/docs"
	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
)

const healthCheckTimeout = 2 * time.Second

type RouterDependencies struct {
	AuthHandler      *AuthHandler
	ProfileHandler   *ProfileHandler
	TaskHandler      *TaskHandler
	AnalyticsHandler *AnalyticsHandler
	Tokens           middleware.TokenValidator
	DB               *sqlx.DB
	Redis            *redis.Client
	RateLimit        config.RateLimitConfig
	StartTime        time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	router.Use(middleware.Metrics())

	if deps.Redis != nil && deps.RateLimit.Requests > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window))
	}

	router.GET("/health", deps.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		deps.ProfileHandler.RegisterRoutes(protected)
		deps.TaskHandler.RegisterRoutes(protected)
		deps.AnalyticsHandler.RegisterRoutes(protected)
	}

	return router
}

func (deps RouterDependencies) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbStatus := "disabled"
	if deps.DB != nil {
		dbStatus = "connected"
		if err := deps.DB.PingContext(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}

	redisStatus := cache.Status(ctx, deps.Redis)

	statusCode := http.StatusOK
	status := "ok"
	if dbStatus == "unreachable" || redisStatus == "unreachable" {
		statusCode = http.StatusServiceUnavailable
		status = "degraded"
	}

	c.JSON(statusCode, gin.H{
		"status":   status,
		"database": dbStatus,
		"redis":    redisStatus,
		"uptime":   time.Since(deps.StartTime).Round(time.Second).String(),
	})
}
