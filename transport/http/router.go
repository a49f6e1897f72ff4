// Package http wires the gin router, handlers and middleware of the auth
// service. Guard ordering on every route is fixed: rate-limit before auth,
// auth before tier enforcement.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/service"
)

// RouterConfig carries the per-IP thresholds applied at the router level.
type RouterConfig struct {
	NonceIPLimit int64
	LoginIPLimit int64
}

// SetupRouter sets up the Gin router
func SetupRouter(
	handlers *AuthHandlers,
	auth *service.AuthService,
	limiter *service.RateLimiter,
	cfg RouterConfig,
	log zerolog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/nonce", RateLimitByIP(limiter, "nonce", cfg.NonceIPLimit), handlers.Nonce)
		authGroup.POST("/login", RateLimitByIP(limiter, "login", cfg.LoginIPLimit), handlers.Login)
		authGroup.GET("/verify", handlers.VerifyToken)
		authGroup.POST("/logout", handlers.Logout)
	}

	// Session rehydration and entitlements fail safe, no guard needed.
	api := router.Group("/api")
	api.GET("/session", handlers.Session)
	api.GET("/entitlements", handlers.Entitlements)

	// Protected API routes
	protected := api.Group("", RequireAuth(auth))
	{
		protected.GET("/me", handlers.Me)
		protected.GET("/radar/access", RequireTier(core.TierPremium), handlers.RadarAccess)
	}

	return router
}
