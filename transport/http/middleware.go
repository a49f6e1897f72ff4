package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/observability"
	"github.com/SNE-Labs/SNE-Radar/service"
)

const (
	// SessionCookie is the name of the hardened session cookie.
	SessionCookie = "sne_token"

	ctxSession   = "session"
	ctxCached    = "tierCached"
	ctxRequestID = "requestID"
	ctxLogger    = "logger"
)

// RequestLogger attaches a correlation id and a request-scoped logger to the
// context and logs request completion. Internal causes are logged here and
// never echoed to clients.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		reqLog := log.With().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()

		c.Set(ctxRequestID, requestID)
		c.Set(ctxLogger, reqLog)
		c.Header("X-Request-ID", requestID)

		c.Next()

		reqLog.Info().Int("status", c.Writer.Status()).Msg("request completed")
	}
}

func requestLog(c *gin.Context) zerolog.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return zerolog.Nop()
}

// RateLimitByIP guards an endpoint with the per-IP fixed-window counter.
// Per-wallet counters are applied inside the handlers once the wallet is
// known from the request body.
func RateLimitByIP(limiter *service.RateLimiter, endpoint string, limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), endpoint, "ip", c.ClientIP(), limit) {
			abortWithError(c, http.StatusTooManyRequests, core.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// extractToken reads the session token from the cookie first, the
// Authorization bearer header second.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth validates the session token and stores the session in the
// request context. The tier is re-validated against the cache before the
// token's embedded tier is trusted.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, core.ErrTokenInvalid)
			return
		}

		session, cached, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			log := requestLog(c)
			log.Debug().Err(err).Msg("session verification failed")
			observability.VerifyFail.WithLabelValues(core.Code(err)).Inc()
			abortWithError(c, http.StatusUnauthorized, err)
			return
		}

		c.Set(ctxSession, session)
		c.Set(ctxCached, cached)
		c.Next()
	}
}

// RequireTier rejects sessions below the minimum tier. Must run after
// RequireAuth; the composition order rate-limit → auth → tier is fixed by
// the router.
func RequireTier(min core.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		if session == nil {
			abortWithError(c, http.StatusUnauthorized, core.ErrTokenInvalid)
			return
		}

		if !session.Tier.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":         "TIER_REQUIRED",
				"error":        "requires " + string(min) + " tier",
				"current_tier": string(session.Tier),
			})
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *core.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*core.Session); ok {
			return s
		}
	}
	return nil
}
