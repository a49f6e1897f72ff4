package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/observability"
	"github.com/SNE-Labs/SNE-Radar/service"
	"github.com/SNE-Labs/SNE-Radar/siwe"
)

// CookieConfig carries the session cookie hardening parameters.
type CookieConfig struct {
	Domain   string
	SameSite http.SameSite
	MaxAge   time.Duration
}

// RateLimits carries the per-wallet thresholds applied inside handlers.
type RateLimits struct {
	NonceWallet int64
	LoginWallet int64
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth    *service.AuthService
	limiter *service.RateLimiter
	cookie  CookieConfig
	limits  RateLimits
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.AuthService, limiter *service.RateLimiter, cookie CookieConfig, limits RateLimits) *AuthHandlers {
	return &AuthHandlers{
		auth:    auth,
		limiter: limiter,
		cookie:  cookie,
		limits:  limits,
	}
}

// Human-readable messages per stable wire code. Raw internal error text is
// never sent to clients.
var errorMessages = map[string]string{
	"MALFORMED_MESSAGE":    "Malformed sign-in message",
	"NONCE_NOT_FOUND":      "Invalid or expired nonce",
	"DOMAIN_MISMATCH":      "Message domain mismatch",
	"URI_MISMATCH":         "Message URI mismatch",
	"NONCE_MISMATCH":       "Message nonce mismatch",
	"TIME_WINDOW":          "Message is outside its validity window",
	"INVALID_SIGNATURE":    "Invalid signature",
	"CHAIN_ID_MISMATCH":    "Invalid chain ID",
	"ADDRESS_MISMATCH":     "Address mismatch",
	"RATE_LIMITED":         "Rate limit exceeded",
	"TOKEN_EXPIRED":        "Token expired",
	"TOKEN_INVALID":        "Invalid token",
	"UPSTREAM_UNAVAILABLE": "Service temporarily unavailable",
	"INTERNAL":             "Internal error",
}

func abortWithError(c *gin.Context, status int, err error) {
	code := core.Code(err)
	c.AbortWithStatusJSON(status, gin.H{"code": code, "error": errorMessages[code]})
}

// loginStatus maps a pipeline error to its HTTP status. Every validation
// failure is 401; only malformed input, throttling and upstream outages
// differ.
func loginStatus(err error) int {
	switch core.Code(err) {
	case "MALFORMED_MESSAGE":
		return http.StatusBadRequest
	case "RATE_LIMITED":
		return http.StatusTooManyRequests
	case "UPSTREAM_UNAVAILABLE":
		return http.StatusServiceUnavailable
	case "INTERNAL":
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(SessionCookie, token, maxAge, "/", h.cookie.Domain, true, true)
}

// Nonce handles POST /auth/nonce
func (h *AuthHandlers) Nonce(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, core.ErrMalformedMessage)
		return
	}

	if !h.limiter.Allow(c.Request.Context(), "nonce", "wallet", req.Address, h.limits.NonceWallet) {
		abortWithError(c, http.StatusTooManyRequests, core.ErrRateLimited)
		return
	}

	nonce, err := h.auth.IssueNonce(c.Request.Context(), req.Address)
	if err != nil {
		log := requestLog(c)
		log.Error().Err(err).Msg("nonce issuance failed")
		abortWithError(c, loginStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, core.ErrMalformedMessage)
		return
	}

	// Per-wallet throttling needs the claimed address; a best-effort parse
	// is enough since the pipeline re-parses with full validation.
	if msg, err := siwe.Parse(req.Message); err == nil {
		if !h.limiter.Allow(c.Request.Context(), "login", "wallet", msg.Address.Hex(), h.limits.LoginWallet) {
			observability.LoginFail.WithLabelValues("RATE_LIMITED").Inc()
			abortWithError(c, http.StatusTooManyRequests, core.ErrRateLimited)
			return
		}
	}

	result, err := h.auth.Login(c.Request.Context(), req.Message, req.Signature)
	if err != nil {
		log := requestLog(c)
		log.Info().Err(err).Str("code", core.Code(err)).Msg("login rejected")
		observability.LoginFail.WithLabelValues(core.Code(err)).Inc()
		abortWithError(c, loginStatus(err), err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()))

	resp := gin.H{
		"token":     result.Token,
		"address":   result.Session.Address,
		"tier":      string(result.Session.Tier),
		"expiresAt": result.Session.ExpiresAt.UTC().Format(time.RFC3339),
		"license": gin.H{
			"valid":      result.License.Valid,
			"isLifetime": result.License.IsLifetime,
		},
	}
	if !result.License.ExpiresAt.IsZero() {
		resp["license"].(gin.H)["expiresAt"] = result.License.ExpiresAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyToken handles GET /auth/verify
func (h *AuthHandlers) VerifyToken(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		observability.VerifyFail.WithLabelValues("TOKEN_INVALID").Inc()
		abortWithError(c, http.StatusUnauthorized, core.ErrTokenInvalid)
		return
	}

	session, cached, err := h.auth.Verify(c.Request.Context(), token)
	if err != nil {
		log := requestLog(c)
		log.Debug().Err(err).Msg("token verification failed")
		observability.VerifyFail.WithLabelValues(core.Code(err)).Inc()
		abortWithError(c, http.StatusUnauthorized, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"address": session.Address,
		"tier":    string(session.Tier),
		"cached":  cached,
	})
}

// Logout handles POST /auth/logout. Always succeeds.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if token := extractToken(c); token != "" {
		h.auth.Logout(c.Request.Context(), token)
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session handles GET /api/session, used by the frontend to rehydrate its
// session on page refresh. Always 200; an absent or invalid token yields a
// null user rather than an error.
func (h *AuthHandlers) Session(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	session, _, err := h.auth.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": session.Address,
		"tier": string(session.Tier),
		"exp":  session.ExpiresAt.Unix(),
	})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	session := sessionFrom(c)
	if session == nil {
		abortWithError(c, http.StatusUnauthorized, core.ErrTokenInvalid)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": session.Address,
		"tier":    string(session.Tier),
	})
}

// RadarAccess confirms premium access; the tier gate runs in middleware.
func (h *AuthHandlers) RadarAccess(c *gin.Context) {
	session := sessionFrom(c)
	if session == nil {
		abortWithError(c, http.StatusUnauthorized, core.ErrTokenInvalid)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": true,
		"address":    session.Address,
		"tier":       string(session.Tier),
	})
}
