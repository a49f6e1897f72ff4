package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SNE-Labs/SNE-Radar/core"
)

// Feature and limit maps per tier, consumed by the frontend for access
// gating. -1 means unlimited.
var tierFeatures = map[core.Tier][]string{
	core.TierFree: {
		"vault.preview", "pass.preview", "radar.preview",
		"vault.basic", "pass.basic",
	},
	core.TierPremium: {
		"vault.preview", "pass.preview", "radar.preview",
		"vault.access", "pass.access", "radar.basic",
		"vault.checkout", "pass.spy",
	},
	core.TierPro: {
		"vault.preview", "pass.preview", "radar.preview",
		"vault.access", "pass.access", "radar.access",
		"vault.checkout", "pass.spy", "radar.trade",
		"ws.realtime", "api.full",
	},
}

var tierLimits = map[core.Tier]gin.H{
	core.TierFree:    {"watchlist": 3, "signals_per_day": 3, "vault_items": 1, "api_calls_per_hour": 100},
	core.TierPremium: {"watchlist": 10, "signals_per_day": 50, "vault_items": 10, "api_calls_per_hour": 1000},
	core.TierPro:     {"watchlist": -1, "signals_per_day": -1, "vault_items": -1, "api_calls_per_hour": 10000},
}

// Entitlements handles GET /api/entitlements. Unauthenticated or invalid
// sessions fail safe to the free tier; the endpoint never errors.
func (h *AuthHandlers) Entitlements(c *gin.Context) {
	var user interface{}
	tier := core.TierFree

	if token := extractToken(c); token != "" {
		if session, _, err := h.auth.Verify(c.Request.Context(), token); err == nil {
			user = session.Address
			tier = session.Tier
		}
	}

	// Paid tiers carry a rolling 30-day entitlement horizon; free has none.
	var expiresAt interface{}
	if tier != core.TierFree {
		expiresAt = time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"tier":      string(tier),
		"features":  tierFeatures[tier],
		"limits":    tierLimits[tier],
		"expiresAt": expiresAt,
	})
}
