package config

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SIWE_DOMAIN", "radar.snelabs.space")
	t.Setenv("SIWE_ORIGIN", "https://radar.snelabs.space")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "postgres://localhost/radar")
	t.Setenv("LICENSE_CONTRACT_ADDRESS", "0x00000000000000000000000000000000000000cc")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, int64(534351), cfg.ChainID)
	assert.Equal(t, "5m0s", cfg.MaxMessageAge.String())
	assert.Equal(t, "1h0m0s", cfg.SessionTTL.String())
	assert.Equal(t, int64(20), cfg.NonceIPLimit)
	assert.Equal(t, int64(10), cfg.NonceWalletLimit)
	assert.Equal(t, int64(10), cfg.LoginIPLimit)
	assert.Equal(t, int64(5), cfg.LoginWalletLimit)
	assert.Equal(t, "60s", cfg.RateWindow.String())
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIWE_DOMAIN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSessionTTLCeiling(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "25h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestCookieSameSite(t *testing.T) {
	shared := &Config{FrontendDomain: "radar.snelabs.space", APIDomain: "api.radar.snelabs.space"}
	assert.Equal(t, http.SameSiteLaxMode, shared.CookieSameSite())

	split := &Config{FrontendDomain: "radar.snelabs.space", APIDomain: "api.other.dev"}
	assert.Equal(t, http.SameSiteNoneMode, split.CookieSameSite())
}
