// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// MaxSessionTTL is the hard ceiling on session lifetime.
const MaxSessionTTL = time.Hour

// Config carries every environment-level knob of the auth service.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:9000"`

	// SIWE message binding
	Domain        string        `env:"SIWE_DOMAIN,required"`
	Origin        string        `env:"SIWE_ORIGIN,required"`
	ChainID       int64         `env:"CHAIN_ID,default=534351"`
	MaxMessageAge time.Duration `env:"SIWE_MAX_AGE,default=5m"`

	// TTLs
	NonceTTL     time.Duration `env:"NONCE_TTL,default=5m"`
	TierCacheTTL time.Duration `env:"TIER_CACHE_TTL,default=5m"`
	SessionTTL   time.Duration `env:"SESSION_TTL,default=1h"`

	// Session token and cookie
	JWTSecret      string `env:"JWT_SECRET,required"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`
	FrontendDomain string `env:"FRONTEND_DOMAIN,default=radar.snelabs.space"`
	APIDomain      string `env:"API_DOMAIN,default=api.radar.snelabs.space"`

	// External collaborators
	RedisURL        string        `env:"REDIS_URL,default=redis://localhost:6379/0"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	RPCURL          string        `env:"RPC_URL,default=https://sepolia-rpc.scroll.io"`
	RPCTimeout      time.Duration `env:"RPC_TIMEOUT,default=5s"`
	LicenseContract string        `env:"LICENSE_CONTRACT_ADDRESS,required"`

	// Rate limiting (fixed 60s windows, distinct thresholds per endpoint)
	RateWindow       time.Duration `env:"RATE_LIMIT_WINDOW,default=60s"`
	NonceIPLimit     int64         `env:"RATE_LIMIT_NONCE_IP,default=20"`
	NonceWalletLimit int64         `env:"RATE_LIMIT_NONCE_WALLET,default=10"`
	LoginIPLimit     int64         `env:"RATE_LIMIT_LOGIN_IP,default=10"`
	LoginWalletLimit int64         `env:"RATE_LIMIT_LOGIN_WALLET,default=5"`
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if cfg.SessionTTL <= 0 || cfg.SessionTTL > MaxSessionTTL {
		return nil, fmt.Errorf("SESSION_TTL must be in (0, %s], got %s", MaxSessionTTL, cfg.SessionTTL)
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if cfg.ChainID <= 0 {
		return nil, fmt.Errorf("CHAIN_ID must be positive")
	}
	return &cfg, nil
}

// CookieSameSite picks Lax when the API and frontend share a parent domain,
// None when the cookie must cross sites.
func (c *Config) CookieSameSite() http.SameSite {
	if parentDomain(c.FrontendDomain) == parentDomain(c.APIDomain) {
		return http.SameSiteLaxMode
	}
	return http.SameSiteNoneMode
}

func parentDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
