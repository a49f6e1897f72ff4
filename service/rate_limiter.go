package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/observability"
	"github.com/SNE-Labs/SNE-Radar/ports"
)

// RateLimiter enforces fixed-window request counters per endpoint and
// subject. When the counting store is unavailable requests are allowed
// through: availability is preferred over strict throttling here.
type RateLimiter struct {
	store  ports.KVStore
	window time.Duration
	log    zerolog.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(store ports.KVStore, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{store: store, window: window, log: log}
}

// Allow records a request against the (endpoint, subject) counter and
// reports whether it is within the limit. subjectKind is "ip" or "wallet".
func (l *RateLimiter) Allow(ctx context.Context, endpoint, subjectKind, subject string, limit int64) bool {
	if limit <= 0 || subject == "" {
		return true
	}

	key := fmt.Sprintf("ratelimit:%s:%s:%s", endpoint, subjectKind, strings.ToLower(subject))

	count, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		// Fail-open by policy.
		l.log.Warn().Err(err).Str("endpoint", endpoint).Msg("rate limit store unavailable, allowing request")
		return true
	}

	if count > limit {
		observability.RateLimited.WithLabelValues(endpoint, subjectKind).Inc()
		return false
	}
	return true
}
