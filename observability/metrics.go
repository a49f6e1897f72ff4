// Package observability exposes the service's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginSuccess counts successful logins by resolved tier.
	LoginSuccess = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_auth_login_success_total",
		Help: "Successful SIWE logins by tier.",
	}, []string{"tier"})

	// LoginFail counts failed logins by stable error code.
	LoginFail = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_auth_login_fail_total",
		Help: "Failed SIWE logins by error code.",
	}, []string{"reason"})

	// VerifyFail counts failed token verifications by error code.
	VerifyFail = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_auth_verify_fail_total",
		Help: "Failed session verifications by error code.",
	}, []string{"reason"})

	// SIWEDuration observes end-to-end login pipeline latency.
	SIWEDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_auth_siwe_duration_seconds",
		Help:    "SIWE login pipeline duration.",
		Buckets: prometheus.DefBuckets,
	})

	// TierCheckDuration observes tier resolution latency, cache hits included.
	TierCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_auth_tier_check_duration_seconds",
		Help:    "Tier resolution duration.",
		Buckets: prometheus.DefBuckets,
	})

	// RateLimited counts rejected requests by endpoint and subject kind.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_auth_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"endpoint", "subject"})
)
