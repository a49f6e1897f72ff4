package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/SNE-Labs/SNE-Radar/adapters/store"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, error) { return "", errors.New("down") }
func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("down")
}
func (brokenStore) Delete(context.Context, string) error              { return errors.New("down") }
func (brokenStore) GetDelete(context.Context, string) (string, error) { return "", errors.New("down") }
func (brokenStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("down")
}

func TestAllowWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(store.NewMemoryStore(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(ctx, "nonce", "wallet", "0xAbC", 10))
	}
	assert.False(t, limiter.Allow(ctx, "nonce", "wallet", "0xabc", 10))
}

func TestAllowKeysAreScoped(t *testing.T) {
	limiter := NewRateLimiter(store.NewMemoryStore(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(ctx, "login", "wallet", "0xabc", 5))
	}
	assert.False(t, limiter.Allow(ctx, "login", "wallet", "0xabc", 5))

	// Counters for other subjects and endpoints are independent.
	assert.True(t, limiter.Allow(ctx, "login", "wallet", "0xdef", 5))
	assert.True(t, limiter.Allow(ctx, "nonce", "wallet", "0xabc", 5))
}

func TestAllowWindowReset(t *testing.T) {
	kv := store.NewMemoryStore()
	current := time.Now()
	kv.SetClock(func() time.Time { return current })

	limiter := NewRateLimiter(kv, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "login", "ip", "10.0.0.1", 3)
	}
	assert.False(t, limiter.Allow(ctx, "login", "ip", "10.0.0.1", 3))

	current = current.Add(61 * time.Second)
	assert.True(t, limiter.Allow(ctx, "login", "ip", "10.0.0.1", 3))
}

func TestAllowFailsOpen(t *testing.T) {
	limiter := NewRateLimiter(brokenStore{}, time.Minute, zerolog.Nop())
	assert.True(t, limiter.Allow(context.Background(), "login", "ip", "10.0.0.1", 1))
}

func TestAllowUnlimitedAndEmptySubject(t *testing.T) {
	limiter := NewRateLimiter(store.NewMemoryStore(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "login", "ip", "", 1))
	assert.True(t, limiter.Allow(ctx, "login", "ip", "10.0.0.1", 0))
}
