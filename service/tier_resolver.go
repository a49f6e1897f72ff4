package service

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/observability"
	"github.com/SNE-Labs/SNE-Radar/ports"
)

const tierCachePrefix = "tier:cache:"

// TierResolver resolves a wallet's access tier via cache-then-on-chain
// recheck. The on-chain checkAccess call decides free vs licensed; the
// off-chain override table decides premium vs pro for licensed wallets.
type TierResolver struct {
	store     ports.KVStore
	registry  ports.LicenseRegistry
	overrides ports.TierOverrides
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewTierResolver creates a new tier resolver
func NewTierResolver(
	store ports.KVStore,
	registry ports.LicenseRegistry,
	overrides ports.TierOverrides,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *TierResolver {
	return &TierResolver{
		store:     store,
		registry:  registry,
		overrides: overrides,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// Resolve returns the license state for an address and whether it came from
// the cache. Resolution never fails: an unreachable chain or store degrades
// to the free tier without a cache write, so the next call re-attempts.
func (r *TierResolver) Resolve(ctx context.Context, address common.Address) (core.License, bool) {
	start := time.Now()
	defer func() {
		observability.TierCheckDuration.Observe(time.Since(start).Seconds())
	}()

	cacheKey := tierCachePrefix + strings.ToLower(address.Hex())

	if cached, err := r.store.Get(ctx, cacheKey); err == nil {
		tier := core.Tier(cached)
		if tier.Valid() {
			return core.License{Valid: tier != core.TierFree, Tier: tier}, true
		}
	}

	license, cacheable := r.resolveOnChain(ctx, address)

	if cacheable {
		if err := r.store.Set(ctx, cacheKey, string(license.Tier), r.cacheTTL); err != nil {
			r.log.Warn().Err(err).Str("address", address.Hex()).Msg("tier cache write failed")
		}
	}

	return license, false
}

// Invalidate drops the cached tier for an address.
func (r *TierResolver) Invalidate(ctx context.Context, address string) {
	key := tierCachePrefix + strings.ToLower(address)
	if err := r.store.Delete(ctx, key); err != nil {
		r.log.Warn().Err(err).Str("address", address).Msg("tier cache invalidation failed")
	}
}

// resolveOnChain performs the uncached resolution. The second return value
// reports whether the result may be cached; RPC failures must not be.
func (r *TierResolver) resolveOnChain(ctx context.Context, address common.Address) (core.License, bool) {
	granted, err := r.registry.CheckAccess(ctx, address)
	if err != nil {
		r.log.Warn().Err(err).Str("address", address.Hex()).Msg("checkAccess failed, defaulting to free")
		return core.License{Tier: core.TierFree}, false
	}

	if !granted {
		return core.License{Tier: core.TierFree}, true
	}

	info, err := r.registry.GetLicenseInfo(ctx, address)
	if err != nil {
		r.log.Warn().Err(err).Str("address", address.Hex()).Msg("getLicenseInfo failed, defaulting to free")
		return core.License{Tier: core.TierFree}, false
	}

	// Licensed wallets default to premium; an explicit override table entry
	// wins. Override lookup failure degrades to the default rather than
	// failing the resolution.
	tier := core.TierPremium
	override, ok, err := r.overrides.GetTier(ctx, strings.ToLower(address.Hex()))
	if err != nil {
		r.log.Warn().Err(err).Str("address", address.Hex()).Msg("tier override lookup failed")
	} else if ok && override.Valid() {
		tier = override
	}

	return core.License{
		Valid:      true,
		Tier:       tier,
		IsLifetime: info.IsLifetime,
		ExpiresAt:  info.Expiry,
	}, true
}
