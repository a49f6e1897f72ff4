package ports

import (
	"context"

	"github.com/SNE-Labs/SNE-Radar/core"
)

// TierOverrides is the off-chain wallet→tier override table. An explicit
// entry overrides the on-chain "licensed" default of premium.
type TierOverrides interface {
	// GetTier returns the override for an address, if one exists.
	GetTier(ctx context.Context, address string) (core.Tier, bool, error)

	// SetTier creates or updates the override for an address.
	SetTier(ctx context.Context, address string, tier core.Tier) error
}
