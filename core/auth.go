package core

import "time"

// Tier is an access level gating feature availability and rate limits.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

var tierLevels = map[Tier]int{
	TierFree:    0,
	TierPremium: 1,
	TierPro:     2,
}

// Valid reports whether t is one of the known tier labels.
func (t Tier) Valid() bool {
	_, ok := tierLevels[t]
	return ok
}

// AtLeast reports whether t grants at least the access level of min.
// Unknown tiers rank below free.
func (t Tier) AtLeast(min Tier) bool {
	return tierLevels[t] >= tierLevels[min]
}

// License is the on-chain license state of a wallet, combined with the
// off-chain tier override table.
type License struct {
	Valid      bool      // checkAccess result
	Tier       Tier      // final tier after overrides
	IsLifetime bool      // lifetime license flag
	ExpiresAt  time.Time // zero when lifetime or unlicensed
}

// Session represents an authenticated user session. Claims are immutable
// once issued; the signed token held by the client is the source of truth.
type Session struct {
	Address   string    // checksummed Ethereum address of the user
	Tier      Tier      // tier at issuance time
	ChainID   int64     // network the user signed in on
	IssuedAt  time.Time // when the session was created
	ExpiresAt time.Time // when the session expires
}
