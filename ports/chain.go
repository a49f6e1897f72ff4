package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LicenseInfo is the detailed license state read from the registry contract.
type LicenseInfo struct {
	HasAccess  bool
	IsLifetime bool
	Expiry     time.Time // zero when the license never expires
}

// LicenseRegistry reads the on-chain access-control contract.
type LicenseRegistry interface {
	// CheckAccess reports whether the address currently holds a license.
	CheckAccess(ctx context.Context, address common.Address) (bool, error)

	// GetLicenseInfo fetches the detailed license state for an address.
	GetLicenseInfo(ctx context.Context, address common.Address) (LicenseInfo, error)
}

// SignatureVerifier validates a signature against a claimed address.
type SignatureVerifier interface {
	Verify(ctx context.Context, claimed common.Address, message string, signature []byte) error
}
