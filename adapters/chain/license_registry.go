// Package chain reads the on-chain license registry contract.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/SNE-Labs/SNE-Radar/internal/eth"
	"github.com/SNE-Labs/SNE-Radar/ports"
)

const registryJSON = `[
	{"name":"checkAccess","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"getLicenseInfo","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"hasAccess","type":"bool"},{"name":"isLifetime","type":"bool"},{"name":"expiryTimestamp","type":"uint256"}]}
]`

var registryABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(registryJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// LicenseRegistry calls the license registry contract over an RPC backend.
type LicenseRegistry struct {
	backend  eth.ChainBackend
	contract common.Address
	timeout  time.Duration
}

// NewLicenseRegistry creates a registry reader bound to a contract address.
func NewLicenseRegistry(backend eth.ChainBackend, contract common.Address, timeout time.Duration) ports.LicenseRegistry {
	return &LicenseRegistry{backend: backend, contract: contract, timeout: timeout}
}

func (r *LicenseRegistry) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	input, err := registryABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	results, err := registryABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return results, nil
}

// CheckAccess reports whether the address currently holds a license
func (r *LicenseRegistry) CheckAccess(ctx context.Context, address common.Address) (bool, error) {
	results, err := r.call(ctx, "checkAccess", address)
	if err != nil {
		return false, err
	}
	granted, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("checkAccess: unexpected return type %T", results[0])
	}
	return granted, nil
}

// GetLicenseInfo fetches the detailed license state for an address
func (r *LicenseRegistry) GetLicenseInfo(ctx context.Context, address common.Address) (ports.LicenseInfo, error) {
	results, err := r.call(ctx, "getLicenseInfo", address)
	if err != nil {
		return ports.LicenseInfo{}, err
	}
	if len(results) != 3 {
		return ports.LicenseInfo{}, fmt.Errorf("getLicenseInfo: expected 3 return values, got %d", len(results))
	}

	hasAccess, ok1 := results[0].(bool)
	isLifetime, ok2 := results[1].(bool)
	expiry, ok3 := results[2].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return ports.LicenseInfo{}, fmt.Errorf("getLicenseInfo: unexpected return types")
	}

	info := ports.LicenseInfo{
		HasAccess:  hasAccess,
		IsLifetime: isLifetime,
	}
	if expiry.Sign() > 0 {
		info.Expiry = time.Unix(expiry.Int64(), 0).UTC()
	}
	return info, nil
}
