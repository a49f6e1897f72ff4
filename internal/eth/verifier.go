// Package eth verifies Ethereum wallet signatures over EIP-191 personal
// messages, for both externally-owned accounts and EIP-1271 contract wallets.
package eth

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/SNE-Labs/SNE-Radar/core"
)

// ChainBackend is the subset of the RPC client the verifier needs.
// *ethclient.Client satisfies it.
type ChainBackend interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EIP1271Magic is the return value a contract wallet must produce from
// isValidSignature for the signature to be accepted.
var EIP1271Magic = [4]byte{0x16, 0x26, 0xba, 0x7e}

const erc1271JSON = `[{"name":"isValidSignature","type":"function","stateMutability":"view","inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],"outputs":[{"name":"","type":"bytes4"}]}]`

var erc1271ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc1271JSON))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// Verifier validates a signature against a claimed address, branching on
// whether the address carries contract code at call time.
type Verifier struct {
	backend ChainBackend
	timeout time.Duration
}

// NewVerifier creates a verifier. timeout bounds every RPC call; a timed-out
// call denies the signature rather than hanging the request.
func NewVerifier(backend ChainBackend, timeout time.Duration) *Verifier {
	return &Verifier{backend: backend, timeout: timeout}
}

// Verify checks that signature was produced over the EIP-191 personal-message
// digest of message by the claimed address. The code-presence check is
// authoritative: empty code means EOA recovery, non-empty means an EIP-1271
// isValidSignature call. There is no fallback between the two paths.
func (v *Verifier) Verify(ctx context.Context, claimed common.Address, message string, signature []byte) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	code, err := v.backend.CodeAt(ctx, claimed, nil)
	if err != nil {
		return fmt.Errorf("%w: account code check: %v", core.ErrInvalidSignature, err)
	}

	if len(code) == 0 {
		return verifyEOA(claimed, message, signature)
	}
	return v.verifyContractWallet(ctx, claimed, message, signature)
}

func verifyEOA(claimed common.Address, message string, signature []byte) error {
	if len(signature) != 65 {
		return fmt.Errorf("%w: signature must be 65 bytes", core.ErrInvalidSignature)
	}

	// Accept both the legacy 27/28 recovery id and the raw 0/1 form.
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	if crypto.PubkeyToAddress(*pub) != claimed {
		return fmt.Errorf("%w: recovered address does not match", core.ErrInvalidSignature)
	}
	return nil
}

func (v *Verifier) verifyContractWallet(ctx context.Context, wallet common.Address, message string, signature []byte) error {
	var digest [32]byte
	copy(digest[:], accounts.TextHash([]byte(message)))

	input, err := erc1271ABI.Pack("isValidSignature", digest, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	out, err := v.backend.CallContract(ctx, ethereum.CallMsg{To: &wallet, Data: input}, nil)
	if err != nil {
		return fmt.Errorf("%w: isValidSignature call: %v", core.ErrInvalidSignature, err)
	}
	if len(out) < 4 || !bytes.Equal(out[:4], EIP1271Magic[:]) {
		return fmt.Errorf("%w: isValidSignature did not return the magic value", core.ErrInvalidSignature)
	}
	return nil
}
