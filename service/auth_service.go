// Package service implements the authentication business logic: nonce
// issuance, the SIWE login pipeline, session verification and tier
// resolution.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/observability"
	"github.com/SNE-Labs/SNE-Radar/ports"
	"github.com/SNE-Labs/SNE-Radar/siwe"
)

const noncePrefix = "siwe:nonce:"

// AuthConfig carries the validation bindings of the login pipeline.
type AuthConfig struct {
	Domain        string        // expected message domain
	Origin        string        // expected message uri prefix
	ChainID       int64         // expected network
	MaxMessageAge time.Duration // how old issuedAt may be
	NonceTTL      time.Duration
	SessionTTL    time.Duration
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token   string
	Session *core.Session
	License core.License
}

// AuthService handles authentication business logic
type AuthService struct {
	cfg       AuthConfig
	store     ports.KVStore
	verifier  ports.SignatureVerifier
	tiers     *TierResolver
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	log       zerolog.Logger

	now func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	cfg AuthConfig,
	store ports.KVStore,
	verifier ports.SignatureVerifier,
	tiers *TierResolver,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:       cfg,
		store:     store,
		verifier:  verifier,
		tiers:     tiers,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		log:       log,
		now:       time.Now,
	}
}

// IssueNonce generates a single-use nonce bound to a wallet address and
// stores it with a short TTL. Storage failure is fatal: silently skipping
// the write would break the replay invariant.
func (s *AuthService) IssueNonce(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: invalid address", core.ErrMalformedMessage)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	owner := strings.ToLower(common.HexToAddress(address).Hex())
	if err := s.store.Set(ctx, noncePrefix+nonce, owner, s.cfg.NonceTTL); err != nil {
		return "", fmt.Errorf("%w: nonce storage: %v", core.ErrUpstreamUnavailable, err)
	}

	// Read back to confirm the record is durable before handing the nonce out.
	stored, err := s.store.Get(ctx, noncePrefix+nonce)
	if err != nil || stored != owner {
		return "", fmt.Errorf("%w: nonce storage verification failed", core.ErrUpstreamUnavailable)
	}

	return nonce, nil
}

// Login runs the ordered validation pipeline over a signed SIWE message and
// mints a session on success. The nonce is consumed only after every other
// check passes, never on failure, so a client may retry with a corrected
// signature until the nonce TTL elapses.
func (s *AuthService) Login(ctx context.Context, rawMessage, signature string) (*LoginResult, error) {
	start := s.now()
	defer func() {
		observability.SIWEDuration.Observe(time.Since(start).Seconds())
	}()

	// 1. Parse.
	msg, err := siwe.Parse(rawMessage)
	if err != nil {
		return nil, err
	}

	// 2. The nonce must exist and still be unconsumed.
	owner, err := s.store.Get(ctx, noncePrefix+msg.Nonce)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, core.ErrNonceNotFound
		}
		return nil, fmt.Errorf("%w: nonce lookup: %v", core.ErrUpstreamUnavailable, err)
	}

	// 3-4. Domain and origin binding.
	if msg.Domain != s.cfg.Domain {
		return nil, core.ErrDomainMismatch
	}
	if !strings.HasPrefix(msg.URI, s.cfg.Origin) {
		return nil, core.ErrURIMismatch
	}

	// 5-6. Temporal checks. A message aged exactly MaxMessageAge is accepted.
	now := s.now()
	if now.Sub(msg.IssuedAt) > s.cfg.MaxMessageAge {
		return nil, core.ErrMessageTooOld
	}
	if msg.ExpirationTime != nil && now.After(*msg.ExpirationTime) {
		return nil, core.ErrMessageExpired
	}
	if msg.NotBefore != nil && now.Before(*msg.NotBefore) {
		return nil, core.ErrMessageNotYetValid
	}

	// 7. Signature verification (EOA or contract wallet).
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if err := s.verifier.Verify(ctx, msg.Address, rawMessage, sig); err != nil {
		return nil, err
	}

	// 8. Network binding.
	if msg.ChainID != s.cfg.ChainID {
		return nil, core.ErrChainIDMismatch
	}

	// 9. The nonce must belong to the signing address.
	signer := strings.ToLower(msg.Address.Hex())
	if owner != signer {
		return nil, core.ErrAddressMismatch
	}

	// 10. Consume. GetDelete is atomic, so two concurrent logins can never
	// both succeed on the same nonce; the loser sees NonceNotFound.
	consumed, err := s.store.GetDelete(ctx, noncePrefix+msg.Nonce)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, core.ErrNonceNotFound
		}
		return nil, fmt.Errorf("%w: nonce consume: %v", core.ErrUpstreamUnavailable, err)
	}
	if consumed != signer {
		return nil, core.ErrNonceNotFound
	}

	// 11. Resolve tier (degrades to free, never fails).
	license, _ := s.tiers.Resolve(ctx, msg.Address)

	// 12. Issue session.
	session := &core.Session{
		Address:   msg.Address.Hex(),
		Tier:      license.Tier,
		ChainID:   msg.ChainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, session.Address, session.Tier); err != nil {
			s.log.Warn().Err(err).Str("address", session.Address).Msg("failed to publish login event")
		}
	}

	observability.LoginSuccess.WithLabelValues(string(license.Tier)).Inc()

	return &LoginResult{Token: token, Session: session, License: license}, nil
}

// Verify validates a session token and re-validates its tier against the
// cache, enabling near-real-time revocation without per-request chain calls.
// The returned bool reports whether the tier came from the cache.
func (s *AuthService) Verify(ctx context.Context, token string) (*core.Session, bool, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, false, err
	}

	license, cached := s.tiers.Resolve(ctx, common.HexToAddress(session.Address))
	session.Tier = license.Tier

	return session, cached, nil
}

// Logout drops the cached tier for the session's address and publishes a
// logout event. An invalid or expired token is not an error; logout is
// idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return
	}

	s.tiers.Invalidate(ctx, session.Address)

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Address); err != nil {
			s.log.Warn().Err(err).Str("address", session.Address).Msg("failed to publish logout event")
		}
	}
}
