package core

import "errors"

var (
	ErrMalformedMessage    = errors.New("malformed sign-in message")
	ErrNonceNotFound       = errors.New("nonce not found or expired")
	ErrDomainMismatch      = errors.New("message domain mismatch")
	ErrURIMismatch         = errors.New("message uri mismatch")
	ErrNonceMismatch       = errors.New("message nonce mismatch")
	ErrMessageTooOld       = errors.New("message issued too long ago")
	ErrMessageExpired      = errors.New("message has expired")
	ErrMessageNotYetValid  = errors.New("message is not yet valid")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrChainIDMismatch     = errors.New("chain id mismatch")
	ErrAddressMismatch     = errors.New("address mismatch")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Code maps an error to the stable wire code surfaced to clients.
// Raw error text is never echoed; handlers log the cause and return the code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMalformedMessage):
		return "MALFORMED_MESSAGE"
	case errors.Is(err, ErrNonceNotFound):
		return "NONCE_NOT_FOUND"
	case errors.Is(err, ErrDomainMismatch):
		return "DOMAIN_MISMATCH"
	case errors.Is(err, ErrURIMismatch):
		return "URI_MISMATCH"
	case errors.Is(err, ErrNonceMismatch):
		return "NONCE_MISMATCH"
	case errors.Is(err, ErrMessageTooOld), errors.Is(err, ErrMessageExpired), errors.Is(err, ErrMessageNotYetValid):
		return "TIME_WINDOW"
	case errors.Is(err, ErrInvalidSignature):
		return "INVALID_SIGNATURE"
	case errors.Is(err, ErrChainIDMismatch):
		return "CHAIN_ID_MISMATCH"
	case errors.Is(err, ErrAddressMismatch):
		return "ADDRESS_MISMATCH"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenInvalid):
		return "TOKEN_INVALID"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "UPSTREAM_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
