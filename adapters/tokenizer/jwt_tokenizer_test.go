package tokenizer

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNE-Labs/SNE-Radar/core"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testSession() *core.Session {
	now := time.Now().Truncate(time.Second)
	return &core.Session{
		Address:   "0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc",
		Tier:      core.TierPremium,
		ChainID:   534351,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)
	session := testSession()

	token, err := tk.SessionToToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tk.TokenToSession(token)
	require.NoError(t, err)

	assert.Equal(t, session.Address, got.Address)
	assert.Equal(t, session.Tier, got.Tier)
	assert.Equal(t, session.ChainID, got.ChainID)
	assert.True(t, session.IssuedAt.Equal(got.IssuedAt))
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
}

func TestTokenExpired(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)
	session := testSession()
	session.IssuedAt = time.Now().Add(-2 * time.Hour)
	session.ExpiresAt = time.Now().Add(-time.Hour)

	token, err := tk.SessionToToken(session)
	require.NoError(t, err)

	_, err = tk.TokenToSession(token)
	assert.True(t, errors.Is(err, core.ErrTokenExpired))
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewJWTTokenizer(testSecret).SessionToToken(testSession())
	require.NoError(t, err)

	_, err = NewJWTTokenizer([]byte("another-secret-another-secret-xx")).TokenToSession(token)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestTokenGarbageRejected(t *testing.T) {
	_, err := NewJWTTokenizer(testSecret).TokenToSession("not.a.jwt")
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestTokenWrongAudienceRejected(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Audience:  jwt.ClaimStrings{"something:else"},
		},
		Tier: string(core.TierFree),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = NewJWTTokenizer(testSecret).TokenToSession(token)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestTokenUnexpectedAlgorithmRejected(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc",
		"aud": AudienceSession,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTTokenizer(testSecret).TokenToSession(token)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}
