package siwe

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNE-Labs/SNE-Radar/core"
)

const testAddress = "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc"

func validMessage() string {
	return strings.Join([]string{
		"example.com wants you to sign in with your Ethereum account:",
		testAddress,
		"",
		"URI: https://example.com/login",
		"Version: 1",
		"Chain ID: 534351",
		"Nonce: a1b2c3d4e5f6",
		"Issued At: 2026-08-31T10:00:00Z",
	}, "\n")
}

func TestParseRequiredFields(t *testing.T) {
	msg, err := Parse(validMessage())
	require.NoError(t, err)

	assert.Equal(t, "example.com", msg.Domain)
	assert.Equal(t, common.HexToAddress(testAddress), msg.Address)
	assert.Equal(t, "https://example.com/login", msg.URI)
	assert.Equal(t, "1", msg.Version)
	assert.Equal(t, int64(534351), msg.ChainID)
	assert.Equal(t, "a1b2c3d4e5f6", msg.Nonce)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), msg.IssuedAt)
	assert.Empty(t, msg.Statement)
	assert.Nil(t, msg.ExpirationTime)
	assert.Nil(t, msg.NotBefore)
}

func TestParseStatementAndOptionalTimestamps(t *testing.T) {
	raw := strings.Join([]string{
		"example.com wants you to sign in with your Ethereum account:",
		testAddress,
		"",
		"Sign in to SNE Radar.",
		"",
		"URI: https://example.com",
		"Version: 1",
		"Chain ID: 1",
		"Nonce: xyz789",
		"Issued At: 2026-08-31T10:00:00.040Z",
		"Expiration Time: 2026-08-31T10:10:00Z",
		"Not Before: 2026-08-31T09:50:00Z",
	}, "\n")

	msg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "Sign in to SNE Radar.", msg.Statement)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 0, 0, 40_000_000, time.UTC), msg.IssuedAt)
	require.NotNil(t, msg.ExpirationTime)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 10, 0, 0, time.UTC), *msg.ExpirationTime)
	require.NotNil(t, msg.NotBefore)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 50, 0, 0, time.UTC), *msg.NotBefore)
}

func TestParseRequestIDAndResourcesTolerated(t *testing.T) {
	raw := validMessage() + "\nRequest ID: some-id\nResources:\n- https://example.com/a\n- https://example.com/b"

	msg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f6", msg.Nonce)
}

func TestParseZonelessTimestampIsUTC(t *testing.T) {
	raw := strings.Replace(validMessage(), "2026-08-31T10:00:00Z", "2026-08-31T10:00:00", 1)

	msg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), msg.IssuedAt)
}

func TestParseOffsetTimestampNormalizedToUTC(t *testing.T) {
	raw := strings.Replace(validMessage(), "2026-08-31T10:00:00Z", "2026-08-31T12:00:00+02:00", 1)

	msg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), msg.IssuedAt)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"garbage":           "not a sign-in message",
		"missing uri":       strings.Replace(validMessage(), "URI: https://example.com/login\n", "", 1),
		"missing nonce":     strings.Replace(validMessage(), "Nonce: a1b2c3d4e5f6\n", "", 1),
		"missing issued at": strings.Replace(validMessage(), "\nIssued At: 2026-08-31T10:00:00Z", "", 1),
		"short address":     strings.Replace(validMessage(), testAddress, "0x12345", 1),
		"non-hex address":   strings.Replace(validMessage(), testAddress, "0xZZ65507D1a55bcC2695C58ba16FB37d819B0A4dc", 1),
		"nonce bad charset": strings.Replace(validMessage(), "Nonce: a1b2c3d4e5f6", "Nonce: abc-def", 1),
		"bad timestamp":     strings.Replace(validMessage(), "2026-08-31T10:00:00Z", "31/08/2026 10:00", 1),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			assert.True(t, errors.Is(err, core.ErrMalformedMessage), "expected ErrMalformedMessage, got %v", err)
		})
	}
}

func TestParseNeverPartiallySucceeds(t *testing.T) {
	raw := strings.Replace(validMessage(), "Version: 1\n", "", 1)

	msg, err := Parse(raw)
	require.Error(t, err)
	assert.Nil(t, msg)
}
