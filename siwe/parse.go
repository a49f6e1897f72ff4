// Package siwe implements parsing of EIP-4361 Sign-In with Ethereum messages.
package siwe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SNE-Labs/SNE-Radar/core"
)

// Message is a parsed EIP-4361 message. Addresses are normalized to their
// EIP-55 checksum form.
type Message struct {
	Domain         string
	Address        common.Address
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
}

// The EIP-4361 grammar. Request ID and Resources trailers are accepted and
// discarded; everything else is captured. A message either matches in full
// or is rejected.
var messageRe = regexp.MustCompile(
	`^(?P<domain>[^\n]+) wants you to sign in with your Ethereum account:\n` +
		`(?P<address>0x[a-fA-F0-9]{40})\n\n` +
		`(?:(?P<statement>[^\n]+)\n\n)?` +
		`URI: (?P<uri>[^\n]+)\n` +
		`Version: (?P<version>[0-9]+)\n` +
		`Chain ID: (?P<chainId>[0-9]+)\n` +
		`Nonce: (?P<nonce>[A-Za-z0-9]+)\n` +
		`Issued At: (?P<issuedAt>[^\n]+?)` +
		`(?:\nExpiration Time: (?P<expirationTime>[^\n]+))?` +
		`(?:\nNot Before: (?P<notBefore>[^\n]+))?` +
		`(?:\nRequest ID: [^\n]+)?` +
		`(?:\nResources:(?:\n- [^\n]+)*)?\n?$`,
)

var groupIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, name := range messageRe.SubexpNames() {
		if name != "" {
			idx[name] = i
		}
	}
	return idx
}()

// Parse parses a raw EIP-4361 message. It never partially succeeds: any
// missing or malformed required field yields core.ErrMalformedMessage.
func Parse(raw string) (*Message, error) {
	m := messageRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, core.ErrMalformedMessage
	}
	group := func(name string) string { return m[groupIndex[name]] }

	chainID, err := strconv.ParseInt(group("chainId"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id: %v", core.ErrMalformedMessage, err)
	}

	issuedAt, err := parseTimestamp(group("issuedAt"))
	if err != nil {
		return nil, fmt.Errorf("%w: issued at: %v", core.ErrMalformedMessage, err)
	}

	msg := &Message{
		Domain:    group("domain"),
		Address:   common.HexToAddress(group("address")),
		Statement: group("statement"),
		URI:       group("uri"),
		Version:   group("version"),
		ChainID:   chainID,
		Nonce:     group("nonce"),
		IssuedAt:  issuedAt,
	}

	if s := group("expirationTime"); s != "" {
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("%w: expiration time: %v", core.ErrMalformedMessage, err)
		}
		msg.ExpirationTime = &t
	}
	if s := group("notBefore"); s != "" {
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("%w: not before: %v", core.ErrMalformedMessage, err)
		}
		msg.NotBefore = &t
	}

	return msg, nil
}

// timestampLayouts accepts ISO-8601 with an explicit offset or trailing Z,
// and zone-less timestamps which are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}
