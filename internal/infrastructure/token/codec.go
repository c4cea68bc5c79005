// Package token implements the sheet access token scheme: a Base64-wrapped,
// XOR-obfuscated "<sheet_id>|<issued_at_ms>" pair bound by a freshness
// window. The cyclic XOR is reversible and carries no integrity guarantee;
// anyone holding the shared secret can mint tokens, so the expiry window
// bounds replay, not forgery.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken covers every decode failure: malformed encoding, bad
// payload shape, and expiry.
var ErrInvalidToken = errors.New("invalid or expired sheet token")

// DefaultExpiry is the validity window applied when none is configured.
const DefaultExpiry = 60 * time.Second

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SecretLength is the size of operator-generated secret keys.
const SecretLength = 32

// Encode builds a token for the given sheet id and issue time. Used by tests
// and client-side tooling; the service itself only decodes.
func Encode(sheetID, secret string, issuedAtMS int64) (string, error) {
	if secret == "" {
		return "", ErrInvalidToken
	}
	plain := fmt.Sprintf("%s|%d", sheetID, issuedAtMS)
	return base64.StdEncoding.EncodeToString(xorCycle([]byte(plain), secret)), nil
}

// Decode validates a token against the shared secret and the freshness
// window and returns the embedded sheet id. nowMS and expiryMS are
// milliseconds; a token older than expiryMS fails. Tokens stamped in the
// future are accepted until their window elapses.
func Decode(tok, secret string, nowMS, expiryMS int64) (string, error) {
	if secret == "" {
		return "", ErrInvalidToken
	}
	decoded, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return "", ErrInvalidToken
	}

	parts := strings.Split(string(xorCycle(decoded, secret)), "|")
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}
	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if nowMS-issuedAt > expiryMS {
		return "", ErrInvalidToken
	}
	return parts[0], nil
}

// GenerateSecret returns a uniformly random alphanumeric secret key.
func GenerateSecret(length int) (string, error) {
	if length <= 0 {
		length = SecretLength
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}

func xorCycle(data []byte, secret string) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ secret[i%len(secret)]
	}
	return out
}
