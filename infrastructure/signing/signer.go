// Package signing provides truncated HMAC-SHA256 signatures over short
// pipe-delimited messages.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureLength is the number of hex characters kept from the HMAC.
const SignatureLength = 12

// Signer signs and verifies messages with a shared secret.
type Signer struct {
	secret []byte
}

// NewSigner creates a new Signer with the given secret string.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Message joins parts with "|" so that every signer builds identical input.
func Message(parts ...string) string {
	return strings.Join(parts, "|")
}

// Sign returns the first SignatureLength hex characters of HMAC-SHA256(message).
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))[:SignatureLength]
}

// Verify checks signature against message in constant time.
func (s *Signer) Verify(message, signature string) bool {
	return hmac.Equal([]byte(s.Sign(message)), []byte(signature))
}
