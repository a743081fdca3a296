// Package share signs and verifies score claims carried in share links.
//
// The signing secret ships with the client build, so a signature only deters
// casual editing of a link. Anyone holding the build can mint valid links.
package share

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"
)

// DefaultSecret is the build-embedded signing key.
const DefaultSecret = "js-quizzy-share-secret-key-2024"

// DefaultMaxAge bounds how long a share link stays valid.
const DefaultMaxAge = 365 * 24 * time.Hour

// Signer computes and checks share-link signatures.
type Signer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer; an empty secret or non-positive maxAge falls back to the defaults.
func NewSigner(secret string, maxAge time.Duration) *Signer {
	return NewSignerWithClock(secret, maxAge, time.Now)
}

// NewSignerWithClock allows a controllable clock in tests.
func NewSignerWithClock(secret string, maxAge time.Duration, now func() time.Time) *Signer {
	if secret == "" {
		secret = DefaultSecret
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Signer{secret: []byte(secret), maxAge: maxAge, now: now}
}

// MaxAge is the default link lifetime used by Open.
func (s *Signer) MaxAge() time.Duration {
	return s.maxAge
}

// Now returns the signer's current time in epoch milliseconds.
func (s *Signer) Now() int64 {
	return s.now().UnixMilli()
}

// Sign returns the URL-safe signature of (userID, score, timestamp).
// timestamp is in epoch milliseconds.
func (s *Signer) Sign(userID, score string, timestamp int64) string {
	message := userID + "|" + score + "|" + strconv.FormatInt(timestamp, 10) + "|" + string(s.secret)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches (userID, score, timestamp).
func (s *Signer) Verify(userID, score string, timestamp int64, signature string) bool {
	return constantTimeEqual(s.Sign(userID, score, timestamp), signature)
}

// IsTimestampValid reports whether 0 <= now-timestamp <= maxAge, all in
// milliseconds. Timestamps in the future are rejected.
func (s *Signer) IsTimestampValid(timestamp int64, maxAge time.Duration) bool {
	age := s.Now() - timestamp
	return age >= 0 && age <= maxAge.Milliseconds()
}

// constantTimeEqual compares every byte regardless of where a and b first
// differ. Only a length mismatch returns early.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
