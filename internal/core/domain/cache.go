package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// CacheEntry is a verified, reusable simplification result.
type CacheEntry struct {
	// Fingerprint is the content-addressed key for this entry.
	Fingerprint string

	// Text is the verified simplified text.
	Text string

	// Verdict is true if verification passed (safe-fallback results are
	// never cached, so this is true for all stored entries).
	Verdict bool

	// PolicyVersion is the prompt/verification rule version the entry
	// was produced under.
	PolicyVersion int

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time

	// ExpiresAt is when the entry stops being served. Zero means no expiry.
	ExpiresAt time.Time
}

// Expired returns true if the entry has passed its expiry time.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Fingerprint computes the content-addressed cache key for a chunk request.
// It is a pure function of the normalised chunk text, the level, the target
// language and the policy version: identical inputs always produce the same
// key, and a policy version bump changes every key.
func Fingerprint(text string, level Level, targetLang Language, policyVersion int) string {
	h := sha256.New()
	h.Write([]byte(NormalizeText(text)))
	h.Write([]byte{0})
	h.Write([]byte(level))
	h.Write([]byte{0})
	h.Write([]byte(targetLang))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(policyVersion)))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeText lowercases text and collapses runs of whitespace to a
// single space, so that formatting-only differences share a fingerprint.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
