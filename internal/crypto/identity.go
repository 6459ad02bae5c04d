// Package crypto implements one-way hashing of personally identifying values.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Hash returns the hex SHA-256 of s. No salt is applied so the same input
// always maps to the same key.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// HashEmail hashes the normalized email.
func HashEmail(email string) string {
	return Hash(NormalizeEmail(email))
}

// HashOptional hashes the trimmed value, or returns nil when it is empty.
// Used for user-agent and network origin which may be absent.
func HashOptional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	h := Hash(s)
	return &h
}

// HashPeer returns the raw SHA-256 of a peer address for in-memory keys.
func HashPeer(addr string) [sha256.Size]byte {
	return sha256.Sum256([]byte(addr))
}
