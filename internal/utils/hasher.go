package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashParts hashes several strings joined with a separator that cannot
// appear in URLs, so ("a", "bc") and ("ab", "c") never collide.
func HashParts(parts ...string) string {
	return Hash(strings.Join(parts, "\x00"))
}
