package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey names a user's recency cache slot without exposing the raw id
// in file names or sqlite keys.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
