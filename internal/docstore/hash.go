package docstore

import (
	"crypto/sha256"
	"fmt"
)

// ContentHashHex computes SHA-256 of content and returns the hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
