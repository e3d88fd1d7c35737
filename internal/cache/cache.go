package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex sha256 of raw file contents
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key generates a cache key from a content digest
func Key(digest string) string {
	return "annostat:v1:" + digest
}
