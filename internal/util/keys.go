package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey isolates key under namespace ns. An empty ns leaves key as is.
func StorageKey(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}

// Redact returns a short stable fingerprint of k (first 8 bytes of SHA-256, hex)
// for logs that must not carry raw keys.
func Redact(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}
