// Package provider defines the storage abstraction used by cachekit.
//
// A Provider is one backing store (Redis, ristretto, bigcache, ...) seen as a
// byte store with TTLs. New stores are added as new implementations of the
// same interface; the cache never branches on the concrete kind.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key. If a store performs
// internal transforms (e.g. framing an expiry deadline), they MUST be fully
// reversed before the bytes are handed back.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	// May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Ready blocks until the store can serve commands, ctx is done or the
	// provider is closed. In-process stores are always ready.
	Ready(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Events receives connection lifecycle notifications from providers that talk
// to a remote store. Implementations MUST be cheap and non-blocking.
type Events interface {
	// Connected fires every time the provider (re)establishes its connection.
	Connected(provider string)
	// ConnectionError fires for every failed connection attempt or transport
	// failure observed on a command.
	ConnectionError(provider string, err error)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) Connected(string)              {}
func (NopEvents) ConnectionError(string, error) {}
