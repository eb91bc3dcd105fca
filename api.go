package cachekit

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/cachekit/codec"
	pr "github.com/unkn0wn-root/cachekit/provider"
)

// SetCostFunc returns the cost charged to cost-aware providers (ristretto) for
// one stored entry. raw is the encoded value.
type SetCostFunc func(key string, raw []byte) int64

// Cache is the provider-agnostic cache contract.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V];
// Cache[string] with codec.String is the plain text cache.
type Cache[V any] interface {
	// Get returns (value, true, nil) on hit and (zero, false, nil) on miss.
	// A missing key is never an error.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Set stores value under key. ttl > 0 makes the entry unreadable after
	// roughly ttl (enforced by the store); ttl <= 0 keeps it until deleted
	// or evicted by the store.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Ready blocks until the backing store is connected.
	Ready(ctx context.Context) error

	Enabled() bool
	Close(context.Context) error
}

// Options configure a Cache.
// Only Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[V]

	Namespace      string      // optional key prefix, e.g. "user" => "user:<key>"
	Logger         Logger      // if nil, NopLogger is used
	Hooks          Hooks       // if nil, NopHooks is used
	Disabled       bool        // default false (enabled)
	ComputeSetCost SetCostFunc // default 1
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
