// Package cachekit is a provider-agnostic cache contract with adapters for
// concrete stores.
//
// Components:
//   - Cache[V]: Get / Set (optional TTL) / Delete, plus Ready and Close.
//   - Provider: byte store with TTL (Redis, Ristretto, BigCache). Every store is
//     a variant of the same interface.
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Hooks: connection lifecycle and high-signal operation events.
//
// Errors:
//
//	miss               -> (zero, false, nil), never an error
//	store unreachable  -> *OpError wrapping provider.ErrNotConnected
//	store rejected cmd -> *OpError wrapping *provider.CommandError
//	after Close        -> ErrClosed
//
// Usage:
//
//	p, _ := redis.New(redis.Config{Host: "localhost", Port: 6379, Events: hooks})
//	cache, _ := cachekit.New[string](cachekit.Options[string]{Provider: p, Codec: codec.String{}, Hooks: hooks})
//	defer cache.Close(ctx)
//	_ = cache.Ready(ctx)
//	_ = cache.Set(ctx, "myKey", "myValue", time.Hour)
//	v, ok, err := cache.Get(ctx, "myKey")
package cachekit
