package cachekit

import pr "github.com/unkn0wn-root/cachekit/provider"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
//
// Hooks embed provider.Events, so the same value can be handed to a remote
// provider's config to receive its connection lifecycle.
type Hooks interface {
	pr.Events

	// Lookup is called once per Get that reached the provider.
	Lookup(hit bool)

	// OpError is called for every provider error surfaced to a caller.
	// op ∈ {"get", "set", "delete"}
	OpError(op, storageKey string, err error)

	// An entry was deleted by the cache on read.
	// reason ∈ {"value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Connected(string)              {}
func (NopHooks) ConnectionError(string, error) {}
func (NopHooks) Lookup(bool)                   {}
func (NopHooks) OpError(string, string, error) {}
func (NopHooks) SelfHeal(string, string)       {}
func (NopHooks) ProviderSetRejected(string)    {}

// MultiHooks fans every event out to each member in order.
type MultiHooks []Hooks

var _ Hooks = MultiHooks(nil)

func (m MultiHooks) Connected(p string) {
	for _, h := range m {
		h.Connected(p)
	}
}

func (m MultiHooks) ConnectionError(p string, err error) {
	for _, h := range m {
		h.ConnectionError(p, err)
	}
}

func (m MultiHooks) Lookup(hit bool) {
	for _, h := range m {
		h.Lookup(hit)
	}
}

func (m MultiHooks) OpError(op, k string, err error) {
	for _, h := range m {
		h.OpError(op, k, err)
	}
}

func (m MultiHooks) SelfHeal(k, reason string) {
	for _, h := range m {
		h.SelfHeal(k, reason)
	}
}

func (m MultiHooks) ProviderSetRejected(k string) {
	for _, h := range m {
		h.ProviderSetRejected(k)
	}
}
