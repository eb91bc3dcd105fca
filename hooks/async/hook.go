// Package asynchook moves hook delivery off the caller's goroutine.
//
// usage:
//
//	raw := loghooks.New(zaplog.New(logger), loghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	p, _ := redis.New(redis.Config{Host: "localhost", Port: 6379, Events: hooks})
//	cache, _ := cachekit.New[string](cachekit.Options[string]{
//	    Provider: p,
//	    Codec:    codec.String{},
//	    Hooks:    hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cachekit"
)

// Hooks forwards events to inner from a fixed worker pool. Events are dropped
// when the queue is full or after Close.
type Hooks struct {
	inner   cachekit.Hooks
	q       chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	dropped atomic.Uint64
}

var _ cachekit.Hooks = (*Hooks)(nil)

func New(inner cachekit.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Connected(p string)                  { h.try(func() { h.inner.Connected(p) }) }
func (h *Hooks) ConnectionError(p string, err error) { h.try(func() { h.inner.ConnectionError(p, err) }) }
func (h *Hooks) Lookup(hit bool)                     { h.try(func() { h.inner.Lookup(hit) }) }
func (h *Hooks) SelfHeal(k, r string)                { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)        { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) OpError(op, k string, err error) {
	h.try(func() { h.inner.OpError(op, k, err) })
}
