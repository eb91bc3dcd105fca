package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/cachekit"
)

type countHooks struct {
	cachekit.NopHooks
	mu      sync.Mutex
	lookups int
	connErr int
	block   chan struct{}
}

func (c *countHooks) Lookup(bool) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
}

func (c *countHooks) ConnectionError(string, error) {
	c.mu.Lock()
	c.connErr++
	c.mu.Unlock()
}

func TestEventsDeliveredBeforeCloseReturns(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 100)

	for i := 0; i < 50; i++ {
		h.Lookup(true)
	}
	h.ConnectionError("redis", errors.New("down"))
	h.Close()

	if inner.lookups != 50 || inner.connErr != 1 {
		t.Fatalf("lookups=%d connErr=%d", inner.lookups, inner.connErr)
	}
	if h.Dropped() != 0 {
		t.Fatalf("unexpected drops: %d", h.Dropped())
	}
}

func TestFullQueueDrops(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event held by the worker, one in the queue, the rest dropped
	for i := 0; i < 10; i++ {
		h.Lookup(true)
	}
	if h.Dropped() == 0 {
		t.Fatal("expected drops with a blocked worker and qlen=1")
	}
	close(inner.block)
	h.Close()
}

func TestAfterCloseIsNoop(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 1, 10)
	h.Close()
	h.Close()

	h.Lookup(true) // must not panic on closed channel
	if inner.lookups != 0 || h.Dropped() != 1 {
		t.Fatalf("lookups=%d dropped=%d", inner.lookups, h.Dropped())
	}
}
