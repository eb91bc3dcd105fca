package promhooks

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	pr "github.com/unkn0wn-root/cachekit/provider"
)

func newTestHooks(t *testing.T) *Hooks {
	t.Helper()
	h, err := New(prometheus.NewRegistry(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestLookups(t *testing.T) {
	h := newTestHooks(t)
	h.Lookup(true)
	h.Lookup(true)
	h.Lookup(false)

	if got := testutil.ToFloat64(h.lookups.WithLabelValues("hit")); got != 2 {
		t.Fatalf("hits = %v", got)
	}
	if got := testutil.ToFloat64(h.lookups.WithLabelValues("miss")); got != 1 {
		t.Fatalf("misses = %v", got)
	}
}

func TestOpErrorKinds(t *testing.T) {
	h := newTestHooks(t)
	h.OpError("get", "k", &pr.ConnError{Provider: "redis", State: "disconnected"})
	h.OpError("set", "k", &pr.CommandError{Provider: "redis", Op: "set", Err: errors.New("ERR")})
	h.OpError("get", "k", context.DeadlineExceeded)

	cases := []struct{ op, kind string }{
		{"get", "connection"},
		{"set", "command"},
		{"get", "other"},
	}
	for _, tc := range cases {
		if got := testutil.ToFloat64(h.opErrors.WithLabelValues(tc.op, tc.kind)); got != 1 {
			t.Fatalf("op_errors{%s,%s} = %v", tc.op, tc.kind, got)
		}
	}
}

func TestConnectionGauge(t *testing.T) {
	h := newTestHooks(t)

	h.Connected("redis")
	if got := testutil.ToFloat64(h.up.WithLabelValues("redis")); got != 1 {
		t.Fatalf("up after Connected = %v", got)
	}
	h.ConnectionError("redis", errors.New("EOF"))
	if got := testutil.ToFloat64(h.up.WithLabelValues("redis")); got != 0 {
		t.Fatalf("up after ConnectionError = %v", got)
	}
	if got := testutil.ToFloat64(h.connEvents.WithLabelValues("redis", "error")); got != 1 {
		t.Fatalf("error events = %v", got)
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg, "app"); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(reg, "app"); err == nil {
		t.Fatal("expected AlreadyRegisteredError")
	}
}

func TestSelfHealAndRejected(t *testing.T) {
	h := newTestHooks(t)
	h.SelfHeal("k", "value_decode")
	h.ProviderSetRejected("k")

	if got := testutil.ToFloat64(h.selfHeals.WithLabelValues("value_decode")); got != 1 {
		t.Fatalf("self heals = %v", got)
	}
	if got := testutil.ToFloat64(h.setRejected); got != 1 {
		t.Fatalf("rejected = %v", got)
	}
}
