// Package loghooks turns cache and connection events into log records on any
// cachekit.Logger.
package loghooks

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/cachekit"
	"github.com/unkn0wn-root/cachekit/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	OpErrorEvery  uint64
	// ConnErrorInterval logs at most one connection error per interval while
	// a store stays down; 0 => 10s, negative => log all.
	ConnErrorInterval time.Duration
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    cachekit.Logger
	opts Options

	selfHealCtr atomic.Uint64
	opErrCtr    atomic.Uint64
	connErrs    *rate.Sometimes
	suppressed  atomic.Uint64
}

var _ cachekit.Hooks = (*Hooks)(nil)

func New(l cachekit.Logger, opts Options) *Hooks {
	if l == nil {
		l = cachekit.NopLogger{}
	}
	h := &Hooks{l: l, opts: opts}
	switch {
	case opts.ConnErrorInterval < 0:
		h.connErrs = &rate.Sometimes{Every: 1}
	case opts.ConnErrorInterval == 0:
		h.connErrs = &rate.Sometimes{First: 1, Interval: 10 * time.Second}
	default:
		h.connErrs = &rate.Sometimes{First: 1, Interval: opts.ConnErrorInterval}
	}
	return h
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Connected(provider string) {
	h.l.Info("cachekit.connected", cachekit.Fields{
		"provider": provider,
	})
}

func (h *Hooks) ConnectionError(provider string, err error) {
	logged := false
	h.connErrs.Do(func() {
		logged = true
		h.l.Error("cachekit.connection_error", cachekit.Fields{
			"provider":   provider,
			"err":        err,
			"suppressed": h.suppressed.Swap(0),
		})
	})
	if !logged {
		h.suppressed.Add(1)
	}
}

// Lookup is too hot to log.
func (h *Hooks) Lookup(bool) {}

func (h *Hooks) OpError(op, storageKey string, err error) {
	if !sample(h.opts.OpErrorEvery, &h.opErrCtr) {
		return
	}
	h.l.Warn("cachekit.op_error", cachekit.Fields{
		"op":  op,
		"key": h.redact(storageKey),
		"err": err,
	})
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("cachekit.self_heal", cachekit.Fields{
		"key":    h.redact(storageKey),
		"reason": reason,
	})
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	h.l.Warn("cachekit.provider_set_rejected", cachekit.Fields{
		"key": h.redact(storageKey),
	})
}
