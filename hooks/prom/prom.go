// Package promhooks exports cache and connection events as Prometheus metrics.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cachekit"
)

type Hooks struct {
	lookups     *prometheus.CounterVec
	opErrors    *prometheus.CounterVec
	connEvents  *prometheus.CounterVec
	up          *prometheus.GaugeVec
	selfHeals   *prometheus.CounterVec
	setRejected prometheus.Counter
}

var _ cachekit.Hooks = (*Hooks)(nil)

// New registers the collectors on reg. namespace "" => "cachekit".
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if namespace == "" {
		namespace = "cachekit"
	}
	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "op_errors_total",
			Help:      "Errors returned to callers by operation and kind.",
		}, []string{"op", "kind"}),
		connEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_events_total",
			Help:      "Provider connection lifecycle events.",
		}, []string{"provider", "event"}),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_up",
			Help:      "1 while the provider is connected, 0 after a connection error.",
		}, []string{"provider"}),
		selfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "self_heals_total",
			Help:      "Entries dropped on read.",
		}, []string{"reason"}),
		setRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "set_rejected_total",
			Help:      "Writes refused by the provider under pressure.",
		}),
	}
	for _, c := range []prometheus.Collector{h.lookups, h.opErrors, h.connEvents, h.up, h.selfHeals, h.setRejected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Connected(provider string) {
	h.connEvents.WithLabelValues(provider, "connected").Inc()
	h.up.WithLabelValues(provider).Set(1)
}

func (h *Hooks) ConnectionError(provider string, _ error) {
	h.connEvents.WithLabelValues(provider, "error").Inc()
	h.up.WithLabelValues(provider).Set(0)
}

func (h *Hooks) Lookup(hit bool) {
	if hit {
		h.lookups.WithLabelValues("hit").Inc()
		return
	}
	h.lookups.WithLabelValues("miss").Inc()
}

func (h *Hooks) OpError(op, _ string, err error) {
	h.opErrors.WithLabelValues(op, kind(err)).Inc()
}

func (h *Hooks) SelfHeal(_, reason string) {
	h.selfHeals.WithLabelValues(reason).Inc()
}

func (h *Hooks) ProviderSetRejected(string) { h.setRejected.Inc() }

func kind(err error) string {
	switch {
	case cachekit.IsConnectionError(err):
		return "connection"
	case cachekit.IsCommandError(err):
		return "command"
	default:
		return "other"
	}
}
