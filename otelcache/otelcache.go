// Package otelcache decorates a cachekit.Cache with OpenTelemetry spans.
package otelcache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/cachekit"
	"github.com/unkn0wn-root/cachekit/internal/util"
)

const scope = "github.com/unkn0wn-root/cachekit/otelcache"

type cache[V any] struct {
	inner  cachekit.Cache[V]
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	redact func(string) string
}

type Option func(*options)

type options struct {
	redact func(string) string
}

// WithKeyRedactor sets how keys are written to cache.key. The default is the
// same SHA-256 prefix loghooks uses; pass an identity func to record raw keys.
func WithKeyRedactor(f func(string) string) Option {
	return func(o *options) {
		if f != nil {
			o.redact = f
		}
	}
}

// Wrap returns a Cache that opens one client span per operation.
// tp nil => the global TracerProvider. system names the backing store
// (e.g. "redis") and is recorded as db.system.
func Wrap[V any](inner cachekit.Cache[V], tp trace.TracerProvider, system string, opts ...Option) cachekit.Cache[V] {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	o := options{redact: util.Redact}
	for _, opt := range opts {
		opt(&o)
	}
	c := &cache[V]{inner: inner, tracer: tp.Tracer(scope), redact: o.redact}
	if system != "" {
		c.attrs = append(c.attrs, attribute.String("db.system", system))
	}
	return c
}

func (c *cache[V]) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	attrs := c.attrs
	if key != "" {
		attrs = append(attrs[:len(attrs):len(attrs)], attribute.String("cache.key", c.redact(key)))
	}
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	ctx, span := c.start(ctx, "cache.get", key)
	v, ok, err := c.inner.Get(ctx, key)
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	end(span, err)
	return v, ok, err
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	ctx, span := c.start(ctx, "cache.set", key)
	if ttl > 0 {
		span.SetAttributes(attribute.Int64("cache.ttl_ms", ttl.Milliseconds()))
	}
	err := c.inner.Set(ctx, key, value, ttl)
	end(span, err)
	return err
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	ctx, span := c.start(ctx, "cache.delete", key)
	err := c.inner.Delete(ctx, key)
	end(span, err)
	return err
}

func (c *cache[V]) Ready(ctx context.Context) error {
	ctx, span := c.start(ctx, "cache.ready", "")
	err := c.inner.Ready(ctx)
	end(span, err)
	return err
}

func (c *cache[V]) Enabled() bool { return c.inner.Enabled() }

func (c *cache[V]) Close(ctx context.Context) error { return c.inner.Close(ctx) }
