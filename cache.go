package cachekit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cachekit/codec"
	"github.com/unkn0wn-root/cachekit/internal/util"
	pr "github.com/unkn0wn-root/cachekit/provider"
)

type cache[V any] struct {
	ns             string
	provider       pr.Provider
	codec          codec.Codec[V]
	log            Logger
	hooks          Hooks
	enabled        bool
	computeSetCost SetCostFunc

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("cachekit: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("cachekit: codec is required")
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

// Close releases the provider. Safe to call multiple times; the first
// result is returned on every call.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.provider.Close(ctx)
	})
	return c.closeErr
}

func (c *cache[V]) Ready(ctx context.Context) error {
	if c.closed.Load() {
		return &OpError{Op: "ready", Err: ErrClosed}
	}
	if !c.enabled {
		return nil
	}
	if err := c.provider.Ready(ctx); err != nil {
		return &OpError{Op: "ready", Err: err}
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := c.check("get", key); err != nil {
		return zero, false, err
	}
	if !c.enabled {
		return zero, false, nil
	}
	k := c.storageKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		return zero, false, c.fail(ctx, "get", key, k, err)
	}
	if !ok {
		c.hooks.Lookup(false)
		return zero, false, nil
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		// self-heal; a failed delete still reads as a miss
		if derr := c.provider.Del(ctx, k); derr != nil {
			c.hooks.OpError("delete", k, derr)
			c.log.Warn("self-heal delete failed", Fields{"key": key, "err": derr})
		}
		c.log.Warn("dropped undecodable entry", Fields{"key": key, "err": err})
		c.hooks.SelfHeal(k, "value_decode")
		c.hooks.Lookup(false)
		return zero, false, nil
	}
	c.hooks.Lookup(true)
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if err := c.check("set", key); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	k := c.storageKey(key)
	payload, err := c.codec.Encode(value)
	if err != nil {
		return &OpError{Op: "set", Key: key, Err: fmt.Errorf("encode: %w", err)}
	}
	ok, err := c.provider.Set(ctx, k, payload, c.computeSetCost(k, payload), ttl)
	if err != nil {
		return c.fail(ctx, "set", key, k, err)
	}
	if !ok {
		c.log.Debug("Set rejected by provider (pressure)", Fields{"key": key})
		c.hooks.ProviderSetRejected(k)
	}
	return nil
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	if err := c.check("delete", key); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	k := c.storageKey(key)
	if err := c.provider.Del(ctx, k); err != nil {
		return c.fail(ctx, "delete", key, k, err)
	}
	return nil
}

func (c *cache[V]) check(op, key string) error {
	if c.closed.Load() {
		return &OpError{Op: op, Key: key, Err: ErrClosed}
	}
	if key == "" {
		return &OpError{Op: op, Err: ErrEmptyKey}
	}
	return nil
}

func (c *cache[V]) fail(ctx context.Context, op, key, storageKey string, err error) error {
	c.hooks.OpError(op, storageKey, err)
	if ctx.Err() == nil {
		c.log.Debug("provider "+op+" failed", Fields{"key": key, "err": err})
	}
	return &OpError{Op: op, Key: key, Err: err}
}

func (c *cache[V]) storageKey(userKey string) string {
	// isolate by namespace
	return util.StorageKey(c.ns, userKey)
}
