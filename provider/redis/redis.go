// Package redis adapts a go-redis client to provider.Provider.
//
// The adapter owns one client for its lifetime and tracks its connection
// explicitly: commands issued while the store is unreachable fail fast with a
// *provider.ConnError instead of queueing inside the client. Use Ready to wait
// for the connection.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/cachekit/provider"
)

const (
	defaultHost           = "localhost"
	defaultPort           = 6379
	defaultName           = "redis"
	defaultHealthInterval = 5 * time.Second
	defaultPingTimeout    = time.Second
	defaultRetryInitial   = 100 * time.Millisecond
)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	name        string
	events      pr.Events

	healthInterval time.Duration
	pingTimeout    time.Duration
	retryInitial   time.Duration

	mu      sync.Mutex
	state   State
	lastErr error
	ready   chan struct{} // closed while connected
	kick    chan struct{} // wakes monitor after a call-level failure

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	// Coordinates used when Client is nil.
	Host        string // "" => localhost
	Port        int    // 0 => 6379
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration

	// Client is an externally built client. When set, the coordinates above
	// are ignored.
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns Client

	Name   string    // reported in events and errors; "" => "redis"
	Events pr.Events // nil => no-op

	HealthInterval time.Duration // ping period while healthy; 0 => 5s
	PingTimeout    time.Duration // 0 => 1s
	RetryInitial   time.Duration // first reconnect delay; 0 => 100ms
}

// Addr returns host:port after defaults are applied.
func (c Config) Addr() string {
	host := c.Host
	if host == "" {
		host = defaultHost
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// New builds the provider and starts connecting in the background.
// It never blocks on the network.
func New(cfg Config) (*Redis, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("redis provider: invalid port %d", cfg.Port)
	}

	rdb, owned := cfg.Client, cfg.CloseClient
	if rdb == nil {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        cfg.Addr(),
			Username:    cfg.Username,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: cfg.DialTimeout,
		})
		owned = true
	}

	p := &Redis{
		rdb:            rdb,
		closeClient:    owned,
		name:           cfg.Name,
		events:         cfg.Events,
		healthInterval: cfg.HealthInterval,
		pingTimeout:    cfg.PingTimeout,
		retryInitial:   cfg.RetryInitial,
		state:          StateConnecting,
		ready:          make(chan struct{}),
		kick:           make(chan struct{}, 1),
	}
	if p.name == "" {
		p.name = defaultName
	}
	if p.events == nil {
		p.events = pr.NopEvents{}
	}
	if p.healthInterval <= 0 {
		p.healthInterval = defaultHealthInterval
	}
	if p.pingTimeout <= 0 {
		p.pingTimeout = defaultPingTimeout
	}
	if p.retryInitial <= 0 {
		p.retryInitial = defaultRetryInitial
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.wg.Add(1)
	go p.monitor()
	return p, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := p.guard(); err != nil {
		return nil, false, err
	}
	b, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, p.fail(ctx, "get", err)
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if err := p.guard(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		ttl = 0 // no expiry; negative values would mean KEEPTTL to go-redis
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, p.fail(ctx, "set", err)
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	if err := p.guard(); err != nil {
		return err
	}
	if err := p.rdb.Del(ctx, key).Err(); err != nil {
		return p.fail(ctx, "del", err)
	}
	return nil
}

// Close stops the health monitor and releases the client when this provider
// owns it. Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.state = StateClosed
		p.mu.Unlock()

		p.cancel()
		p.wg.Wait()

		if p.closeClient {
			if cerr := p.rdb.Close(); cerr != nil && !errors.Is(cerr, goredis.ErrClosed) {
				err = cerr
			}
		}
	})
	return err
}

// fail normalizes a command error. Caller cancellation passes through,
// server replies become *CommandError, anything else is a transport failure
// that marks the provider disconnected.
func (p *Redis) fail(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if errors.Is(err, goredis.ErrClosed) {
		return pr.ErrClosed
	}
	var rerr goredis.Error
	if errors.As(err, &rerr) {
		return &pr.CommandError{Provider: p.name, Op: op, Err: err}
	}
	if p.markDown(err) {
		p.wake()
	}
	return &pr.ConnError{Provider: p.name, State: StateDisconnected.String(), Err: err}
}
