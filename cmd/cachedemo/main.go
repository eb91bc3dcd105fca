// Command cachedemo stores a value in Redis through a cachekit cache, reads
// it back, deletes it and confirms it is gone.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/cachekit"
	"github.com/unkn0wn-root/cachekit/codec"
	asynchook "github.com/unkn0wn-root/cachekit/hooks/async"
	promhooks "github.com/unkn0wn-root/cachekit/hooks/prom"
	"github.com/unkn0wn-root/cachekit/internal/config"
	zaplog "github.com/unkn0wn-root/cachekit/log/zap"
	"github.com/unkn0wn-root/cachekit/loghooks"
	"github.com/unkn0wn-root/cachekit/otelcache"
	"github.com/unkn0wn-root/cachekit/provider/redis"
)

const demoKey = "myKey"

func main() {
	cfg, err := config.Load(os.Getenv("CACHEDEMO_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cachedemo failed", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := promhooks.New(reg, "cachedemo")
	if err != nil {
		return fmt.Errorf("register cache metrics: %w", err)
	}

	clog := zaplog.New(logger)
	hooks := asynchook.New(cachekit.MultiHooks{
		loghooks.New(clog, loghooks.Options{SelfHealEvery: 10, OpErrorEvery: 10}),
		metrics,
	}, 1, 1024)
	defer hooks.Close()

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	p, err := redis.New(redis.Config{
		Host:           cfg.Redis.Host,
		Port:           cfg.Redis.Port,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DB:             cfg.Redis.DB,
		DialTimeout:    cfg.Redis.DialTimeout,
		HealthInterval: cfg.Redis.HealthInterval,
		Events:         hooks,
	})
	if err != nil {
		return err
	}

	inner, err := cachekit.New[string](cachekit.Options[string]{
		Provider:  p,
		Codec:     codec.String{},
		Namespace: cfg.Cache.Namespace,
		Logger:    clog,
		Hooks:     hooks,
	})
	if err != nil {
		_ = p.Close(ctx)
		return err
	}
	c := otelcache.Wrap(inner, otel.GetTracerProvider(), "redis")
	defer func() {
		if err := c.Close(context.Background()); err != nil {
			logger.Warn("cache close failed", zap.Error(err))
		}
	}()

	rctx, cancel := context.WithTimeout(ctx, cfg.Redis.ReadyTimeout)
	defer cancel()
	if err := c.Ready(rctx); err != nil {
		return fmt.Errorf("redis not ready at %s:%d: %w", cfg.Redis.Host, cfg.Redis.Port, err)
	}
	logger.Info("cache ready", zap.String("provider", "redis"))

	return scenario(ctx, c, cfg.Cache.TTL)
}

func scenario(ctx context.Context, c cachekit.Cache[string], ttl time.Duration) error {
	if err := c.Set(ctx, demoKey, "myValue", ttl); err != nil {
		return err
	}
	v, ok, err := c.Get(ctx, demoKey)
	if err != nil {
		return err
	}
	fmt.Printf("Cached Value: %s\n", display(v, ok))

	if err := c.Delete(ctx, demoKey); err != nil {
		return err
	}
	v, ok, err = c.Get(ctx, demoKey)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted Value: %s\n", display(v, ok))
	return nil
}

func display(v string, ok bool) string {
	if !ok {
		return "null"
	}
	return v
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
