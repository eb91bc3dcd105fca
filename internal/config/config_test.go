package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cachedemo.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Redis.ReadyTimeout != 10*time.Second {
		t.Fatalf("durations: ttl=%v ready=%v", cfg.Cache.TTL, cfg.Redis.ReadyTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
redis:
  host: 10.0.0.5
  port: 6380
  db: 2
  health_interval: 250ms
cache:
  namespace: app
  ttl: 90s
log:
  level: debug
metrics:
  addr: ":9090"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Host != "10.0.0.5" || cfg.Redis.Port != 6380 || cfg.Redis.DB != 2 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.Redis.HealthInterval != 250*time.Millisecond || cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("durations = %v %v", cfg.Redis.HealthInterval, cfg.Cache.TTL)
	}
	if cfg.Cache.Namespace != "app" || cfg.Metrics.Addr != ":9090" {
		t.Fatalf("cache/metrics = %+v %+v", cfg.Cache, cfg.Metrics)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("CACHEDEMO_REDIS_HOST", "redis.internal")
	t.Setenv("CACHEDEMO_REDIS_PORT", "6390")

	cfg, err := Load(writeConfig(t, "redis:\n  host: localhost\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Host != "redis.internal" || cfg.Redis.Port != 6390 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
}

func TestValidationFails(t *testing.T) {
	cases := map[string]string{
		"port":  "redis:\n  port: 70000\n",
		"db":    "redis:\n  db: 99\n",
		"level": "log:\n  level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil || !strings.Contains(err.Error(), "validation") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}
