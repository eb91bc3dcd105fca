package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "CACHEDEMO"

type Config struct {
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type RedisConfig struct {
	Host           string        `mapstructure:"host"            validate:"required,hostname_rfc1123|ip"`
	Port           int           `mapstructure:"port"            validate:"required,gte=1,lte=65535"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"              validate:"gte=0,lte=15"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"    validate:"gte=0"`
	HealthInterval time.Duration `mapstructure:"health_interval" validate:"gte=0"`
	ReadyTimeout   time.Duration `mapstructure:"ready_timeout"   validate:"gt=0"`
}

type CacheConfig struct {
	Namespace string        `mapstructure:"namespace"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// Load reads path (or ./configs/cachedemo.yaml, ./cachedemo.yaml when empty),
// applies CACHEDEMO_* environment overrides and validates the result.
// A missing default config file is not an error.
func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("cachedemo")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.SetEnvPrefix(envPrefix)
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(vip)

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// every key needs a default so AutomaticEnv can override it on Unmarshal
func setDefaults(vip *viper.Viper) {
	vip.SetDefault("redis.host", "localhost")
	vip.SetDefault("redis.port", 6379)
	vip.SetDefault("redis.username", "")
	vip.SetDefault("redis.password", "")
	vip.SetDefault("redis.db", 0)
	vip.SetDefault("redis.dial_timeout", 5*time.Second)
	vip.SetDefault("redis.health_interval", 5*time.Second)
	vip.SetDefault("redis.ready_timeout", 10*time.Second)
	vip.SetDefault("cache.namespace", "")
	vip.SetDefault("cache.ttl", time.Hour)
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.development", false)
	vip.SetDefault("metrics.addr", "")
}
