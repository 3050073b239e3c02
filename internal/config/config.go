package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string
	LogLevel string
	Backend  BackendConfig
	Wilayah  WilayahConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Tracing  TracingConfig
	// TransitionGuard rejects order actions that skip the normal status
	// progression before anything is sent.
	TransitionGuard bool
}

type BackendConfig struct {
	BaseURL string        // API_BASE_URL
	Timeout time.Duration // HTTP_TIMEOUT: per call
}

type WilayahConfig struct {
	UpstreamURL string        // WILAYAH_UPSTREAM_URL
	Wait        time.Duration // REGION_WAIT_TIMEOUT: per cascade level
}

type RedisConfig struct {
	Addr string // empty means the region cache stays in process
}

type SQLiteConfig struct {
	Path string
}

type TracingConfig struct {
	Endpoint    string // empty disables export
	ServiceName string
	Environment string
}

// Load reads the environment and an optional .env file from the working
// directory or its parents.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	get := func(key, def string) string { return getEnvOrViper(v, key, def) }

	httpTimeout, err := duration(get("HTTP_TIMEOUT", "30s"), "HTTP_TIMEOUT")
	if err != nil {
		return nil, err
	}
	wait, err := duration(get("REGION_WAIT_TIMEOUT", "5s"), "REGION_WAIT_TIMEOUT")
	if err != nil {
		return nil, err
	}
	guard, err := strconv.ParseBool(get("ORDER_TRANSITION_GUARD", "false"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_TRANSITION_GUARD: %w", err)
	}

	cfg := &Config{
		HTTPAddr: get("HTTP_ADDR", ":8080"),
		LogLevel: get("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(get("API_BASE_URL", "http://localhost:3000")), "/"),
			Timeout: httpTimeout,
		},
		Wilayah: WilayahConfig{
			UpstreamURL: strings.TrimSpace(get("WILAYAH_UPSTREAM_URL", "https://wilayah.id/api")),
			Wait:        wait,
		},
		Redis: RedisConfig{
			Addr: strings.TrimSpace(get("REDIS_ADDR", "")),
		},
		SQLite: SQLiteConfig{
			Path: get("SQLITE_PATH", "./data/dashboard.db"),
		},
		Tracing: TracingConfig{
			Endpoint:    strings.TrimSpace(get("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
			ServiceName: get("OTEL_SERVICE_NAME", "dashboard-gateway"),
			Environment: get("DEPLOY_ENV", "local"),
		},
		TransitionGuard: guard,
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	return cfg, nil
}

func duration(s, key string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, s)
	}
	return d, nil
}

func getEnvOrViper(v *viper.Viper, key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}
