// Package config holds the client configuration, loaded from environment
// variables.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/arthurpeter/VacationAgent/pkg/config"
)

// Config holds all configuration for the vacation agent client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	// HTTP client retry/backoff for transport-level failures.
	HTTPMaxRetries   int           `env:"HTTP_MAX_RETRIES" envDefault:"3"`
	HTTPRetryWaitMin time.Duration `env:"HTTP_RETRY_WAIT_MIN" envDefault:"200ms"`
	HTTPRetryWaitMax time.Duration `env:"HTTP_RETRY_WAIT_MAX" envDefault:"5s"`

	// Circuit breaker
	BreakerEnabled      bool          `env:"BREAKER_ENABLED" envDefault:"true"`
	BreakerMaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS" envDefault:"3"`
	BreakerInterval     time.Duration `env:"BREAKER_INTERVAL" envDefault:"60s"`
	BreakerTimeout      time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.6"`

	// Session sync
	SyncQuietPeriod     time.Duration `env:"SYNC_QUIET_PERIOD" envDefault:"400ms"`
	SyncWritesPerSecond float64       `env:"SYNC_WRITES_PER_SECOND" envDefault:"5"`
	SyncWriteBurst      int           `env:"SYNC_WRITE_BURST" envDefault:"10"`

	// Credential store. With a Redis address set, credentials survive
	// process restarts; empty means in-memory only.
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword   string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	CredentialTTL   time.Duration `env:"CREDENTIAL_TTL" envDefault:"168h"`
	MetricsListenOn string        `env:"METRICS_LISTEN_ADDR" envDefault:""`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("invalid API timeout: %s", cfg.APITimeout)
	}
	if cfg.HTTPMaxRetries < 0 {
		return nil, fmt.Errorf("invalid retry count: %d", cfg.HTTPMaxRetries)
	}
	if cfg.HTTPRetryWaitMin > cfg.HTTPRetryWaitMax {
		return nil, fmt.Errorf("retry wait min %s exceeds max %s", cfg.HTTPRetryWaitMin, cfg.HTTPRetryWaitMax)
	}
	if cfg.SyncQuietPeriod <= 0 {
		return nil, fmt.Errorf("invalid sync quiet period: %s", cfg.SyncQuietPeriod)
	}
	if cfg.BreakerFailureRatio <= 0 || cfg.BreakerFailureRatio > 1 {
		return nil, fmt.Errorf("invalid breaker failure ratio: %f", cfg.BreakerFailureRatio)
	}
	return cfg, nil
}
