package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Observability
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`

	// External services. Empty means customers are taken at face value.
	CustomerAPIURL string `envconfig:"CUSTOMER_API_URL"`

	// HTTP client
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Resilience
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
	InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"100ms"`
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"50"`

	// Cache
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// JWT. Empty disables auth on mutating routes.
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Number allocation
	AccountNumberPrefix string `envconfig:"ACCOUNT_NUMBER_PREFIX" default:"ACC"`
	AccountNumberSeed   int64  `envconfig:"ACCOUNT_NUMBER_SEED" default:"1000"`
	CardNumberPrefix    string `envconfig:"CARD_NUMBER_PREFIX" default:"CARD"`
	CardNumberSeed      int64  `envconfig:"CARD_NUMBER_SEED" default:"5000"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.AccountNumberPrefix == "" || c.CardNumberPrefix == "" {
		return fmt.Errorf("number prefixes must not be empty")
	}
	if c.AccountNumberPrefix == c.CardNumberPrefix {
		return fmt.Errorf("account and card number prefixes must differ, both are %q", c.CardNumberPrefix)
	}
	if c.AccountNumberSeed < 0 || c.CardNumberSeed < 0 {
		return fmt.Errorf("number seeds must not be negative")
	}
	return nil
}
