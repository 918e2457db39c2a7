package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// Config is read once at process start and treated as immutable afterwards;
// every component receives it (or the slice of it that it needs) by injection.
type Config struct {
	DatabaseDSN   string `env:"DATABASE_DSN"`
	SupabaseDBDSN string `env:"SUPABASE_DB_DSN"`

	DispatchServiceKey string `env:"DISPATCH_SERVICE_KEY"`
	ServiceRoleKey     string `env:"SERVICE_ROLE_KEY"`

	RedisURL string `env:"REDIS_URL,required=true"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM"`

	TwilioSID                 string `env:"TWILIO_SID"`
	TwilioToken               string `env:"TWILIO_TOKEN"`
	TwilioFrom                string `env:"TWILIO_FROM"`
	TwilioMessagingServiceSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`

	BatchLimit           int `env:"BATCH_LIMIT,default=50"`
	MaxAttempts          int `env:"MAX_ATTEMPTS,default=5"`
	RateLimitPerSec      int `env:"RATE_LIMIT_PER_SEC,default=100"`
	LeaseTTLSeconds      int `env:"LEASE_TTL_SECONDS,default=60"`
	SweepIntervalSeconds int `env:"SWEEP_INTERVAL_SECONDS,default=0"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Resolved alias values, filled by Load. The source names are echoed by
	// the health endpoint so operators can verify which variables took effect.
	DSN        string
	DSNSource  string
	ServiceKey string
	KeySource  string
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.resolveAliases(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveAliases applies rename-tolerant env lookups: the newer variable name
// wins, the legacy one is accepted as a fallback.
func (c *Config) resolveAliases() error {
	switch {
	case c.DatabaseDSN != "":
		c.DSN = c.DatabaseDSN
		c.DSNSource = "DATABASE_DSN"
	case c.SupabaseDBDSN != "":
		c.DSN = c.SupabaseDBDSN
		c.DSNSource = "SUPABASE_DB_DSN"
	default:
		return fmt.Errorf("failed to load config: DATABASE_DSN or SUPABASE_DB_DSN is required")
	}

	switch {
	case c.DispatchServiceKey != "":
		c.ServiceKey = c.DispatchServiceKey
		c.KeySource = "DISPATCH_SERVICE_KEY"
	case c.ServiceRoleKey != "":
		c.ServiceKey = c.ServiceRoleKey
		c.KeySource = "SERVICE_ROLE_KEY"
	}

	return nil
}

func (c *Config) validate() error {
	if c.BatchLimit < 1 {
		return fmt.Errorf("failed to load config: BATCH_LIMIT must be >= 1")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("failed to load config: MAX_ATTEMPTS must be >= 1")
	}
	if c.LeaseTTLSeconds < 1 {
		return fmt.Errorf("failed to load config: LEASE_TTL_SECONDS must be >= 1")
	}
	if c.SweepIntervalSeconds < 0 {
		return fmt.Errorf("failed to load config: SWEEP_INTERVAL_SECONDS must not be negative")
	}
	return nil
}

func (c *Config) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}

// SweepInterval returns the in-process sweep cadence; zero disables the
// sweeper entirely (an external scheduler drives dispatch instead).
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
