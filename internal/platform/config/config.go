package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Addr               string        `koanf:"app_addr"`
	Environment        string        `koanf:"app_env"`
	LogLevel           string        `koanf:"log_level"`
	DatabaseURL        string        `koanf:"database_url"`
	JWTSecret          string        `koanf:"jwt_secret"`
	TokenTTL           time.Duration `koanf:"token_ttl"`
	SeedTenantName     string        `koanf:"seed_tenant_name"`
	SeedAdminEmail     string        `koanf:"seed_admin_email"`
	SeedAdminPassword  string        `koanf:"seed_admin_password"`
	RunMigrations      bool          `koanf:"run_migrations"`
	RunSeed            bool          `koanf:"run_seed"`
	MigrationsDir      string        `koanf:"migrations_dir"`
	MaxBodyBytes       int64         `koanf:"max_body_bytes"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	CycleTimezone      string        `koanf:"cycle_timezone"`
	CycleCloseInterval time.Duration `koanf:"cycle_close_interval"`
	MetricsEnabled     bool          `koanf:"metrics_enabled"`
}

// New returns the defaults every other source is layered on. An empty
// MigrationsDir selects the schema embedded in the binary.
func New() Config {
	return Config{
		Addr:               ":8080",
		Environment:        "development",
		LogLevel:           "info",
		TokenTTL:           12 * time.Hour,
		SeedTenantName:     "Default Tenant",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		CycleTimezone:      "UTC",
		CycleCloseInterval: time.Hour,
		MetricsEnabled:     true,
	}
}

// Location resolves CycleTimezone, the zone in which cycle dates are compared.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.CycleTimezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.CycleTimezone)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.CycleCloseInterval < time.Minute {
		return fmt.Errorf("CYCLE_CLOSE_INTERVAL must be at least 1m")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("CYCLE_TIMEZONE: %w", err)
	}
	return nil
}
