package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Gilberthb/Umunsi-sub002/internal/apiclient"
	"github.com/Gilberthb/Umunsi-sub002/internal/session"
	"github.com/Gilberthb/Umunsi-sub002/internal/tokenstore"
	pkgconfig "github.com/Gilberthb/Umunsi-sub002/pkg/config"
	"github.com/Gilberthb/Umunsi-sub002/pkg/tracing"
)

const defaultMockSecret = "newsdesk-development-secret"

// Config holds all configuration for newsctl and the development API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`

	// CMS API
	APIURL            string        `env:"API_URL" envDefault:"http://localhost:5000/api"`
	APITimeout        time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	APIRateLimitRPS   float64       `env:"API_RATE_LIMIT_RPS" envDefault:"0"`
	APIRateLimitBurst int           `env:"API_RATE_LIMIT_BURST" envDefault:"5"`
	APICircuitBreaker bool          `env:"API_CIRCUIT_BREAKER_ENABLED" envDefault:"true"`

	// Token storage
	TokenStore     string `env:"TOKEN_STORE" envDefault:"file"`
	TokenKey       string `env:"TOKEN_KEY" envDefault:"token"`
	TokenFile      string `env:"TOKEN_FILE"`
	TokenSQLiteDSN string `env:"TOKEN_SQLITE_DSN"`

	// SQLite statements slower than this are logged; 0 disables.
	TokenSQLiteSlowQuery time.Duration `env:"TOKEN_SQLITE_SLOW_QUERY" envDefault:"250ms"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Session
	SessionRetryInterval      time.Duration `env:"SESSION_RETRY_INTERVAL" envDefault:"5s"`
	SessionMaxRefreshFailures int           `env:"SESSION_MAX_REFRESH_FAILURES" envDefault:"3"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Development API
	MockAPIHTTPPort  int           `env:"MOCKAPI_HTTP_PORT" envDefault:"5000"`
	MockAPIJWTSecret string        `env:"MOCKAPI_JWT_SECRET" envDefault:"newsdesk-development-secret"`
	MockAPITokenTTL  time.Duration `env:"MOCKAPI_TOKEN_TTL" envDefault:"24h"`
	MockAPISeed      bool          `env:"MOCKAPI_SEED" envDefault:"true"`

	MockAPICORSOrigins []string `env:"MOCKAPI_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	MockAPIPprof       bool     `env:"MOCKAPI_PPROF_ENABLED" envDefault:"false"`
	MockAPIPprofCIDRs  []string `env:"MOCKAPI_PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load newsdesk config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.APIRateLimitRPS < 0 {
		return fmt.Errorf("API_RATE_LIMIT_RPS must not be negative, got %g", c.APIRateLimitRPS)
	}
	if !tokenstore.Kind(c.TokenStore).Valid() {
		return fmt.Errorf("unknown TOKEN_STORE %q (want file, sqlite, redis or memory)", c.TokenStore)
	}
	if c.TokenSQLiteSlowQuery < 0 {
		return fmt.Errorf("TOKEN_SQLITE_SLOW_QUERY must not be negative, got %s", c.TokenSQLiteSlowQuery)
	}
	if c.SessionRetryInterval <= 0 {
		return fmt.Errorf("SESSION_RETRY_INTERVAL must be positive, got %s", c.SessionRetryInterval)
	}
	if c.SessionMaxRefreshFailures < 1 {
		return fmt.Errorf("SESSION_MAX_REFRESH_FAILURES must be at least 1, got %d", c.SessionMaxRefreshFailures)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", c.OTELSampleRate)
	}
	if c.MockAPIHTTPPort < 1 || c.MockAPIHTTPPort > 65535 {
		return fmt.Errorf("invalid MOCKAPI_HTTP_PORT: %d", c.MockAPIHTTPPort)
	}

	if len(c.MockAPICORSOrigins) == 0 {
		return fmt.Errorf("MOCKAPI_CORS_ORIGINS must list at least one origin")
	}
	if c.MockAPIPprof && len(c.MockAPIPprofCIDRs) == 0 {
		return fmt.Errorf("MOCKAPI_PPROF_ALLOWED_CIDRS must be set when MOCKAPI_PPROF_ENABLED is true")
	}

	// Outside development the development API must not sign with the shared secret.
	if c.Environment != "development" && c.MockAPIJWTSecret == defaultMockSecret {
		return fmt.Errorf("MOCKAPI_JWT_SECRET must be explicitly set in %q mode", c.Environment)
	}
	return nil
}

// API returns the client configuration.
func (c *Config) API(userAgent string) apiclient.Config {
	return apiclient.Config{
		BaseURL:        c.APIURL,
		Timeout:        c.APITimeout,
		RateLimitRPS:   c.APIRateLimitRPS,
		RateLimitBurst: c.APIRateLimitBurst,
		CircuitBreaker: c.APICircuitBreaker,
		UserAgent:      userAgent,
	}
}

// Session returns the session tuning.
func (c *Config) Session() session.Config {
	return session.Config{
		RetryInterval:      c.SessionRetryInterval,
		MaxRefreshFailures: c.SessionMaxRefreshFailures,
	}
}

// Tokens returns the token store configuration. File and SQLite paths
// default to the user's configuration directory.
func (c *Config) Tokens() tokenstore.Config {
	dir := stateDir()
	cfg := tokenstore.Config{
		Kind:      tokenstore.Kind(c.TokenStore),
		Key:       c.TokenKey,
		FilePath:  c.TokenFile,
		SQLiteDSN: c.TokenSQLiteDSN,
		Redis: tokenstore.RedisConfig{
			Host:     c.RedisHost,
			Port:     c.RedisPort,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
	if cfg.FilePath == "" {
		cfg.FilePath = filepath.Join(dir, "session.json")
	}
	if cfg.SQLiteDSN == "" {
		cfg.SQLiteDSN = filepath.Join(dir, "session.db")
	}
	return cfg
}

// Tracing returns the OpenTelemetry configuration for serviceName.
func (c *Config) Tracing(serviceName string) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "newsdesk")
	}
	return ".newsdesk"
}
