// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Report   ReportConfig   `mapstructure:"report"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name         string   `mapstructure:"name"`
	Env          string   `mapstructure:"env"` // development, staging, production
	Port         int      `mapstructure:"port"`
	Debug        bool     `mapstructure:"debug"`
	AllowOrigins []string `mapstructure:"allow_origins"` // empty = any origin
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ProviderConfig holds the upstream clients' settings.
type ProviderConfig struct {
	UserAgent string         `mapstructure:"user_agent"`
	Feed      UpstreamConfig `mapstructure:"feed"`
	Page      UpstreamConfig `mapstructure:"page"`
	Search    UpstreamConfig `mapstructure:"search"`
}

// UpstreamConfig holds a single upstream client's configuration.
// BaseURL is only used by clients that address a fixed host.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// AnalysisConfig holds the per-run pipeline settings.
type AnalysisConfig struct {
	Workers      int           `mapstructure:"workers"`       // concurrent page fetches
	RequestDelay time.Duration `mapstructure:"request_delay"` // minimum spacing between page fetches
	DefaultLimit int           `mapstructure:"default_limit"` // 0 = whole feed
	MaxLimit     int           `mapstructure:"max_limit"`
	TopN         int           `mapstructure:"top_n"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

// ScheduleConfig holds the periodic refresh settings.
type ScheduleConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	OnStartup    bool          `mapstructure:"on_startup"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Publications []string      `mapstructure:"publications"`
}

// ReportConfig holds spreadsheet export settings.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for caching and locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds document caching settings.
// Post pages are cached with their engagement counts, so an analysis may
// report counts up to DocumentTTL old. Caching is off by default.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	DocumentTTL time.Duration `mapstructure:"document_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// ANALYTICS_ANALYSIS_WORKERS overrides analysis.workers
	v.SetEnvPrefix("ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1, got %d", c.Analysis.Workers)
	}
	if c.Analysis.RequestDelay < 0 {
		return fmt.Errorf("analysis.request_delay must not be negative")
	}
	if c.Analysis.DefaultLimit < 0 || c.Analysis.MaxLimit < 0 {
		return fmt.Errorf("analysis limits must not be negative")
	}
	if c.Schedule.Enabled && c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive when the schedule is enabled")
	}
	// A refresh must not reread the pages the previous one cached.
	if c.Schedule.Enabled && c.Cache.Enabled && c.Cache.DocumentTTL >= c.Schedule.Interval {
		return fmt.Errorf("cache.document_ttl (%s) must be shorter than schedule.interval (%s)",
			c.Cache.DocumentTTL, c.Schedule.Interval)
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "newsletter-analytics")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.allow_origins", []string{})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "newsletter_analytics")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Provider defaults
	v.SetDefault("provider.user_agent", "")

	v.SetDefault("provider.feed.timeout", "15s")
	v.SetDefault("provider.feed.retry.max_attempts", 2)
	v.SetDefault("provider.feed.retry.wait_time", "1s")
	v.SetDefault("provider.feed.retry.max_wait_time", "5s")
	v.SetDefault("provider.feed.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.feed.circuit_breaker.interval", "60s")
	v.SetDefault("provider.feed.circuit_breaker.timeout", "30s")
	v.SetDefault("provider.feed.circuit_breaker.failure_ratio", 0.5)

	v.SetDefault("provider.page.timeout", "15s")
	v.SetDefault("provider.page.retry.max_attempts", 1)
	v.SetDefault("provider.page.retry.wait_time", "1s")
	v.SetDefault("provider.page.retry.max_wait_time", "5s")
	v.SetDefault("provider.page.circuit_breaker.max_requests", 5)
	v.SetDefault("provider.page.circuit_breaker.interval", "60s")
	v.SetDefault("provider.page.circuit_breaker.timeout", "30s")
	v.SetDefault("provider.page.circuit_breaker.failure_ratio", 0.8)

	v.SetDefault("provider.search.base_url", "https://substack.com")
	v.SetDefault("provider.search.timeout", "10s")
	v.SetDefault("provider.search.retry.max_attempts", 1)
	v.SetDefault("provider.search.retry.wait_time", "1s")
	v.SetDefault("provider.search.retry.max_wait_time", "3s")
	v.SetDefault("provider.search.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.search.circuit_breaker.interval", "60s")
	v.SetDefault("provider.search.circuit_breaker.timeout", "60s")
	v.SetDefault("provider.search.circuit_breaker.failure_ratio", 0.5)

	// Analysis defaults
	v.SetDefault("analysis.workers", 1)
	v.SetDefault("analysis.request_delay", "1s")
	v.SetDefault("analysis.default_limit", 0)
	v.SetDefault("analysis.max_limit", 200)
	v.SetDefault("analysis.top_n", 5)
	v.SetDefault("analysis.timeout", "10m")
	v.SetDefault("analysis.lock_ttl", "15m")

	// Schedule defaults
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.interval", "6h")
	v.SetDefault("schedule.on_startup", false)
	v.SetDefault("schedule.timeout", "30m")
	v.SetDefault("schedule.publications", []string{})

	// Report defaults
	v.SetDefault("report.output_dir", "reports")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults. Cached post pages freeze engagement counts for the TTL.
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.document_ttl", "30m")
	v.SetDefault("cache.key_prefix", "newsletter-analytics")
}
