package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Report   ReportConfig   `yaml:"report"`
	Worker   WorkerConfig   `yaml:"worker"`
	CORS     CORSConfig     `yaml:"cors"`
	Quiz     QuizConfig     `yaml:"quiz"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int    `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	// TrustProxy is set when the server runs behind a proxy that appends the
	// caller address to X-Forwarded-For.
	TrustProxy bool `yaml:"trust_proxy"`
}

// GetHost returns the server host, listening on all interfaces in containers.
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" || os.Getenv("ECS_CONTAINER_METADATA_URI") != "" {
		return "0.0.0.0"
	}
	return c.Host
}

// ReadTimeout returns the server read timeout.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the connection recycle interval.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the Redis connection used for the report cache and
// worker locks. An empty URL disables both.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// DisablePIIRedaction logs emails and phone numbers in full. Local
	// debugging only.
	DisablePIIRedaction bool `yaml:"disable_pii_redaction"`
}

// IngestConfig holds tracking endpoint limits
type IngestConfig struct {
	StoreTimeoutMs         int `yaml:"store_timeout_ms"`
	BreakerFailures        int `yaml:"breaker_failures"`
	BreakerCooldownSeconds int `yaml:"breaker_cooldown_seconds"`
	RateLimitPerMinute     int `yaml:"rate_limit_per_minute"`
}

// StoreTimeout returns the per-call store deadline.
func (c IngestConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMs) * time.Millisecond
}

// BreakerCooldown returns how long the breaker stays open.
func (c IngestConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSeconds) * time.Second
}

// ReportConfig holds report cache settings
type ReportConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the report cache expiry.
func (c ReportConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// WorkerConfig holds background job schedules
type WorkerConfig struct {
	ReconcileIntervalMinutes int `yaml:"reconcile_interval_minutes"`
	RetentionIntervalHours   int `yaml:"retention_interval_hours"`
	RetentionDays            int `yaml:"retention_days"`
	RetentionBatchSize       int `yaml:"retention_batch_size"`
}

// ReconcileInterval returns the rollup reconciler period.
func (c WorkerConfig) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalMinutes) * time.Minute
}

// RetentionInterval returns the raw event cleanup period.
func (c WorkerConfig) RetentionInterval() time.Duration {
	return time.Duration(c.RetentionIntervalHours) * time.Hour
}

// QuizConfig points at the external question generator. An empty URL
// disables generation.
type QuizConfig struct {
	GeneratorURL   string `yaml:"generator_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the generator request timeout.
func (c QuizConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Ingest.StoreTimeoutMs == 0 {
		cfg.Ingest.StoreTimeoutMs = 3000
	}
	if cfg.Ingest.BreakerFailures == 0 {
		cfg.Ingest.BreakerFailures = 5
	}
	if cfg.Ingest.BreakerCooldownSeconds == 0 {
		cfg.Ingest.BreakerCooldownSeconds = 10
	}
	if cfg.Ingest.RateLimitPerMinute == 0 {
		cfg.Ingest.RateLimitPerMinute = 120
	}
	if cfg.Report.CacheTTLSeconds == 0 {
		cfg.Report.CacheTTLSeconds = 60
	}
	if cfg.Worker.ReconcileIntervalMinutes == 0 {
		cfg.Worker.ReconcileIntervalMinutes = 60
	}
	if cfg.Worker.RetentionIntervalHours == 0 {
		cfg.Worker.RetentionIntervalHours = 24
	}
	if cfg.Worker.RetentionDays == 0 {
		cfg.Worker.RetentionDays = 400
	}
	if cfg.Worker.RetentionBatchSize == 0 {
		cfg.Worker.RetentionBatchSize = 10000
	}
	if cfg.Quiz.TimeoutSeconds == 0 {
		cfg.Quiz.TimeoutSeconds = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUIZ_GENERATOR_API_KEY"); v != "" {
		cfg.Quiz.APIKey = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}

	return cfg, nil
}
