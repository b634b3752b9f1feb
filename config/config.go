package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      *DatabaseConfig // Optional: when nil the audit log uses the in-memory store.
	Reasoning     ReasoningConfig
	Guardrail     GuardrailConfig
	Notify        NotifyConfig
	Observability ObservabilityConfig
	Environment   string
}

// NotifyConfig holds the ops notification webhook configuration. When the
// URL is empty, notifications go to the application log only.
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ReasoningConfig holds the structured reasoning endpoint configuration.
// The retry budget and backoff schedule are configurable; the
// fallback-to-MEDIUM policy is not.
type ReasoningConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration // hard per-attempt timeout
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if present (repo root or the directory the binary runs from)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Reasoning: ReasoningConfig{
			BaseURL:     getEnv("REASONING_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("REASONING_API_KEY", ""),
			Model:       getEnv("REASONING_MODEL", "gpt-4o-mini"),
			Timeout:     getEnvAsDuration("REASONING_TIMEOUT", 5*time.Second),
			MaxAttempts: getEnvAsInt("REASONING_MAX_ATTEMPTS", 3),
			BackoffBase: getEnvAsDuration("REASONING_BACKOFF_BASE", 250*time.Millisecond),
			BackoffMax:  getEnvAsDuration("REASONING_BACKOFF_MAX", 2*time.Second),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	guardrail, err := LoadGuardrailConfig(getEnv("GUARDRAIL_RULES_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load guardrail rules: %w", err)
	}
	cfg.Guardrail = guardrail

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Reasoning.BaseURL == "" {
		return fmt.Errorf("reasoning base URL is required")
	}
	if c.Reasoning.MaxAttempts < 1 {
		return fmt.Errorf("reasoning max attempts must be at least 1")
	}
	if c.Reasoning.Timeout <= 0 {
		return fmt.Errorf("reasoning timeout must be positive")
	}
	if c.Reasoning.BackoffBase <= 0 || c.Reasoning.BackoffMax < c.Reasoning.BackoffBase {
		return fmt.Errorf("reasoning backoff schedule is invalid")
	}

	if len(c.Guardrail.High) == 0 && len(c.Guardrail.Medium) == 0 {
		return fmt.Errorf("guardrail rules must define at least one keyword")
	}

	if c.IsProduction() && c.Reasoning.APIKey == "" {
		return fmt.Errorf("reasoning API key is required in production")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars.
// Returns nil when neither is set: the audit log then runs on the in-memory store.
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return &DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	if getEnv("DB_HOST", "") == "" {
		return nil
	}
	return &DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "riskplane"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "riskplane"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
