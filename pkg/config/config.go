// Package config loads the application configuration from RACK_* environment
// variables and validates it before anything starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raccoonpkg/rack/pkg/blob"
	"github.com/raccoonpkg/rack/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL           string
	MaxOpenConns  int
	MaxIdleConns  int
	RunMigrations bool
}

// StorageConfig selects and configures the blob backend.
type StorageConfig struct {
	// Type is "s3" or "memory".
	Type string
	S3   blob.S3Config
}

// AuthConfig holds session signing configuration
type AuthConfig struct {
	SigningKey string
	SessionTTL time.Duration
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("RACK_HOST", "0.0.0.0"),
			Port:            getEnv("RACK_PORT", "8080"),
			ReadTimeout:     getEnvDuration("RACK_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("RACK_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("RACK_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("RACK_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("RACK_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:           getEnv("RACK_POSTGRES_URL", ""),
			MaxOpenConns:  getEnvInt("RACK_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns:  getEnvInt("RACK_POSTGRES_IDLE_CONNS", 5),
			RunMigrations: getEnvBool("RACK_RUN_MIGRATIONS", true),
		},
		Storage: StorageConfig{
			Type: getEnv("RACK_STORAGE_TYPE", "s3"),
			S3: blob.S3Config{
				Bucket:       getEnv("RACK_S3_BUCKET", "rack-packages"),
				Region:       getEnv("RACK_S3_REGION", "us-east-1"),
				Endpoint:     getEnv("RACK_S3_ENDPOINT", ""),
				AccessKey:    getEnv("RACK_S3_ACCESS_KEY", ""),
				SecretKey:    getEnv("RACK_S3_SECRET_KEY", ""),
				UsePathStyle: getEnvBool("RACK_S3_PATH_STYLE", false),
			},
		},
		Auth: AuthConfig{
			SigningKey: getEnv("RACK_SIGNING_KEY", ""),
			SessionTTL: getEnvDuration("RACK_SESSION_TTL", 24*time.Hour),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("RACK_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("RACK_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	switch c.Storage.Type {
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required for s3 storage")
		}
	case "memory":
		// Nothing to validate; memory storage is for development only.
	default:
		return fmt.Errorf("invalid storage type: %s (must be s3 or memory)", c.Storage.Type)
	}

	if c.Auth.SigningKey == "" {
		return fmt.Errorf("session signing key is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
