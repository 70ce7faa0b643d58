// Package config provides centralized configuration management for the back-office
// dashboard with validation, type safety, and clear documentation for operators.
//
// Configuration Sources (12-factor app principles):
//  1. Default values (hardcoded)
//  2. .env file (local development via godotenv)
//  3. Environment variables (container runtime)
//
// Usage:
//
//	import "github.com/duynhne/backoffice/config"
//
//	func main() {
//	    cfg := config.Load()
//	    if err := cfg.Validate(); err != nil {
//	        log.Fatal(err)
//	    }
//	    // Use cfg.Service.Port, cfg.API.BaseURL, etc.
//	}
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

// Config holds all configuration for the dashboard
type Config struct {
	Service   ServiceConfig   // Service-specific settings (port, name, version)
	API       APIConfig       // External REST API the screens are backed by
	Session   SessionConfig   // Cookie session carrying flash notifications
	Tracing   TracingConfig   // OpenTelemetry configuration
	Profiling ProfilingConfig // Pyroscope continuous profiling
	Logging   LoggingConfig   // Structured logging (Zap)
	Metrics   MetricsConfig   // Prometheus metrics
	// ShutdownTimeout in seconds - from SHUTDOWN_TIMEOUT env (default: 10)
	ShutdownTimeout int
	// ReadinessDrainDelay: delay after failing readiness before shutting down the HTTP server.
	// From READINESS_DRAIN_DELAY env (default: 0s, max: 30s).
	ReadinessDrainDelay int
}

// ServiceConfig defines basic service configuration
type ServiceConfig struct {
	Name    string // Service name - from SERVICE_NAME env
	Port    string // HTTP server port (default: "3000") - from PORT env
	Version string // Service version (optional) - from VERSION env
	Env     string // Environment (dev/staging/production) - from ENV env
}

// APIConfig points the Resource Clients at the external REST API.
// Endpoints are fixed below the base: {BaseURL}/api/users, /api/categories, ...
type APIConfig struct {
	BaseURL string        // from API_BASE_URL env (default: "http://localhost:8080")
	Timeout time.Duration // per request - from API_TIMEOUT env (default: 10s)
}

// SessionConfig defines the cookie store used for transient notifications
type SessionConfig struct {
	Secret string // cookie signing key - from SESSION_SECRET env
	Secure bool   // mark cookie Secure - from SESSION_SECURE env (default: false)
}

// TracingConfig defines OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled            bool    // Enable tracing (default: false) - from TRACING_ENABLED env
	Endpoint           string  // OTel Collector endpoint - from OTEL_COLLECTOR_ENDPOINT env
	SampleRate         float64 // Trace sampling rate (0.0-1.0) - from OTEL_SAMPLE_RATE env
	ServiceName        string  // Service name for traces (defaults to ServiceConfig.Name)
	MaxExportBatchSize int     // Max spans per batch (default: 512)
}

// ProfilingConfig defines Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled     bool   // Enable profiling (default: false) - from PROFILING_ENABLED env
	Endpoint    string // Pyroscope endpoint - from PYROSCOPE_ENDPOINT env
	ServiceName string // Service name for profiling (defaults to ServiceConfig.Name)
}

// LoggingConfig defines structured logging configuration
type LoggingConfig struct {
	Level  string // Log level: debug, info, warn, error (default: "info") - from LOG_LEVEL env
	Format string // Log format: json, console (default: "json") - from LOG_FORMAT env
}

// MetricsConfig defines Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   // Enable metrics (default: true) - from METRICS_ENABLED env
	Path    string // Metrics endpoint path (default: "/metrics") - from METRICS_PATH env
}

// Load reads configuration from environment variables with defaults
// It automatically loads .env file if present (for local development)
//
// Priority: .env file < environment variables
func Load() *Config {
	// godotenv.Load() fails silently if .env doesn't exist
	_ = godotenv.Load()

	name := getEnv("SERVICE_NAME", "backoffice-dashboard")
	return &Config{
		Service: ServiceConfig{
			Name:    name,
			Port:    getEnv("PORT", "3000"),
			Version: getEnv("VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			Timeout: time.Duration(getEnvDurationSeconds("API_TIMEOUT", 10)) * time.Second,
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			Secure: getEnvBool("SESSION_SECURE", false),
		},
		Tracing: TracingConfig{
			Enabled:            getEnvBool("TRACING_ENABLED", false),
			Endpoint:           getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4318"),
			SampleRate:         getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
			ServiceName:        name,
			MaxExportBatchSize: getEnvInt("OTEL_BATCH_SIZE", 512),
		},
		Profiling: ProfilingConfig{
			Enabled:     getEnvBool("PROFILING_ENABLED", false),
			Endpoint:    getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
			ServiceName: name,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		ShutdownTimeout:     getEnvDurationSeconds("SHUTDOWN_TIMEOUT", 10),
		ReadinessDrainDelay: getEnvDurationSecondsWithMax("READINESS_DRAIN_DELAY", 0, 30),
	}
}

// Validate performs comprehensive validation of all configuration fields
// Returns detailed error messages for troubleshooting
func (c *Config) Validate() error {
	var errors []string

	if c.Service.Name == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}
	if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Service.Port))
	}
	validEnvs := []string{"development", "dev", "staging", "stage", "production", "prod"}
	if !contains(validEnvs, c.Service.Env) {
		errors = append(errors, fmt.Sprintf("ENV must be one of %v, got: %s", validEnvs, c.Service.Env))
	}

	// API validation
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("API_BASE_URL must be an absolute URL, got: %q", c.API.BaseURL))
	}

	// Session secret is mandatory outside development
	if c.IsProduction() && len(c.Session.Secret) < 32 {
		errors = append(errors, "SESSION_SECRET of at least 32 bytes is required in production")
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errors = append(errors, "OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			errors = append(errors, fmt.Sprintf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", c.Tracing.SampleRate))
		}
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		errors = append(errors, "PYROSCOPE_ENDPOINT is required when profiling is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of %v, got: %s", validLogLevels, c.Logging.Level))
	}
	validLogFormats := []string{"json", "console"}
	if !contains(validLogFormats, c.Logging.Format) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of %v, got: %s", validLogFormats, c.Logging.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, fmt.Sprintf("METRICS_PATH must start with '/', got: %s", c.Metrics.Path))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "production" || env == "prod"
}

// GetShutdownTimeoutDuration returns shutdown timeout as time.Duration
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// GetReadinessDrainDelayDuration returns readiness drain delay as time.Duration.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelay) * time.Second
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool accepts "true", "1", "yes" for true | anything else for false
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDurationSeconds reads a Go duration ("10s", "1m") and returns whole seconds,
// capped at 60. Invalid values fall back to the default.
func getEnvDurationSeconds(key string, defaultValueSeconds int) int {
	return getEnvDurationSecondsWithMax(key, defaultValueSeconds, 60)
}

func getEnvDurationSecondsWithMax(key string, defaultValueSeconds int, maxSeconds int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValueSeconds
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValueSeconds
	}

	seconds := int(d.Seconds())
	if seconds <= 0 || seconds > maxSeconds {
		return defaultValueSeconds
	}

	return seconds
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
