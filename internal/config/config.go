// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Pipeline PipelineConfig
	Output   OutputConfig
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Logging  LoggingConfig
}

// MaxSrNo is the largest accepted SRNO_MAX: the largest integer a JSON
// consumer reading numbers as doubles still sees exactly.
const MaxSrNo = 1<<53 - 1

// PipelineConfig holds cleaning and identifier settings.
type PipelineConfig struct {
	// SrNoMin is the lower bound (inclusive) for generated sequence numbers (default: 1000)
	SrNoMin int `env:"SRNO_MIN" default:"1000"`

	// SrNoMax is the upper bound (inclusive) for generated sequence numbers (default: 9999)
	SrNoMax int `env:"SRNO_MAX" default:"9999"`

	// MediaFields lists the list-valued columns parsed as media sequences
	MediaFields []string `env:"MEDIA_FIELDS" default:"image_urls,videos"`

	// IdentityField is the column used to detect duplicate records (default: scientific_name)
	IdentityField string `env:"IDENTITY_FIELD" default:"scientific_name"`
}

// OutputConfig holds output artifact locations.
type OutputConfig struct {
	// Dir is the directory both artifacts are written to (default: out)
	Dir string `env:"OUTPUT_DIR" default:"out"`

	// ResultFile is the structured result file name (default: cleaned_species.json)
	ResultFile string `env:"OUTPUT_RESULT_FILE" default:"cleaned_species.json"`

	// AuditFile is the audit report file name (default: audit_report.txt)
	AuditFile string `env:"OUTPUT_AUDIT_FILE" default:"audit_report.txt"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional run-history database settings.
// When URL is empty, run history is disabled.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// Enabled reports whether a run-history database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// UploadConfig holds HTTP upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 32MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"33554432"`

	// MaxConcurrent is the maximum number of pipeline runs in flight (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a run slot (default: 10s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
