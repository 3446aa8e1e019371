// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/moffa90/go-uf2/storage"
	"github.com/moffa90/go-uf2/uf2"
)

// ErrInvalidBaseAddress is returned when UF2_BASE_ADDRESS is not a 32-bit number.
var ErrInvalidBaseAddress = errors.New("config: UF2_BASE_ADDRESS must be a 32-bit number")

// Config holds all configuration for the CLI. Flags override these values.
type Config struct {
	// Encoding settings
	Family      string `env:"UF2_FAMILY" json:"family,omitempty"`             // registry name or hex ID
	BaseAddress string `env:"UF2_BASE_ADDRESS, default=0" json:"base_address"` // raw binary load address

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// Load reads configuration from the process environment using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if _, err := cfg.Base(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// S3Config returns the storage settings for publishing.
func (c *Config) S3Config() storage.S3Config {
	return storage.S3Config{
		Bucket:          c.S3Bucket,
		Region:          c.S3Region,
		Prefix:          c.S3Prefix,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
	}
}

// FamilyID resolves Family to a numeric family ID.
func (c *Config) FamilyID() (uint32, error) {
	return uf2.ParseFamilyID(c.Family)
}

// Base parses BaseAddress. Decimal, 0x-prefixed hex and 0o/0b literals
// are accepted.
func (c *Config) Base() (uint32, error) {
	return ParseAddress(c.BaseAddress)
}

// ParseAddress parses a 32-bit address literal. An empty string is 0.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBaseAddress, s)
	}
	return uint32(v), nil
}

// NewLogger creates a structured logger writing to w.
// When LogFormat is "json", it outputs JSON logs suitable for CI pipelines.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Family: %s, BaseAddress: %s, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, S3Prefix: %s, LogFormat: %s, LogLevel: %s}",
		c.Family,
		c.BaseAddress,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.S3Prefix,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
