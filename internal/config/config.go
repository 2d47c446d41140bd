// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds all configuration values for the server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to 5000.
	Port int

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["*"]. Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// SettingsFile is where the chosen storage path is remembered between runs.
	SettingsFile string

	// DefaultStoragePath is used when no storage path was saved or given at startup.
	DefaultStoragePath string

	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64

	// RequireRegisteredVehicle rejects dispatches of vehicles that were never registered.
	RequireRegisteredVehicle bool
}

// Load reads configuration from environment variables, applies defaults and
// validates the result.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		SettingsFile:       getEnv("SETTINGS_FILE", "config.json"),
		DefaultStoragePath: getEnv("DEFAULT_STORAGE_PATH", "fleet-tracker-data"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "5000")); err != nil {
		return Config{}, fmt.Errorf("PORT: %w", err)
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES: %w", err)
	}
	if cfg.RequireRegisteredVehicle, err = strconv.ParseBool(getEnv("REQUIRE_REGISTERED_VEHICLE", "false")); err != nil {
		return Config{}, fmt.Errorf("REQUIRE_REGISTERED_VEHICLE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.SettingsFile, validation.Required),
		validation.Field(&c.DefaultStoragePath, validation.Required),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
	)
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
