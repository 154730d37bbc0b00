// Package server provides configuration helpers that define runtime defaults,
// validation, and environment loading for the WordHunt service.
package server

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig defines the parameters for per-connection guess rate limiting.
// A Burst of zero or less disables rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings.
type Config struct {
	Host            string
	Port            int
	PuzzleDir       string
	HTTPAddr        string
	AllowedOrigins  []string
	MaxMessageSize  int
	RateLimit       RateLimitConfig
	MaxConnections  int
	IdleTimeout     time.Duration
	AnnounceRounds  bool
	LogFile         string
	ShutdownTimeout time.Duration
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 13000
	defaultPuzzleDir       = "puzzles"
	defaultMaxMessageSize  = 1024
	defaultRateBurst       = 20
	defaultShutdownTimeout = 5 * time.Second
)

func defaultConfig() Config {
	return Config{
		Host:      defaultHost,
		Port:      defaultPort,
		PuzzleDir: defaultPuzzleDir,
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: defaultMaxMessageSize,
		RateLimit: RateLimitConfig{
			Burst:          defaultRateBurst,
			RefillInterval: time.Second,
		},
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// sanitizeConfig replaces out-of-range values with defaults. A Port of zero
// is kept and asks the kernel for an ephemeral port.
func sanitizeConfig(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		cfg.Port = defaultPort
	}

	if cfg.PuzzleDir == "" {
		cfg.PuzzleDir = defaultPuzzleDir
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.RateLimit.Burst > 0 && cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	if cfg.MaxConnections < 0 {
		cfg.MaxConnections = 0
	}

	if cfg.IdleTimeout < 0 {
		cfg.IdleTimeout = 0
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// Address returns the host:port the game listener binds to.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set or invalid.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if host := os.Getenv("WORDHUNT_HOST"); host != "" {
		cfg.Host = host
	}

	if port := os.Getenv("WORDHUNT_PORT"); port != "" {
		cfg.Port = parsePort(port, cfg.Port)
	}

	if dir := os.Getenv("PUZZLE_DIR"); dir != "" {
		cfg.PuzzleDir = dir
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseIntValue(maxSize, cfg.MaxMessageSize)
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseNonNegative(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseSeconds(interval, cfg.RateLimit.RefillInterval)
	}

	if maxConns := os.Getenv("MAX_CONNECTIONS"); maxConns != "" {
		cfg.MaxConnections = parseNonNegative(maxConns, cfg.MaxConnections)
	}

	if idle := os.Getenv("IDLE_TIMEOUT"); idle != "" {
		cfg.IdleTimeout = parseSeconds(idle, cfg.IdleTimeout)
	}

	if announce := os.Getenv("ANNOUNCE_ROUNDS"); announce != "" {
		cfg.AnnounceRounds = parseBool(announce, cfg.AnnounceRounds)
	}

	cfg.LogFile = os.Getenv("LOG_FILE")

	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		cfg.ShutdownTimeout = parseSeconds(timeout, cfg.ShutdownTimeout)
	}

	return &cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parsePort(value string, defaultValue int) int {
	if port, err := strconv.Atoi(value); err == nil && port >= 0 && port <= 65535 {
		return port
	}
	return defaultValue
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseNonNegative(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func parseBool(value string, defaultValue bool) bool {
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return defaultValue
}
