package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Server captures the tool server configuration.
type Server struct {
	Addr     string
	MaxDepth int
	Timeout  time.Duration
	Cache    bool
	LogLevel slog.Level
}

// Defaults used when a variable is unset.
const (
	DefaultAddr     = ":8080"
	DefaultMaxDepth = 64
	DefaultTimeout  = 10 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	cfg := Server{
		Addr:     DefaultAddr,
		MaxDepth: DefaultMaxDepth,
		Timeout:  DefaultTimeout,
		Cache:    true,
		LogLevel: slog.LevelInfo,
	}
	if v, ok := lookup("LAPLACE_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("LAPLACE_MAX_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("config: LAPLACE_MAX_DEPTH must be a positive integer, got %q", v)
		}
		cfg.MaxDepth = n
	}
	if v, ok := lookup("LAPLACE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Server{}, fmt.Errorf("config: LAPLACE_TIMEOUT must be a non-negative duration, got %q", v)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup("LAPLACE_CACHE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Server{}, fmt.Errorf("config: LAPLACE_CACHE must be a boolean, got %q", v)
		}
		cfg.Cache = b
	}
	if v, ok := lookup("LAPLACE_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Server{}, fmt.Errorf("config: LAPLACE_LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}
