// Package config loads arith server and client settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with ARITH_. Command-line flags are applied
// on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ARITH_"

// Server configures cmd/arith-server.
type Server struct {
	Addr              string        `yaml:"addr" env:"ADDR"`
	MetricsAddr       string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	MaxSessions       int32         `yaml:"max_sessions" env:"MAX_SESSIONS"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	RequestBurst      int           `yaml:"request_burst" env:"REQUEST_BURST"`
	LogLevel          string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat         string        `yaml:"log_format" env:"LOG_FORMAT"`
}

// Client configures cmd/arith-cli.
type Client struct {
	Server         string        `yaml:"server" env:"SERVER"`
	DialTimeout    time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
}

// DefaultServer returns the built-in server defaults.
func DefaultServer() Server {
	return Server{
		Addr:         ":1234",
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Second,
		MaxSessions:  1024,
		RequestBurst: 1,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// DefaultClient returns the built-in client defaults.
func DefaultClient() Client {
	return Client{
		Server:      "localhost:1234",
		DialTimeout: 5 * time.Second,
		LogLevel:    "warn",
	}
}

// LoadServer overlays the YAML file at path (if not empty) and the
// environment onto cfg.
func LoadServer(path string, cfg *Server) error {
	if err := load(path, cfg); err != nil {
		return err
	}
	if cfg.Addr == "" {
		return errors.New("config: server address is empty")
	}
	if cfg.MaxSessions <= 0 {
		return fmt.Errorf("config: max_sessions must be positive, got %d", cfg.MaxSessions)
	}
	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("config: requests_per_second must not be negative, got %v", cfg.RequestsPerSecond)
	}
	return nil
}

// LoadClient overlays the YAML file at path (if not empty) and the
// environment onto cfg.
func LoadClient(path string, cfg *Client) error {
	if err := load(path, cfg); err != nil {
		return err
	}
	if cfg.Server == "" {
		return errors.New("config: server address is empty")
	}
	return nil
}

func load(path string, target any) error {
	if path != "" {
		if err := loadFile(path, target); err != nil {
			return err
		}
	}

	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

func loadFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: file %s not found: %w", path, err)
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
