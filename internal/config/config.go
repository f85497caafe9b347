// Package config loads the bridge configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
)

// Config is the complete process configuration. Environment variables take
// precedence over the YAML file; env-default applies when neither sets a value.
type Config struct {
	Env      string `yaml:"env" env:"APP_ENV" env-default:"development" env-description:"deployment environment"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"zerolog level"`

	Bridge struct {
		Bind            string `yaml:"bind" env:"BRIDGE_BIND" env-default:"127.0.0.1" env-description:"listen address; keep on loopback"`
		Port            string `yaml:"port" env:"APP_PORT" env-default:"8765" env-description:"listen port"`
		SearchRateLimit int    `yaml:"search_rate_limit" env:"BRIDGE_SEARCH_RATE_LIMIT" env-default:"30" env-description:"searches allowed per minute"`
	} `yaml:"bridge"`

	OpenChargeMap struct {
		BaseURL    string        `yaml:"base_url" env:"OCM_BASE_URL" env-default:"https://api.openchargemap.io/v3" env-description:"directory API base URL"`
		APIKey     string        `yaml:"api_key" env:"OCM_API_KEY" env-description:"default API key, used when a search carries none"`
		UserAgent  string        `yaml:"user_agent" env:"OCM_USER_AGENT" env-default:"ChargeSpot/1.0" env-description:"User-Agent header"`
		Timeout    time.Duration `yaml:"timeout" env:"OCM_TIMEOUT" env-default:"30s" env-description:"search timeout"`
		MaxRetries uint64        `yaml:"max_retries" env:"OCM_MAX_RETRIES" env-default:"1" env-description:"retries on network errors and 5xx"`
	} `yaml:"openchargemap"`

	Report struct {
		Compress bool `yaml:"compress" env:"REPORT_COMPRESS" env-default:"true" env-description:"compress PDF streams"`
	} `yaml:"report"`

	Telemetry struct {
		Enabled      bool    `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false" env-description:"export traces and metrics"`
		OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317" env-description:"OTLP gRPC endpoint"`
		SampleRatio  float64 `yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1" env-description:"trace sampling ratio"`
	} `yaml:"telemetry"`
}

// Load reads the configuration. When path is empty only the environment is used.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot check on its own.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Bridge.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %q is not a valid port", c.Bridge.Port))
	}
	if c.Bridge.Bind == "" {
		errs = append(errs, errors.New("BRIDGE_BIND must not be empty"))
	}
	if c.Bridge.SearchRateLimit <= 0 {
		errs = append(errs, errors.New("BRIDGE_SEARCH_RATE_LIMIT must be positive"))
	}
	if c.OpenChargeMap.BaseURL == "" {
		errs = append(errs, errors.New("OCM_BASE_URL must not be empty"))
	}
	if c.OpenChargeMap.Timeout <= 0 {
		errs = append(errs, errors.New("OCM_TIMEOUT must be positive"))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATIO must be within [0, 1]"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	return errors.Join(errs...)
}

// Addr returns the bridge listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bridge.Bind, c.Bridge.Port)
}

// IsLoopback reports whether the bridge only listens on a loopback interface.
func (c *Config) IsLoopback() bool {
	if c.Bridge.Bind == "localhost" {
		return true
	}
	ip := net.ParseIP(c.Bridge.Bind)
	return ip != nil && ip.IsLoopback()
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Usage describes every supported environment variable.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
