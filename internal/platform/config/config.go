// Package config loads service configuration with koanf: built-in
// defaults, then configs/base.yaml, then configs/<profile>.yaml, then APP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultDir is where Load looks for YAML files.
	DefaultDir = "configs"

	envPrefix = "APP_"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	QOD       QODConfig       `koanf:"qod"       validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"min=0"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-* headers are
	// honoured. Empty trusts no peer.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

// Proxies parses TrustedProxies. A bare IP becomes a single-address prefix.
func (c ServerConfig) Proxies() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if addr, err := netip.ParseAddr(raw); err == nil {
			out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing server.trusted_proxies entry %q: %w", raw, err)
		}
		out = append(out, prefix.Masked())
	}

	return out, nil
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=sqlite postgres"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
}

// QODConfig contains quote-of-the-day settings.
type QODConfig struct {
	// Timezone is the IANA zone whose calendar date picks today's quote.
	Timezone string `koanf:"timezone" validate:"required,timezone"`
}

// Location resolves Timezone.
func (c QODConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading qod timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Quote ServiceEndpointConfig `koanf:"quote" validate:"required"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
type ServiceEndpointConfig struct {
	Enabled           bool   `koanf:"enabled"`
	BaseURL           string `koanf:"base_url"           validate:"required_if=Enabled true,omitempty,url"`
	Name              string `koanf:"name"               validate:"required"`
	ImportLimit       int    `koanf:"import_limit"       validate:"min=1,max=100"`
	ImportConcurrency int    `koanf:"import_concurrency" validate:"min=1,max=32"`
}

// defaults is the lowest-precedence layer. Every settable key must appear
// here; environment variables are only mapped onto keys it defines.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "qod-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "15s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "30s",
		"server.max_request_size": 1 << 20,
		"server.trusted_proxies":  []string{},

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/qod.log",
		"log.file.max_size":    100,
		"log.file.max_backups": 3,
		"log.file.max_age":     28,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "qod-service",
		"telemetry.sampling_rate": 1.0,

		"database.driver":            "sqlite",
		"database.dsn":               "file:qod.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		"database.max_open_conns":    10,
		"database.max_idle_conns":    5,
		"database.conn_max_lifetime": "30m",

		"qod.timezone": "UTC",

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                3,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  2.0,
		"client.retry.jitter_factor":               0.25,
		"client.circuit_breaker.max_failures":      5,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   1,
		"client.transport.max_idle_conns":          20,
		"client.transport.max_idle_conns_per_host": 4,
		"client.transport.idle_conn_timeout":       "90s",

		"services.quote.enabled":            false,
		"services.quote.name":               "quote-service",
		"services.quote.base_url":           "https://api.quotable.io",
		"services.quote.import_limit":       10,
		"services.quote.import_concurrency": 4,
	}
}

// Load reads configuration from DefaultDir for profile.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultDir, profile)
}

// LoadFrom layers defaults, dir/base.yaml, dir/<profile>.yaml and APP_*
// environment variables, later layers winning. Missing files are skipped.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"base"}
	if profile != "" {
		files = append(files, profile)
	}

	for _, name := range files {
		if err := loadYAML(k, filepath.Join(dir, name+".yaml")); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

func loadYAML(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// envKeyMapper maps APP_SERVICES_QUOTE_BASE_URL onto services.quote.base_url.
// Underscores are ambiguous between nesting and key names, so variables
// are matched against the known keys and unknown ones are ignored.
func envKeyMapper(keys []string) func(string) string {
	byEnv := make(map[string]string, len(keys))
	for _, key := range keys {
		byEnv[strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}

	return func(name string) string {
		return byEnv[strings.TrimPrefix(name, envPrefix)]
	}
}
