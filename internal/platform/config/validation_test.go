package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()

	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	cfg.Services.Quote.Enabled = true

	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
		wantMsg string
	}{
		{
			name:    "app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantKey: "app.name",
			wantMsg: "is required",
		},
		{
			name:    "environment",
			mutate:  func(c *Config) { c.App.Environment = "staging" },
			wantKey: "app.environment",
			wantMsg: "must be one of",
		},
		{
			name:    "port range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantKey: "server.port",
			wantMsg: "at most 65535",
		},
		{
			name:    "read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 10 * time.Millisecond },
			wantKey: "server.read_timeout",
			wantMsg: "at least 1s",
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantKey: "log.level",
		},
		{
			name: "log file path",
			mutate: func(c *Config) {
				c.Log.File.Enabled = true
				c.Log.File.Path = ""
			},
			wantKey: "log.file.path",
			wantMsg: "is required when enabled is true",
		},
		{
			name: "telemetry endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = "not a url"
			},
			wantKey: "telemetry.endpoint",
			wantMsg: "absolute URL",
		},
		{
			name:    "sampling rate",
			mutate:  func(c *Config) { c.Telemetry.SamplingRate = 1.5 },
			wantKey: "telemetry.sampling_rate",
		},
		{
			name:    "database driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantKey: "database.driver",
		},
		{
			name: "idle above open connections",
			mutate: func(c *Config) {
				c.Database.MaxOpenConns = 2
				c.Database.MaxIdleConns = 5
			},
			wantKey: "database.max_idle_conns",
			wantMsg: "must not exceed max_open_conns",
		},
		{
			name:    "timezone",
			mutate:  func(c *Config) { c.QOD.Timezone = "Atlantis/Capital" },
			wantKey: "qod.timezone",
			wantMsg: "IANA time zone",
		},
		{
			name:    "quote base url when enabled",
			mutate:  func(c *Config) { c.Services.Quote.BaseURL = "" },
			wantKey: "services.quote.base_url",
		},
		{
			name:    "import limit",
			mutate:  func(c *Config) { c.Services.Quote.ImportLimit = 0 },
			wantKey: "services.quote.import_limit",
		},
		{
			name: "import concurrency above limit",
			mutate: func(c *Config) {
				c.Services.Quote.ImportLimit = 2
				c.Services.Quote.ImportConcurrency = 3
			},
			wantKey: "services.quote.import_concurrency",
			wantMsg: "must not exceed import_limit",
		},
		{
			name:    "trusted proxy",
			mutate:  func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "not-an-ip"} },
			wantKey: "server.trusted_proxies[1]",
			wantMsg: "must be an IP address or CIDR",
		},
		{
			name:    "retry multiplier",
			mutate:  func(c *Config) { c.Client.Retry.Multiplier = 1 },
			wantKey: "client.retry.multiplier",
		},
		{
			name:    "breaker failures",
			mutate:  func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 },
			wantKey: "client.circuit_breaker.max_failures",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfig_Validate_DisabledQuoteServiceNeedsNoURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.Services.Quote.Enabled = false
	cfg.Services.Quote.BaseURL = ""

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig(t)
	cfg.App.Name = ""
	cfg.Server.Port = 0
	cfg.Database.DSN = ""

	err := cfg.Validate()

	require.Error(t, err)
	for _, key := range []string{"app.name", "server.port", "database.dsn"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "server.port", configKey("Config.server.port"))
	assert.Equal(t, "client.retry.max_attempts", configKey("Config.client.retry.max_attempts"))
	assert.Equal(t, "Config", configKey("Config"))
}
