package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(104857600), cfg.Upload.MaxFileSize)
	assert.Equal(t, 5*time.Minute, cfg.Upload.Timeout)
	assert.Equal(t, 4, cfg.Upload.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Upload.QueueWait)
	assert.Equal(t, 100, cfg.List.DefaultLimit)
	assert.Equal(t, 1000, cfg.List.MaxLimit)
	assert.Equal(t, 5*time.Second, cfg.Database.ProbeTimeout)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.True(t, cfg.Rate.Enabled)
	assert.Equal(t, 120, cfg.Rate.RequestsPerMinute)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LIST_MAX_LIMIT", "500")
	t.Setenv("UPLOAD_TIMEOUT", "90s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.List.MaxLimit)
	assert.Equal(t, 90*time.Second, cfg.Upload.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_URL", "postgres://localhost/alttest")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/alttest", cfg.Database.URL)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoad_PrimaryWinsOverAlt(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://primary.db")
	t.Setenv("POSTGRES_URL", "postgres://localhost/alt")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://primary.db", cfg.Database.URL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"invalid int", "SERVER_PORT", "not-a-number"},
		{"invalid duration", "UPLOAD_TIMEOUT", "five minutes"},
		{"invalid bool", "DB_AUTO_MIGRATE", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:          "postgres://localhost/test",
			MaxConns:     10,
			MinConns:     1,
			ProbeTimeout: 5 * time.Second,
		},
		Upload:   UploadConfig{MaxFileSize: 1024, Timeout: time.Minute, MaxConcurrent: 2, QueueWait: time.Second},
		List:     ListConfig{DefaultLimit: 100, MaxLimit: 1000},
		Rate:     RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 10},
		Security: SecurityConfig{},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "SERVER_PORT"},
		{"max conns below min", func(c *Config) { c.Database.MaxConns = 1; c.Database.MinConns = 5 }, "DB_MAX_CONNS"},
		{"probe timeout zero", func(c *Config) { c.Database.ProbeTimeout = 0 }, "DB_PROBE_TIMEOUT"},
		{"upload size zero", func(c *Config) { c.Upload.MaxFileSize = 0 }, "UPLOAD_MAX_FILE_SIZE"},
		{"upload concurrency zero", func(c *Config) { c.Upload.MaxConcurrent = 0 }, "UPLOAD_MAX_CONCURRENT"},
		{"default limit above max", func(c *Config) { c.List.DefaultLimit = 2000 }, "LIST_MAX_LIMIT"},
		{"rate without rpm", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"rate disabled ignores rpm", func(c *Config) { c.Rate.Enabled = false; c.Rate.RequestsPerMinute = 0 }, ""},
		{"api key required without keys", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "postgres://user:hunter2@db/procs"
	cfg.Security.APIKeys = []string{"secret-key"}

	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "secret-key")
	assert.True(t, strings.Contains(s, "[MASKED]"))
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8000, "0.0.0.0:8000"},
		{"localhost", 3000, "localhost:3000"},
		{"", 8000, ":8000"},
		{"::1", 8000, "[::1]:8000"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		assert.Equal(t, tt.want, cfg.Addr())
	}
}
