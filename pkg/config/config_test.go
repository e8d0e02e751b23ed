package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		StorageBackend:           BackendDynamoDB,
		EscrowsTable:             "escrows",
		UsersTable:               "users",
		DisputesTable:            "disputes",
		ConnectionsTable:         "connections",
		JWTSecret:                "secret",
		AutoReleaseAfter:         72 * time.Hour,
		AutoReleaseSweepSchedule: "@every 1m",
		RateLimitPerMinute:       60,
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendDynamoDB, cfg.StorageBackend)
	assert.Equal(t, 72*time.Hour, cfg.AutoReleaseAfter)
	assert.Equal(t, "@every 1m", cfg.AutoReleaseSweepSchedule)
	assert.Equal(t, "escrow_events", cfg.NotificationExchange)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", " Memory ")
	t.Setenv("AUTO_RELEASE_AFTER", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOG_INCLUDE_CALLER", "true")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 30*time.Minute, cfg.AutoReleaseAfter)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.LogIncludeCaller)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DYNAMODB_ESCROWS_TABLE_NAME=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DYNAMODB_ESCROWS_TABLE_NAME") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.EscrowsTable)
}

func TestLoad_MalformedDuration(t *testing.T) {
	t.Setenv("AUTO_RELEASE_AFTER", "soon")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"Memory Backend Needs No Tables", func(c *Config) {
			c.StorageBackend = BackendMemory
			c.EscrowsTable, c.UsersTable = "", ""
		}, ""},
		{"Missing Tables", func(c *Config) { c.UsersTable, c.DisputesTable = "", "" }, "DYNAMODB_DISPUTES_TABLE_NAME, DYNAMODB_USERS_TABLE_NAME"},
		{"Unknown Backend", func(c *Config) { c.StorageBackend = "postgres" }, "unknown STORAGE_BACKEND"},
		{"Non Positive Window", func(c *Config) { c.AutoReleaseAfter = 0 }, "AUTO_RELEASE_AFTER"},
		{"Bad Schedule", func(c *Config) { c.AutoReleaseSweepSchedule = "whenever" }, "AUTO_RELEASE_SWEEP_SCHEDULE"},
		{"Missing JWT Secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"Zero Rate Limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "RATE_LIMIT_PER_MINUTE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
