// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of the escrow service and its lambdas.
type Config struct {
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`

	EscrowsTable     string `mapstructure:"DYNAMODB_ESCROWS_TABLE_NAME"`
	UsersTable       string `mapstructure:"DYNAMODB_USERS_TABLE_NAME"`
	DisputesTable    string `mapstructure:"DYNAMODB_DISPUTES_TABLE_NAME"`
	ConnectionsTable string `mapstructure:"DYNAMODB_CONNECTIONS_TABLE_NAME"`
	MemorySeedUsers  string `mapstructure:"MEMORY_SEED_USERS_PATH"`

	SQSQueueURL          string `mapstructure:"SQS_QUEUE_URL"`
	WebSocketAPIEndpoint string `mapstructure:"WEBSOCKET_API_ENDPOINT"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	NotificationExchange string `mapstructure:"NOTIFICATION_EXCHANGE"`

	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RateLimitPerMinute   int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst       int    `mapstructure:"RATE_LIMIT_BURST"`

	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	JWTIssuer          string   `mapstructure:"JWT_ISSUER"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	PaymentGatewayURL    string `mapstructure:"PAYMENT_GATEWAY_URL"`
	PaymentGatewaySecret string `mapstructure:"PAYMENT_GATEWAY_SECRET"`

	TierCatalogPath          string        `mapstructure:"TIER_CATALOG_PATH"`
	AutoReleaseAfter         time.Duration `mapstructure:"AUTO_RELEASE_AFTER"`
	AutoReleaseSweepSchedule string        `mapstructure:"AUTO_RELEASE_SWEEP_SCHEDULE"`

	LogLevel         string `mapstructure:"LOG_LEVEL"`
	LogFormat        string `mapstructure:"LOG_FORMAT"`
	LogIncludeCaller bool   `mapstructure:"LOG_INCLUDE_CALLER"`
	MetricsEnabled   bool   `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]any{
	"HTTP_PORT":                   "8080",
	"STORAGE_BACKEND":             BackendDynamoDB,
	"NOTIFICATION_EXCHANGE":       "escrow_events",
	"REDIS_RATE_LIMIT_PREFIX":     "escrow:rate_limit",
	"RATE_LIMIT_PER_MINUTE":       60,
	"RATE_LIMIT_BURST":            10,
	"JWT_ISSUER":                  "escrow-marketplace",
	"CORS_ALLOWED_ORIGINS":        "*",
	"AUTO_RELEASE_AFTER":          "72h",
	"AUTO_RELEASE_SWEEP_SCHEDULE": "@every 1m",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"LOG_INCLUDE_CALLER":          false,
	"METRICS_ENABLED":             true,
}

var keys = []string{
	"HTTP_PORT", "STORAGE_BACKEND",
	"DYNAMODB_ESCROWS_TABLE_NAME", "DYNAMODB_USERS_TABLE_NAME",
	"DYNAMODB_DISPUTES_TABLE_NAME", "DYNAMODB_CONNECTIONS_TABLE_NAME",
	"MEMORY_SEED_USERS_PATH",
	"SQS_QUEUE_URL", "WEBSOCKET_API_ENDPOINT", "RABBITMQ_URL", "NOTIFICATION_EXCHANGE",
	"REDIS_URL", "REDIS_RATE_LIMIT_PREFIX", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST",
	"JWT_SECRET", "JWT_ISSUER", "CORS_ALLOWED_ORIGINS",
	"PAYMENT_GATEWAY_URL", "PAYMENT_GATEWAY_SECRET",
	"TIER_CATALOG_PATH", "AUTO_RELEASE_AFTER", "AUTO_RELEASE_SWEEP_SCHEDULE",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_INCLUDE_CALLER", "METRICS_ENABLED",
}

// Load reads dir/.env if it exists, then the environment. Environment
// variables already set win over the file.
func Load(dir string) (Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	return cfg, nil
}

// ValidateStorage checks the settings every binary needs to reach its store.
func (c Config) ValidateStorage() error {
	switch c.StorageBackend {
	case BackendMemory:
		return nil
	case BackendDynamoDB:
		var missing []string
		for name, value := range map[string]string{
			"DYNAMODB_ESCROWS_TABLE_NAME":     c.EscrowsTable,
			"DYNAMODB_USERS_TABLE_NAME":       c.UsersTable,
			"DYNAMODB_DISPUTES_TABLE_NAME":    c.DisputesTable,
			"DYNAMODB_CONNECTIONS_TABLE_NAME": c.ConnectionsTable,
		} {
			if value == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown STORAGE_BACKEND %q", ErrInvalid, c.StorageBackend)
	}
}

// Validate checks the settings of the HTTP server.
func (c Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.AutoReleaseAfter <= 0 {
		return fmt.Errorf("%w: AUTO_RELEASE_AFTER must be positive", ErrInvalid)
	}
	if _, err := cron.ParseStandard(c.AutoReleaseSweepSchedule); err != nil {
		return fmt.Errorf("%w: AUTO_RELEASE_SWEEP_SCHEDULE: %v", ErrInvalid, err)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalid)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_PER_MINUTE must be positive", ErrInvalid)
	}
	return nil
}
