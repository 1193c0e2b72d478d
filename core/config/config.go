package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RedisConfig holds settings for the progress cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" envconfig:"STORAGE_ENDPOINT"`
	Region    string `yaml:"region" envconfig:"STORAGE_REGION"`
	Bucket    string `yaml:"bucket" envconfig:"STORAGE_BUCKET"`
	AccessKey string `yaml:"access_key" envconfig:"STORAGE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"STORAGE_SECRET_KEY"`
	// PublicBaseURL overrides the URL prefix returned for uploaded objects;
	// empty -> "<endpoint>/<bucket>".
	PublicBaseURL string `yaml:"public_base_url" envconfig:"STORAGE_PUBLIC_BASE_URL"`
}

// AdminConfig configures the administrative HTTP API.
type AdminConfig struct {
	Listen          string `yaml:"listen" envconfig:"ADMIN_LISTEN"`
	Login           string `yaml:"login" envconfig:"ADMIN_LOGIN"`
	PasswordHash    string `yaml:"password_hash" envconfig:"ADMIN_PASSWORD_HASH"`
	JWTSecret       string `yaml:"jwt_secret" envconfig:"ADMIN_JWT_SECRET"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes" envconfig:"ADMIN_TOKEN_TTL_MINUTES"`
}

// PlaybackConfig bounds the content sequence and access grant lifetime.
type PlaybackConfig struct {
	MaxStep      int `yaml:"max_step" envconfig:"PLAYBACK_MAX_STEP"`
	GrantTTLDays int `yaml:"grant_ttl_days" envconfig:"PLAYBACK_GRANT_TTL_DAYS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
	File   string `yaml:"file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// DefaultMaxStep bounds content step numbers when playback.max_step is unset.
	DefaultMaxStep = 20
	// DefaultGrantTTLDays is the access grant validity window when unset.
	DefaultGrantTTLDays = 14
	// DefaultAdminTokenTTLMinutes is the admin session token lifetime when unset.
	DefaultAdminTokenTTLMinutes = 60
)

// RateLimitConfig holds settings for per-user bot rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Config aggregates all application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Admin     AdminConfig     `yaml:"admin"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 10
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	if cfg.Playback.MaxStep <= 0 {
		cfg.Playback.MaxStep = DefaultMaxStep
	}
	if cfg.Playback.GrantTTLDays <= 0 {
		cfg.Playback.GrantTTLDays = DefaultGrantTTLDays
	}

	if cfg.Admin.Listen != "" {
		if cfg.Admin.JWTSecret == "" {
			return fmt.Errorf("admin.jwt_secret is required when admin.listen is set")
		}
		if cfg.Admin.Login == "" || cfg.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.login and admin.password_hash are required when admin.listen is set")
		}
		if cfg.Admin.TokenTTLMinutes <= 0 {
			cfg.Admin.TokenTTLMinutes = DefaultAdminTokenTTLMinutes
		}
	}

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	return nil
}
