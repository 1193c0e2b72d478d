package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", RunMode: RunModeLongpoll},
		Database: DatabaseConfig{Host: "localhost"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if cfg.Database.Port != "5432" {
		t.Fatalf("database.port = %q", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("database.sslmode = %q", cfg.Database.SSLMode)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis.addr = %q", cfg.Redis.Addr)
	}
	if cfg.Playback.MaxStep != DefaultMaxStep {
		t.Fatalf("playback.max_step = %d", cfg.Playback.MaxStep)
	}
	if cfg.Playback.GrantTTLDays != DefaultGrantTTLDays {
		t.Fatalf("playback.grant_ttl_days = %d", cfg.Playback.GrantTTLDays)
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejectsUnknownRunMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown run_mode")
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "webhook.url") {
		t.Fatalf("expected webhook.url error, got %v", err)
	}

	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeAdminRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.Listen = ":8081"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing admin credentials")
	}

	cfg.Admin.JWTSecret = "secret"
	cfg.Admin.Login = "ops"
	cfg.Admin.PasswordHash = "$2a$10$hash"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Admin.TokenTTLMinutes != DefaultAdminTokenTTLMinutes {
		t.Fatalf("admin.token_ttl_minutes = %d", cfg.Admin.TokenTTLMinutes)
	}
}
