// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	Webhook   WebhookConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Feed      FeedConfig
	Redis     RedisConfig
	NATS      NATSConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" env-default:"dev"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), "production")
}

type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" env-default:":8080"`
}

type DBConfig struct {
	// URL is required in production; without it the service falls back to
	// in-memory stores (development only).
	URL string `env:"DATABASE_URL" env-default:""`
}

type WebhookConfig struct {
	// SigningSecret is the identity provider's webhook signing secret
	// ("whsec_" + base64). Required: unsigned payloads are never trusted.
	SigningSecret string `env:"CLERK_WEBHOOK_SECRET"`
}

type SessionConfig struct {
	// JWTSecret verifies provider session tokens on mutating calls.
	JWTSecret string `env:"SESSION_JWT_SECRET"`
}

type RateLimitConfig struct {
	// Max posts per caller per window.
	Max    int           `env:"RATE_LIMIT_MAX" env-default:"3"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

type FeedConfig struct {
	// Limit caps the global feed size.
	Limit int `env:"FEED_LIMIT" env-default:"100"`
}

type RedisConfig struct {
	// DSN selects the shared rate-limit backend. Empty means in-memory
	// counters, which are only correct for a single instance.
	DSN string `env:"REDIS_DSN" env-default:""`
}

type NATSConfig struct {
	// URL enables feed-invalidation events. Optional.
	URL           string        `env:"NATS_URL" env-default:""`
	MaxReconnects int           `env:"NATS_MAX_RECONNECTS" env-default:"10"`
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" env-default:"2s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if strings.TrimSpace(cfg.Webhook.SigningSecret) == "" {
		return Config{}, fmt.Errorf("CLERK_WEBHOOK_SECRET is required")
	}
	if strings.TrimSpace(cfg.Session.JWTSecret) == "" {
		return Config{}, fmt.Errorf("SESSION_JWT_SECRET is required")
	}
	if cfg.RateLimit.Max <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.Feed.Limit <= 0 {
		return Config{}, fmt.Errorf("FEED_LIMIT must be positive")
	}
	return cfg, nil
}
