package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	LogLevel      string
	EncryptionKey string
	SeedFile      string // Optional JSON list of users loaded into the directory at startup

	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Telegram TelegramConfig
}

type HTTPConfig struct {
	Addr string
}

// PostgresConfig selects the store. An empty URL runs on in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig enables the user cache when URL is set.
type RedisConfig struct {
	URL     string
	UserTTL time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// TelegramConfig enables delivery when Token is set.
type TelegramConfig struct {
	Token string
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

var bindings = map[string]string{
	"app.env":        "APP_ENV",
	"log.level":      "LOG_LEVEL",
	"http.addr":      "HTTP_ADDR",
	"postgres.url":   "DATABASE_URL",
	"redis.url":      "REDIS_URL",
	"redis.user_ttl": "REDIS_USER_CACHE_TTL",
	"encryption.key": "ENCRYPTION_KEY",
	"jwt.secret":     "JWT_SECRET",
	"jwt.issuer":     "JWT_ISSUER",
	"telegram.token": "TELEGRAM_BOT_TOKEN",
	"seed.file":      "SEED_FILE",
}

// Load loads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine, the environment may be set directly.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.user_ttl", 5*time.Minute)
	v.SetDefault("jwt.issuer", "civicpulse")

	cfg := Config{
		AppEnv:        v.GetString("app.env"),
		LogLevel:      v.GetString("log.level"),
		EncryptionKey: v.GetString("encryption.key"),
		SeedFile:      v.GetString("seed.file"),
		HTTP:          HTTPConfig{Addr: v.GetString("http.addr")},
		Postgres:      PostgresConfig{URL: v.GetString("postgres.url")},
		Redis: RedisConfig{
			URL:     v.GetString("redis.url"),
			UserTTL: v.GetDuration("redis.user_ttl"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Telegram: TelegramConfig{Token: v.GetString("telegram.token")},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is not set in environment or .env file")
	}
	if len(c.EncryptionKey) != 64 {
		return fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(c.EncryptionKey))
	}
	if _, err := hex.DecodeString(c.EncryptionKey); err != nil {
		return fmt.Errorf("ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set in environment or .env file")
	}
	if c.Redis.UserTTL <= 0 {
		return fmt.Errorf("REDIS_USER_CACHE_TTL must be positive, got %s", c.Redis.UserTTL)
	}
	return nil
}
