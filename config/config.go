// File: /config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key; release mode refuses it.
const DefaultJWTSecret = "your-secret-key"

var ErrDefaultSecret = errors.New("JWT_SECRET must be set when GIN_MODE=release")

type Config struct {
	Port        string        `toml:"port"`
	DBDriver    string        `toml:"db_driver"`
	DatabaseURL string        `toml:"database_url"`
	JWTSecret   string        `toml:"jwt_secret"`
	TokenTTL    time.Duration `toml:"-"`
	BaseURL     string        `toml:"base_url"`
	LogLevel    string        `toml:"log_level"`
	GinMode     string        `toml:"gin_mode"`

	// Email Configuration
	MailProvider   string `toml:"mail_provider"`
	SMTPHost       string `toml:"smtp_host"`
	SMTPPort       int    `toml:"smtp_port"`
	SMTPUsername   string `toml:"smtp_username"`
	SMTPPassword   string `toml:"smtp_password"`
	SendGridAPIKey string `toml:"sendgrid_api_key"`
	FromEmail      string `toml:"from_email"`
	FromName       string `toml:"from_name"`

	// Notification queue
	NotifyTimeout   time.Duration `toml:"-"`
	NotifyWorkers   int           `toml:"notify_workers"`
	NotifyQueueSize int           `toml:"notify_queue_size"`

	RedisURL string `toml:"redis_url"`

	RateLimitPerMinute int `toml:"rate_limit_per_minute"`
	RateLimitBurst     int `toml:"rate_limit_burst"`

	// Seeded superuser, skipped when AdminPassword is empty
	AdminUsername string `toml:"admin_username"`
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"`
}

// fileConfig mirrors the TOML layout; durations are written as strings ("24h").
type fileConfig struct {
	Config
	TokenTTL      string `toml:"token_ttl"`
	NotifyTimeout string `toml:"notify_timeout"`
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if cfg.GinMode == "release" && cfg.UsesDefaultSecret() {
		return nil, ErrDefaultSecret
	}
	return cfg, nil
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

func defaults() *Config {
	return &Config{
		Port:        "8080",
		DBDriver:    "sqlite",
		DatabaseURL: "file:eventhub.sqlite?cache=shared",
		JWTSecret:   DefaultJWTSecret,
		TokenTTL:    24 * time.Hour,
		BaseURL:     "http://127.0.0.1:8080",
		LogLevel:    "info",
		GinMode:     "debug",

		MailProvider: "log",
		SMTPHost:     "sandbox.smtp.mailtrap.io",
		SMTPPort:     2525,
		FromEmail:    "noreply@eventhub.local",
		FromName:     "EventHub",

		NotifyTimeout:   5 * time.Second,
		NotifyWorkers:   2,
		NotifyQueueSize: 64,

		RateLimitPerMinute: 20,
		RateLimitBurst:     5,

		AdminUsername: "admin",
		AdminEmail:    "admin@eventhub.local",
	}
}

func loadFile(path string, cfg *Config) error {
	fc := fileConfig{Config: *cfg}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	*cfg = fc.Config
	if fc.TokenTTL != "" {
		d, err := time.ParseDuration(fc.TokenTTL)
		if err != nil {
			return err
		}
		cfg.TokenTTL = d
	}
	if fc.NotifyTimeout != "" {
		d, err := time.ParseDuration(fc.NotifyTimeout)
		if err != nil {
			return err
		}
		cfg.NotifyTimeout = d
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)

	cfg.MailProvider = getEnv("MAIL_PROVIDER", cfg.MailProvider)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SendGridAPIKey = getEnv("SENDGRID_API_KEY", cfg.SendGridAPIKey)
	cfg.FromEmail = getEnv("FROM_EMAIL", cfg.FromEmail)
	cfg.FromName = getEnv("FROM_NAME", cfg.FromName)

	cfg.NotifyTimeout = getEnvDuration("NOTIFY_TIMEOUT", cfg.NotifyTimeout)
	cfg.NotifyWorkers = getEnvInt("NOTIFY_WORKERS", cfg.NotifyWorkers)
	cfg.NotifyQueueSize = getEnvInt("NOTIFY_QUEUE_SIZE", cfg.NotifyQueueSize)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
