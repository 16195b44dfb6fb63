// Package config loads runtime settings. Values are layered: built-in
// defaults, then an optional TOML file named by KS_CONFIG_FILE, then a .env
// file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix     = "KS"
	EnvConfigFile = "KS_CONFIG_FILE"
	EnvDotEnvFile = "KS_DOTENV_FILE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	DB        DBConfig        `toml:"db"`
	Redis     RedisConfig     `toml:"redis"`
	Auth      AuthConfig      `toml:"auth"`
	Inventory InventoryConfig `toml:"inventory"`
	Outbox    OutboxConfig    `toml:"outbox"`
	Storage   StorageConfig   `toml:"storage"`
	Alerts    AlertsConfig    `toml:"alerts"`
	Jobs      JobsConfig      `toml:"jobs"`
}

type AppConfig struct {
	Env       string `toml:"env" envconfig:"KS_APP_ENV"`
	Port      int    `toml:"port" envconfig:"KS_PORT"`
	LogLevel  string `toml:"log_level" envconfig:"KS_LOG_LEVEL"`
	LogFormat string `toml:"log_format" envconfig:"KS_LOG_FORMAT"`
	// InstanceID tags change events published by this process.
	InstanceID string `toml:"instance_id" envconfig:"KS_INSTANCE_ID"`
	// CORSOrigins restricts browser origins; empty allows any.
	CORSOrigins     []string      `toml:"cors_origins" envconfig:"KS_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" envconfig:"KS_SHUTDOWN_TIMEOUT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type DBConfig struct {
	URL         string `toml:"url" envconfig:"KS_DATABASE_URL"`
	MaxConns    int32  `toml:"max_conns" envconfig:"KS_DB_MAX_CONNS"`
	AutoMigrate bool   `toml:"auto_migrate" envconfig:"KS_DB_AUTO_MIGRATE"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" envconfig:"KS_REDIS_ADDR"`
	Password string `toml:"password" envconfig:"KS_REDIS_PASSWORD"`
	DB       int    `toml:"db" envconfig:"KS_REDIS_DB"`
}

type AuthConfig struct {
	JWKSURL     string        `toml:"jwks_url" envconfig:"KS_JWKS_URL"`
	JWTSecret   string        `toml:"jwt_secret" envconfig:"KS_JWT_SECRET"`
	Issuer      string        `toml:"issuer" envconfig:"KS_JWT_ISSUER"`
	Audience    string        `toml:"audience" envconfig:"KS_JWT_AUDIENCE"`
	JWKSRefresh time.Duration `toml:"jwks_refresh" envconfig:"KS_JWKS_REFRESH"`
}

type InventoryConfig struct {
	DebounceWait     time.Duration `toml:"debounce_wait" envconfig:"KS_DEBOUNCE_WAIT"`
	PollInterval     time.Duration `toml:"poll_interval" envconfig:"KS_POLL_INTERVAL"`
	LogCapacity      int           `toml:"log_capacity" envconfig:"KS_LOG_CAPACITY"`
	UndoDepth        int           `toml:"undo_depth" envconfig:"KS_UNDO_DEPTH"`
	MaxDistance      int           `toml:"max_distance" envconfig:"KS_MAX_DISTANCE"`
	WriteTimeout     time.Duration `toml:"write_timeout" envconfig:"KS_WRITE_TIMEOUT"`
	Persistence      string        `toml:"persistence" envconfig:"KS_SYNC_POLICY"`
	CommandRateLimit int           `toml:"command_rate_limit" envconfig:"KS_COMMAND_RATE_LIMIT"`
	CommandWindow    time.Duration `toml:"command_window" envconfig:"KS_COMMAND_WINDOW"`
}

type OutboxConfig struct {
	Prefix        string        `toml:"prefix" envconfig:"KS_OUTBOX_PREFIX"`
	DrainInterval time.Duration `toml:"drain_interval" envconfig:"KS_OUTBOX_DRAIN_INTERVAL"`
	BatchSize     int64         `toml:"batch_size" envconfig:"KS_OUTBOX_BATCH_SIZE"`
	MaxAttempts   int           `toml:"max_attempts" envconfig:"KS_OUTBOX_MAX_ATTEMPTS"`
	BaseBackoff   time.Duration `toml:"base_backoff" envconfig:"KS_OUTBOX_BASE_BACKOFF"`
	MaxBackoff    time.Duration `toml:"max_backoff" envconfig:"KS_OUTBOX_MAX_BACKOFF"`
}

type StorageConfig struct {
	Endpoint   string        `toml:"endpoint" envconfig:"KS_MINIO_ENDPOINT"`
	AccessKey  string        `toml:"access_key" envconfig:"KS_MINIO_ACCESS_KEY"`
	SecretKey  string        `toml:"secret_key" envconfig:"KS_MINIO_SECRET_KEY"`
	Bucket     string        `toml:"bucket" envconfig:"KS_MINIO_BUCKET"`
	UseSSL     bool          `toml:"use_ssl" envconfig:"KS_MINIO_USE_SSL"`
	LinkExpiry time.Duration `toml:"link_expiry" envconfig:"KS_EXPORT_LINK_EXPIRY"`
}

// Enabled reports whether export storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type AlertsConfig struct {
	WebhookURL     string        `toml:"webhook_url" envconfig:"KS_ALERT_WEBHOOK_URL"`
	WebhookToken   string        `toml:"webhook_token" envconfig:"KS_ALERT_WEBHOOK_TOKEN"`
	WebhookTimeout time.Duration `toml:"webhook_timeout" envconfig:"KS_ALERT_WEBHOOK_TIMEOUT"`
	TelegramToken  string        `toml:"telegram_token" envconfig:"KS_TELEGRAM_TOKEN"`
	TelegramChatID int64         `toml:"telegram_chat_id" envconfig:"KS_TELEGRAM_CHAT_ID"`
}

type JobsConfig struct {
	Timezone      string `toml:"timezone" envconfig:"KS_TIMEZONE"`
	ChecklistCron string `toml:"checklist_cron" envconfig:"KS_CHECKLIST_CRON"`
	DigestCron    string `toml:"digest_cron" envconfig:"KS_DIGEST_CRON"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		App: AppConfig{Env: AppEnvProd, Port: 8080, LogLevel: "info", LogFormat: "json", ShutdownTimeout: 15 * time.Second},
		DB:  DBConfig{MaxConns: 10},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{JWKSRefresh: time.Hour},
		Inventory: InventoryConfig{
			DebounceWait:     300 * time.Millisecond,
			PollInterval:     15 * time.Second,
			LogCapacity:      50,
			UndoDepth:        1,
			MaxDistance:      2,
			WriteTimeout:     10 * time.Second,
			Persistence:      "at_least_once",
			CommandRateLimit: 30,
			CommandWindow:    time.Minute,
		},
		Outbox: OutboxConfig{
			Prefix:        "ks:outbox",
			DrainInterval: 10 * time.Second,
			BatchSize:     100,
			MaxAttempts:   8,
			BaseBackoff:   2 * time.Second,
			MaxBackoff:    5 * time.Minute,
		},
		Storage: StorageConfig{Bucket: "kitchenstock-exports", LinkExpiry: 15 * time.Minute},
		Alerts:  AlertsConfig{WebhookTimeout: 5 * time.Second},
		Jobs: JobsConfig{
			Timezone:      "America/Sao_Paulo",
			ChecklistCron: "5 0 * * *",
			DigestCron:    "0 18 * * *",
		},
	}
}

// Load builds the configuration from every layer and validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	dotenv := os.Getenv(EnvDotEnvFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", dotenv, err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes a TOML file over cfg.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var missing []string
	if c.DB.URL == "" {
		missing = append(missing, "KS_DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	switch c.Inventory.Persistence {
	case "best_effort", "at_least_once":
	default:
		return fmt.Errorf("KS_SYNC_POLICY must be best_effort or at_least_once, got %q", c.Inventory.Persistence)
	}
	if c.Inventory.PollInterval < time.Second {
		return fmt.Errorf("KS_POLL_INTERVAL must be at least 1s, got %s", c.Inventory.PollInterval)
	}
	return nil
}

// Location resolves the scheduler timezone, falling back to UTC.
func (j JobsConfig) Location() *time.Location {
	if j.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
