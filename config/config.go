package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Events    EventsConfig    `yaml:"events"`
	R2        R2Config        `yaml:"r2"`
	LogLevel  string          `yaml:"log_level"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type DiscordConfig struct {
	BotToken      string `yaml:"bot_token"`
	ApplicationID string `yaml:"application_id"`
	// PublicKey is the hex encoded Ed25519 key from the developer portal.
	PublicKey      string `yaml:"public_key"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RedirectURL    string `yaml:"redirect_url"`
	GatewayEnabled bool   `yaml:"gateway_enabled"`
}

type DatabaseConfig struct {
	URL    string `yaml:"url"`
	Driver string `yaml:"driver"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type EventsConfig struct {
	MatchPolicy   string        `yaml:"match_policy"`
	IDPrefix      string        `yaml:"id_prefix"`
	FollowupDelay time.Duration `yaml:"followup_delay"`
	Timezone      string        `yaml:"timezone"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// R2Config описывает бакет для экспорта результатов. Пустые поля отключают загрузку.
type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{Driver: StoreDriverPostgres},
		Server: ServerConfig{
			Port:       8080,
			SessionTTL: 24 * time.Hour,
		},
		Events: EventsConfig{
			MatchPolicy:   "exact",
			IDPrefix:      "FH5-",
			FollowupDelay: time.Second,
			Timezone:      "UTC",
		},
		LogLevel:  "info",
		RateLimit: RateLimitConfig{RPS: 10, Burst: 20},
	}
}

// Load читает конфигурацию: значения по умолчанию, затем YAML файл (если path не пуст
// и файл существует), затем .env и переменные окружения, которые имеют приоритет.
func Load(path string) (*Config, error) {
	// .env нужен только для локальной разработки, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Discord.BotToken, "DISCORD_BOT_TOKEN")
	setString(&cfg.Discord.ApplicationID, "DISCORD_APPLICATION_ID")
	setString(&cfg.Discord.PublicKey, "DISCORD_PUBLIC_KEY")
	setString(&cfg.Discord.ClientID, "DISCORD_CLIENT_ID")
	setString(&cfg.Discord.ClientSecret, "DISCORD_CLIENT_SECRET")
	setString(&cfg.Discord.RedirectURL, "DISCORD_REDIRECT_URL")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Driver, "STORE_DRIVER")
	setString(&cfg.Server.JWTSecretKey, "JWT_SECRET_KEY")
	setString(&cfg.Events.MatchPolicy, "EVENT_MATCH_POLICY")
	setString(&cfg.Events.IDPrefix, "EVENT_ID_PREFIX")
	setString(&cfg.Events.Timezone, "EVENT_TIMEZONE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.R2.AccountID, "R2_ACCOUNT_ID")
	setString(&cfg.R2.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&cfg.R2.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&cfg.R2.BucketName, "R2_BUCKET_NAME")
	setString(&cfg.R2.PublicBaseURL, "R2_PUBLIC_BASE_URL")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
			}
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("GATEWAY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GATEWAY_ENABLED environment variable: %w", err)
		}
		cfg.Discord.GatewayEnabled = enabled
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL environment variable: %w", err)
		}
		cfg.Server.SessionTTL = d
	}
	if v := os.Getenv("FOLLOWUP_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FOLLOWUP_DELAY environment variable: %w", err)
		}
		cfg.Events.FollowupDelay = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS environment variable: %w", err)
		}
		cfg.RateLimit.RPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST environment variable: %w", err)
		}
		cfg.RateLimit.Burst = burst
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.BotToken == "" {
		errs = append(errs, errors.New("DISCORD_BOT_TOKEN is not set"))
	}
	if c.Discord.ApplicationID == "" {
		errs = append(errs, errors.New("DISCORD_APPLICATION_ID is not set"))
	}
	if c.Discord.PublicKey == "" {
		errs = append(errs, errors.New("DISCORD_PUBLIC_KEY is not set"))
	} else if _, err := c.PublicKey(); err != nil {
		errs = append(errs, err)
	}

	if c.Server.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is not set"))
	}

	switch c.Database.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	// follow-up раньше подтверждения Discord отклоняет
	if c.Events.FollowupDelay <= 0 {
		errs = append(errs, fmt.Errorf("FOLLOWUP_DELAY must be positive, got %s", c.Events.FollowupDelay))
	}
	if _, err := time.LoadLocation(c.Events.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid EVENT_TIMEZONE %q: %w", c.Events.Timezone, err))
	}
	return errors.Join(errs...)
}

// PublicKey decodes the interactions endpoint verification key.
func (c *Config) PublicKey() (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(c.Discord.PublicKey)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY must be %d hex encoded bytes", ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(key), nil
}

// Location is the timezone /create-event dates are interpreted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Events.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
