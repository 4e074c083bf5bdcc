package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/Scanner/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	PolygonAPIKey  string `env:"POLYGON_API_KEY"`
	FinnhubAPIKey  string `env:"FINNHUB_API_KEY"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"10"` // seconds
	PolygonRPS     int    `env:"POLYGON_RPS" envDefault:"5"`
	FinnhubRPS     int    `env:"FINNHUB_RPS" envDefault:"1"`
	Workers        int    `env:"WORKERS" envDefault:"4"`
	Timezone       string `env:"TIMEZONE" envDefault:"America/New_York"`

	Port           string `env:"PORT" envDefault:"5000"`
	LogsDir        string `env:"LOGS_DIR" envDefault:"scanner_logs"`
	BackupDir      string `env:"BACKUP_DIR" envDefault:"scanner_backups"`
	CloudBackupURL string `env:"CLOUD_BACKUP_URL"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"scanner"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	ScanInterval int      `env:"SCAN_INTERVAL" envDefault:"30"` // seconds
	Watchlist    []string `env:"WATCHLIST"`
	// AlertCooldown suppresses repeat hits for the same ticker, in minutes
	AlertCooldown int `env:"ALERT_COOLDOWN" envDefault:"15"`

	Criteria models.Criteria
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")
	cfg.FinnhubAPIKey = os.Getenv("FINNHUB_API_KEY")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 10)
	cfg.PolygonRPS = getEnvIntWithDefault("POLYGON_RPS", 5)
	cfg.FinnhubRPS = getEnvIntWithDefault("FINNHUB_RPS", 1)
	cfg.Workers = getEnvIntWithDefault("WORKERS", 4)
	cfg.Timezone = getEnvWithDefault("TIMEZONE", "America/New_York")

	cfg.Port = getEnvWithDefault("PORT", "5000")
	cfg.LogsDir = getEnvWithDefault("LOGS_DIR", "scanner_logs")
	cfg.BackupDir = getEnvWithDefault("BACKUP_DIR", "scanner_backups")
	cfg.CloudBackupURL = os.Getenv("CLOUD_BACKUP_URL")

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "scanner")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = int64(getEnvIntWithDefault("TELEGRAM_CHAT_ID", 0))

	cfg.ScanInterval = getEnvPositiveIntWithDefault("SCAN_INTERVAL", 30)
	cfg.Watchlist = getEnvListWithDefault("WATCHLIST", nil)
	cfg.AlertCooldown = getEnvIntWithDefault("ALERT_COOLDOWN", 15)

	d := models.DefaultCriteria()
	cfg.Criteria = models.Criteria{
		MinPrice:          getEnvFloatWithDefault("MIN_PRICE", d.MinPrice),
		MaxPrice:          getEnvFloatWithDefault("MAX_PRICE", d.MaxPrice),
		MinVolume:         int64(getEnvIntWithDefault("MIN_VOLUME", int(d.MinVolume))),
		MinChangePct:      getEnvFloatWithDefault("MIN_CHANGE_PCT", d.MinChangePct),
		MaxFloatMillions:  getEnvFloatWithDefault("MAX_FLOAT_MILLIONS", d.MaxFloatMillions),
		MinRelativeVolume: getEnvFloatWithDefault("MIN_RELATIVE_VOLUME", d.MinRelativeVolume),
		RequireCatalyst:   getEnvBoolWithDefault("REQUIRE_CATALYST", d.RequireCatalyst),
		Limit:             getEnvIntWithDefault("STOCK_LIMIT", d.Limit),
		UniverseSize:      getEnvIntWithDefault("UNIVERSE_SIZE", d.UniverseSize),
	}

	if cfg.PolygonAPIKey == "" {
		return nil, errors.New("POLYGON_API_KEY not found in environment variables")
	}
	if cfg.FinnhubAPIKey == "" {
		return nil, errors.New("FINNHUB_API_KEY not found in environment variables")
	}

	return &cfg, nil
}

// Timeout is RequestTimeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// DatabaseEnabled reports whether permanent storage is configured
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// TelegramEnabled reports whether hit alerts should be sent
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Location resolves Timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("Unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvPositiveIntWithDefault also falls back when the value is zero or negative
func getEnvPositiveIntWithDefault(key string, defaultValue int) int {
	if v := getEnvIntWithDefault(key, defaultValue); v > 0 {
		return v
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvListWithDefault splits a comma separated value into upper-cased entries
func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
