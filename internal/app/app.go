// Package app wires configuration into clients and stores shared by the binaries.
package app

import (
	"context"
	"os"
	"time"

	"github.com/Alias1177/Scanner/internal/api/finnhub"
	"github.com/Alias1177/Scanner/internal/api/polygon"
	"github.com/Alias1177/Scanner/internal/config"
	"github.com/Alias1177/Scanner/internal/database"
	"github.com/Alias1177/Scanner/internal/hitlog"
	"github.com/Alias1177/Scanner/internal/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global console logger
func SetupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// Clients builds the Polygon and Finnhub clients
func Clients(cfg *config.Config) (*polygon.Client, *finnhub.Client) {
	poly := polygon.NewClient(polygon.ClientOptions{
		APIKey:         cfg.PolygonAPIKey,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.PolygonRPS,
	})
	finn := finnhub.NewClient(finnhub.ClientOptions{
		APIKey:         cfg.FinnhubAPIKey,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.FinnhubRPS,
	})
	return poly, finn
}

// Clock returns time.Now in the configured market timezone
func Clock(cfg *config.Config) func() time.Time {
	loc := cfg.Location()
	return func() time.Time { return time.Now().In(loc) }
}

// HitStore opens the daily hit log together with the optional PostgreSQL
// repository, Telegram alerter and cloud uploader. db is nil when no
// database is configured; the caller closes it.
func HitStore(ctx context.Context, cfg *config.Config, clock func() time.Time) (*hitlog.Store, *database.DB, error) {
	opts := hitlog.StoreOptions{
		LogsDir:   cfg.LogsDir,
		BackupDir: cfg.BackupDir,
		Clock:     clock,
	}

	var db *database.DB
	if cfg.DatabaseEnabled() {
		var err error
		db, err = database.New(ctx, database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		opts.Repository = db
	} else {
		log.Warn().Msg("DB_HOST not set, hits are only kept in daily log files")
	}

	if cfg.TelegramEnabled() {
		alerter, err := notify.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram alerts disabled")
		} else {
			opts.Alerter = alerter
		}
	}

	if cfg.CloudBackupURL != "" {
		opts.Uploader = hitlog.NewWebhookUploader(cfg.CloudBackupURL, cfg.Timeout())
	}

	store, err := hitlog.NewStore(opts)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}
	return store, db, nil
}
