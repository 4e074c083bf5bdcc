package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Alias1177/Scanner/internal/app"
	"github.com/Alias1177/Scanner/internal/config"
	"github.com/Alias1177/Scanner/internal/metrics"
	"github.com/Alias1177/Scanner/internal/news"
	"github.com/Alias1177/Scanner/internal/scanner"
	"github.com/Alias1177/Scanner/internal/screener"
	"github.com/Alias1177/Scanner/internal/server"
	"github.com/rs/zerolog/log"
)

const archiveInterval = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.SetupLogging(cfg.LogLevel)
	log.Info().
		Str("port", cfg.Port).
		Str("timezone", cfg.Timezone).
		Bool("database", cfg.DatabaseEnabled()).
		Bool("telegram", cfg.TelegramEnabled()).
		Strs("watchlist", cfg.Watchlist).
		Msg("Starting momentum scanner API")

	clock := app.Clock(cfg)
	poly, finn := app.Clients(cfg)

	store, db, err := app.HitStore(ctx, cfg, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open hit store")
	}

	metricsSvc := metrics.NewService(poly, clock)
	newsSvc := news.NewService(finn, clock)
	deps := server.Deps{
		Prices:  poly,
		Metrics: metricsSvc,
		News:    newsSvc,
		Screener: screener.New(screener.Options{
			Tickers:        poly,
			Quotes:         finn,
			Reference:      poly,
			News:           finn,
			FallbackVolume: finn,
			Workers:        cfg.Workers,
			Clock:          clock,
		}),
		Hits:     store,
		Criteria: cfg.Criteria,
		Clock:    clock,
	}
	if db != nil {
		defer db.Close()
		deps.History = db
	}

	go store.RunArchiver(ctx, archiveInterval)

	if len(cfg.Watchlist) > 0 {
		sc := scanner.New(scanner.Options{
			Prices:    poly,
			Metrics:   metricsSvc,
			News:      newsSvc,
			Hits:      store,
			Watchlist: cfg.Watchlist,
			Cooldown:  time.Duration(cfg.AlertCooldown) * time.Minute,
			Clock:     clock,
		})
		go sc.Run(ctx, time.Duration(cfg.ScanInterval)*time.Second)
	}

	if err := server.New(deps).Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
	log.Info().Msg("Server stopped")
}
