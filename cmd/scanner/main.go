package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Alias1177/Scanner/internal/app"
	"github.com/Alias1177/Scanner/internal/config"
	"github.com/Alias1177/Scanner/internal/metrics"
	"github.com/Alias1177/Scanner/internal/news"
	"github.com/Alias1177/Scanner/internal/scanner"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	watchlist := flag.String("watchlist", strings.Join(cfg.Watchlist, ","), "comma separated tickers to watch")
	interval := flag.Duration("interval", time.Duration(cfg.ScanInterval)*time.Second, "time between scans")
	once := flag.Bool("once", false, "scan a single time and exit")
	flag.Parse()

	app.SetupLogging(cfg.LogLevel)

	var tickers []string
	for _, t := range strings.Split(*watchlist, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		log.Fatal().Msg("No tickers to watch, set WATCHLIST or -watchlist")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := app.Clock(cfg)
	poly, finn := app.Clients(cfg)

	store, db, err := app.HitStore(ctx, cfg, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open hit store")
	}
	if db != nil {
		defer db.Close()
	}

	sc := scanner.New(scanner.Options{
		Prices:    poly,
		Metrics:   metrics.NewService(poly, clock),
		News:      news.NewService(finn, clock),
		Hits:      store,
		Watchlist: tickers,
		Cooldown:  time.Duration(cfg.AlertCooldown) * time.Minute,
		Clock:     clock,
	})

	if *once {
		hits := sc.ScanOnce(ctx)
		log.Info().Int("hits", len(hits)).Msg("Scan finished")
		return
	}
	sc.Run(ctx, *interval)
}
