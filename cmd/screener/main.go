package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Alias1177/Scanner/internal/app"
	"github.com/Alias1177/Scanner/internal/config"
	"github.com/Alias1177/Scanner/internal/report"
	"github.com/Alias1177/Scanner/internal/screener"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	c := cfg.Criteria
	flag.Float64Var(&c.MinPrice, "min_price", c.MinPrice, "minimum share price")
	flag.Float64Var(&c.MaxPrice, "max_price", c.MaxPrice, "maximum share price")
	flag.Float64Var(&c.MinChangePct, "min_change", c.MinChangePct, "minimum gain today in percent")
	flag.Float64Var(&c.MaxFloatMillions, "max_float", c.MaxFloatMillions, "maximum float in millions of shares")
	flag.Float64Var(&c.MinRelativeVolume, "min_rvol", c.MinRelativeVolume, "minimum relative volume")
	flag.Int64Var(&c.MinVolume, "min_volume", c.MinVolume, "minimum volume today")
	flag.IntVar(&c.Limit, "limit", c.Limit, "maximum results, 0 for all")
	flag.IntVar(&c.UniverseSize, "universe", c.UniverseSize, "tickers to pull from the universe")
	flag.BoolVar(&c.RequireCatalyst, "require_catalyst", c.RequireCatalyst, "only keep stocks with recent catalyst news")
	htmlPath := flag.String("html", "", "also write an HTML report to this path")
	flag.Parse()

	app.SetupLogging(cfg.LogLevel)

	if err := screener.Validate(c); err != nil {
		log.Fatal().Err(err).Msg("Invalid criteria")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := app.Clock(cfg)
	poly, finn := app.Clients(cfg)
	s := screener.New(screener.Options{
		Tickers:        poly,
		Quotes:         finn,
		Reference:      poly,
		News:           finn,
		FallbackVolume: finn,
		Workers:        cfg.Workers,
		Clock:          clock,
	})

	stocks, err := s.Screen(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Screen failed")
	}

	if err := report.WriteTable(os.Stdout, stocks, c); err != nil {
		log.Fatal().Err(err).Msg("Failed to print results")
	}

	if *htmlPath != "" {
		if err := report.WriteHTMLFile(*htmlPath, stocks, c, clock()); err != nil {
			log.Fatal().Err(err).Msg("Failed to write HTML report")
		}
		log.Info().Str("path", *htmlPath).Msg("HTML report written")
	}
}
