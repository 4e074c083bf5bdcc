package scanner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Alias1177/Scanner/internal/anomaly"
	"github.com/Alias1177/Scanner/internal/hitlog"
	"github.com/Alias1177/Scanner/internal/news"
	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// MinPrice and MaxPrice bound the tickers that may be logged as hits
	MinPrice = 2.0
	MaxPrice = 20.0

	// VolumeSpikeRatio is the relative volume that fires on its own
	VolumeSpikeRatio = 10.0

	// DefaultInterval replaces a non-positive Run interval
	DefaultInterval = 30 * time.Second

	minuteWindow   = 5 * time.Minute
	minuteBarLimit = 10
)

type MetricsProvider interface {
	For(ctx context.Context, ticker string) *models.Metrics
}

type MentionChecker interface {
	Mentions(ctx context.Context, ticker string) (news.MentionReport, error)
}

type HitLogger interface {
	Log(ctx context.Context, ticker string, td models.TriggerData) (*models.Hit, error)
}

// Options configures a Scanner. A zero Cooldown logs every trigger.
type Options struct {
	Prices    models.PriceSource
	Metrics   MetricsProvider
	News      MentionChecker
	Hits      HitLogger
	Watchlist []string
	Cooldown  time.Duration
	Clock     func() time.Time
}

// Scanner polls a watchlist for breakouts, news and volume spikes and
// logs what fires
type Scanner struct {
	prices    models.PriceSource
	metrics   MetricsProvider
	news      MentionChecker
	hits      HitLogger
	watchlist []string
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	lastHits map[string]time.Time
	logger   zerolog.Logger
}

func New(opts Options) *Scanner {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	watchlist := make([]string, 0, len(opts.Watchlist))
	for _, t := range opts.Watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			watchlist = append(watchlist, t)
		}
	}
	return &Scanner{
		prices:    opts.Prices,
		metrics:   opts.Metrics,
		news:      opts.News,
		hits:      opts.Hits,
		watchlist: watchlist,
		cooldown:  opts.Cooldown,
		now:       opts.Clock,
		lastHits:  make(map[string]time.Time),
		logger:    log.With().Str("component", "scanner").Logger(),
	}
}

// ScanOnce checks every watchlist ticker once and returns the hits logged
func (s *Scanner) ScanOnce(ctx context.Context) []models.Hit {
	var hits []models.Hit
	for _, ticker := range s.watchlist {
		if ctx.Err() != nil {
			break
		}
		td, ok := s.Check(ctx, ticker)
		if !ok {
			continue
		}
		prev, ok := s.claim(ticker)
		if !ok {
			s.logger.Debug().Str("ticker", ticker).Msg("Hit suppressed by cooldown")
			continue
		}
		hit, err := s.hits.Log(ctx, ticker, td)
		if err != nil {
			s.release(ticker, prev)
			s.logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to log hit")
			continue
		}
		hits = append(hits, *hit)
	}
	return hits
}

// Check evaluates one ticker. ok is false when nothing fired or the price
// is outside MinPrice..MaxPrice.
func (s *Scanner) Check(ctx context.Context, ticker string) (models.TriggerData, bool) {
	now := s.now()
	logger := s.logger.With().Str("ticker", ticker).Logger()

	var breakout *models.Breakout
	bars, err := s.prices.MinuteBars(ctx, ticker, now.Add(-minuteWindow), now, minuteBarLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("Minute bars unavailable")
		breakout = anomaly.DetectBreakout(ticker, nil, now)
	} else {
		breakout = anomaly.DetectBreakout(ticker, bars, now)
	}

	mention, err := s.news.Mentions(ctx, ticker)
	if err != nil {
		logger.Warn().Err(err).Msg("News check failed")
	}

	m := s.metrics.For(ctx, ticker)

	rvol := 0.0
	if m.RelVolume != nil {
		rvol = *m.RelVolume
	}
	volumeSpike := rvol >= VolumeSpikeRatio || breakout.VolumeSpike >= VolumeSpikeRatio

	trigger := hitlog.ClassifyTrigger(breakout.Detected, mention.HasRecentNews, volumeSpike)
	if trigger == "" {
		return models.TriggerData{}, false
	}

	price := breakout.LatestPrice
	if m.LastPrice != nil {
		price = *m.LastPrice
	}
	if price < MinPrice || price > MaxPrice {
		logger.Debug().Float64("price", price).Str("trigger", trigger).Msg("Trigger outside price range")
		return models.TriggerData{}, false
	}

	change := breakout.MinuteChangePct
	if m.PriceChangePct != nil {
		change = *m.PriceChangePct
	}
	volume := m.TodayVolume
	score := m.MomentumScore

	logger.Info().Str("trigger", trigger).Float64("price", price).Float64("change_pct", change).Float64("rvol", rvol).Msg("Trigger fired")
	return models.TriggerData{
		TriggerType:      trigger,
		Price:            price,
		ChangePct:        change,
		Volume:           &volume,
		RelVolume:        rvol,
		BreakoutDetected: breakout.Detected,
		NewsDetected:     mention.HasRecentNews,
		MomentumScore:    &score,
	}, true
}

// claim records a hit for ticker unless one was recorded within the
// cooldown. It returns the previous hit time for release.
func (s *Scanner) claim(ticker string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	last, seen := s.lastHits[ticker]
	if seen && s.cooldown > 0 && now.Sub(last) < s.cooldown {
		return last, false
	}
	s.lastHits[ticker] = now
	return last, true
}

// release undoes a claim whose hit was never logged
func (s *Scanner) release(ticker string, prev time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev.IsZero() {
		delete(s.lastHits, ticker)
		return
	}
	s.lastHits[ticker] = prev
}

// Run scans immediately and then every interval until ctx is cancelled
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn().Dur("interval", interval).Dur("default", DefaultInterval).Msg("Invalid scan interval, using default")
		interval = DefaultInterval
	}
	s.logger.Info().Strs("watchlist", s.watchlist).Dur("interval", interval).Msg("Scanner started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		hits := s.ScanOnce(ctx)
		if len(hits) > 0 {
			s.logger.Info().Int("hits", len(hits)).Msg("Scan complete")
		}
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scanner stopped")
			return
		case <-ticker.C:
		}
	}
}
