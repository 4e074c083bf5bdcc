package screener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	averageVolumeDays = 30
	newsLookbackDays  = 7
)

// VolumeSource is a fallback for average volume when the primary source has none
type VolumeSource interface {
	AverageVolume(ctx context.Context, symbol string, days int, asOf time.Time) (float64, error)
}

// Screener combines Polygon reference data with Finnhub quotes and news
type Screener struct {
	tickers   models.TickerLister
	quotes    models.QuoteSource
	reference models.ReferenceSource
	news      models.NewsSource
	fallback  VolumeSource
	workers   int
	now       func() time.Time
	logger    zerolog.Logger
}

// Options configures a Screener
type Options struct {
	Tickers   models.TickerLister
	Quotes    models.QuoteSource
	Reference models.ReferenceSource
	News      models.NewsSource
	// FallbackVolume is optional
	FallbackVolume VolumeSource
	Workers        int
	Clock          func() time.Time
}

// New creates a Screener
func New(opts Options) *Screener {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Screener{
		tickers:   opts.Tickers,
		quotes:    opts.Quotes,
		reference: opts.Reference,
		news:      opts.News,
		fallback:  opts.FallbackVolume,
		workers:   opts.Workers,
		now:       opts.Clock,
		logger:    log.With().Str("component", "screener").Logger(),
	}
}

// Screen runs the full scan: universe, basic filter, enrichment, momentum
// filter, sort by gain and stock-count limit.
func (s *Screener) Screen(ctx context.Context, c models.Criteria) ([]models.Candidate, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	s.logger.Info().Int("universe", c.UniverseSize).Msg("Fetching stock tickers for momentum screening")
	tickers, err := s.tickers.ListTickers(ctx, c.UniverseSize)
	if err != nil {
		return nil, fmt.Errorf("listing tickers: %w", err)
	}

	results := s.screenTickers(ctx, tickers, c)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortByChange(results)
	results = Limit(results, c.Limit)

	s.logger.Info().Int("scanned", len(tickers)).Int("matched", len(results)).Msg("Screening complete")
	return results, nil
}

// ScreenTickers evaluates an explicit ticker list instead of the universe
func (s *Screener) ScreenTickers(ctx context.Context, tickers []string, c models.Criteria) ([]models.Candidate, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	results := s.screenTickers(ctx, tickers, c)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	SortByChange(results)
	return Limit(results, c.Limit), nil
}

func (s *Screener) screenTickers(ctx context.Context, tickers []string, c models.Criteria) []models.Candidate {
	jobs := make(chan string)
	found := make(chan models.Candidate)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				cand, err := s.Evaluate(ctx, ticker, c)
				if err != nil {
					s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Error processing ticker")
					continue
				}
				if cand != nil {
					found <- *cand
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, t := range tickers {
			s.logger.Debug().Str("ticker", t).Int("n", i+1).Int("of", len(tickers)).Msg("Processing")
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(found)
	}()

	var results []models.Candidate
	for cand := range found {
		results = append(results, cand)
	}
	return results
}

// Evaluate screens one ticker. It returns nil without error when the
// ticker is rejected.
func (s *Screener) Evaluate(ctx context.Context, ticker string, c models.Criteria) (*models.Candidate, error) {
	quote, err := s.quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	if quote == nil || quote.Current <= 0 {
		return nil, nil
	}
	price := quote.Current

	prev, err := s.reference.PreviousClose(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("previous close: %w", err)
	}

	var volume int64
	changePct := 0.0
	if prev != nil && prev.Found {
		volume = prev.Volume
		prevClose := prev.Close
		if prevClose == 0 {
			prevClose = price
		}
		if prevClose > 0 {
			changePct = (price - prevClose) / prevClose * 100
		}
	}

	if ok, reason := MeetsBasic(price, volume, changePct, c); !ok {
		s.logger.Debug().Str("ticker", ticker).Str("reason", reason).Msg("Rejected by basic criteria")
		return nil, nil
	}

	s.logger.Debug().Str("ticker", ticker).Msg("Getting detailed data")
	now := s.now()

	shares, err := s.reference.SharesOutstanding(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Shares outstanding unavailable")
		shares = 0
	}
	floatMillions := models.UnknownFloatMillions
	if shares > 0 {
		floatMillions = shares / 1_000_000
	}

	avgVolume := s.averageVolume(ctx, ticker, now)
	relVolume := 0.0
	if avgVolume > 0 {
		relVolume = float64(volume) / avgVolume
	}

	news, err := s.news.CompanyNews(ctx, ticker, now.AddDate(0, 0, -newsLookbackDays), now)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Company news unavailable")
		news = nil
	}

	cand := models.Candidate{
		Symbol:         ticker,
		Price:          price,
		Volume:         volume,
		ChangePct:      changePct,
		High:           quote.High,
		Low:            quote.Low,
		Open:           quote.Open,
		FloatMillions:  floatMillions,
		RelativeVolume: relVolume,
		AvgVolume:      avgVolume,
		HasCatalyst:    DetectCatalyst(news),
		NewsCount:      len(news),
	}

	if ok, reason := MeetsMomentum(cand, c); !ok {
		s.logger.Debug().Str("ticker", ticker).Str("reason", reason).Msg("Rejected by momentum criteria")
		return nil, nil
	}

	s.logger.Info().
		Str("ticker", ticker).
		Float64("change_pct", changePct).
		Float64("rvol", relVolume).
		Msg("Meets criteria")
	return &cand, nil
}

func (s *Screener) averageVolume(ctx context.Context, ticker string, now time.Time) float64 {
	avg, err := s.reference.AverageVolume(ctx, ticker, averageVolumeDays, now)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Average volume unavailable")
		avg = 0
	}
	if avg > 0 || s.fallback == nil {
		return avg
	}

	avg, err = s.fallback.AverageVolume(ctx, ticker, averageVolumeDays, now)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Fallback average volume unavailable")
		return 0
	}
	return avg
}
