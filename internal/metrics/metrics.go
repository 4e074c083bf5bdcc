package metrics

import (
	"context"
	"math"
	"time"

	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	avgVolumeDays  = 10
	technicalsDays = 30
)

// Service builds the per-ticker momentum picture
type Service struct {
	prices models.PriceSource
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a metrics service. A nil clock uses time.Now.
func NewService(prices models.PriceSource, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		prices: prices,
		now:    clock,
		logger: log.With().Str("component", "metrics").Logger(),
	}
}

// For gathers price, volume and technical data for ticker. Upstream
// failures are reported in Metrics.Error with whatever was collected so far.
func (s *Service) For(ctx context.Context, ticker string) *models.Metrics {
	m := &models.Metrics{Ticker: ticker}
	if err := s.collect(ctx, ticker, m); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Metrics incomplete")
		m.Error = err.Error()
	}
	return m
}

func (s *Service) collect(ctx context.Context, ticker string, m *models.Metrics) error {
	now := s.now().UTC()

	prev, err := s.prices.PreviousClose(ctx, ticker)
	if err != nil {
		return err
	}
	m.Prev = prev

	trade, err := s.prices.LastTrade(ctx, ticker)
	if err != nil {
		return err
	}
	if trade.Price != 0 {
		m.LastPrice = &trade.Price
	}
	if trade.Timestamp != 0 {
		m.LastTradeTS = &trade.Timestamp
		m.LastTradeISO = trade.ISO
	}

	quote, err := s.prices.LastQuote(ctx, ticker)
	if err != nil {
		return err
	}
	m.Quote = quote

	if prev.Close != 0 && trade.Price != 0 {
		change := trade.Price - prev.Close
		pct := change / prev.Close * 100
		m.PriceChange = &change
		m.PriceChangePct = &pct
	}

	todayVolume, err := s.prices.IntradayVolume(ctx, ticker, now)
	if err != nil {
		return err
	}
	m.TodayVolume = todayVolume

	completed, err := s.prices.CompletedDailyBars(ctx, ticker, avgVolumeDays, now)
	if err != nil {
		return err
	}
	if avg, ok := AverageVolume(completed); ok {
		m.AvgVolume10d = &avg
		if avg > 0 {
			rvol := float64(todayVolume) / avg
			m.RelVolume = &rvol
		}
	}

	daily, err := s.prices.DailyBars(ctx, ticker, technicalsDays, now)
	if err != nil {
		return err
	}
	m.Technical = Technicals(daily)

	m.MomentumScore = MomentumScore(deref(m.PriceChangePct), deref(m.RelVolume), m.Technical)
	return nil
}

// AverageVolume is the mean volume of bars; ok is false for no bars
func AverageVolume(bars []models.Bar) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars)), true
}

// Technicals derives indicators from daily bars ordered newest first.
// It needs at least five closes and returns nil otherwise.
func Technicals(bars []models.Bar) *models.Technicals {
	var closes []float64
	var volumes []int64
	for _, b := range bars {
		if b.Close != 0 {
			closes = append(closes, b.Close)
		}
		if b.Volume != 0 {
			volumes = append(volumes, b.Volume)
		}
	}
	if len(closes) < 5 {
		return nil
	}

	t := &models.Technicals{
		SMA5:       mean(closes[:5]),
		RecentHigh: math.Inf(-1),
		RecentLow:  math.Inf(1),
	}
	if len(closes) >= 20 {
		sma20 := mean(closes[:20])
		t.SMA20 = &sma20
	}
	if closes[4] != 0 {
		t.Momentum5d = (closes[0] - closes[4]) / closes[4] * 100
	}
	if len(volumes) > 0 {
		var sum int64
		for _, v := range volumes {
			sum += v
		}
		t.AvgVolume30d = float64(sum) / float64(len(volumes))
	}

	recent := bars
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, b := range recent {
		t.RecentHigh = math.Max(t.RecentHigh, b.High)
		t.RecentLow = math.Min(t.RecentLow, b.Low)
	}
	return t
}

// MomentumScore starts at 50 and adds 20 for a >5% gain, 15 for >3x
// relative volume and 15 for a >10% five day move, capped at 100.
func MomentumScore(changePct, relVolume float64, tech *models.Technicals) int {
	score := 50
	if changePct > 5 {
		score += 20
	}
	if relVolume > 3 {
		score += 15
	}
	if tech != nil && tech.Momentum5d > 10 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
