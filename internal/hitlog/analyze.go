package hitlog

import (
	"math"
	"sort"

	"github.com/Alias1177/Scanner/models"
	"github.com/shopspring/decimal"
)

const (
	topTickerCount      = 10
	extremeSpike        = 50.0
	highConfidenceLevel = 8
)

// Statistics aggregates a set of hits. It returns nil for no hits.
func Statistics(hits []models.Hit) *models.HitStatistics {
	if len(hits) == 0 {
		return nil
	}

	tickers := make(map[string]bool)
	triggers := make(map[string]int)
	var prices, changes, volumes []float64
	for _, h := range hits {
		tickers[h.StockData.Ticker] = true
		triggers[h.TriggerAnalysis.PrimaryTrigger]++
		if p := h.StockData.Price; p != nil && *p != 0 {
			prices = append(prices, *p)
		}
		if c := h.StockData.PriceChangePct; c != nil && *c != 0 {
			changes = append(changes, *c)
		}
		if v := h.StockData.RelativeVolume; v != nil && *v != 0 {
			volumes = append(volumes, *v)
		}
	}

	stats := &models.HitStatistics{
		TotalHits:           len(hits),
		UniqueTickers:       len(tickers),
		HitFrequency:        round2(float64(len(hits)) / float64(len(tickers))),
		TriggerDistribution: triggers,
	}

	if len(prices) > 0 {
		lo, hi := bounds(prices)
		stats.PriceStatistics = models.PriceStatistics{AvgPrice: round2(avg(prices)), MinPrice: lo, MaxPrice: hi}
	}
	if len(changes) > 0 {
		lo, hi := bounds(changes)
		stats.PerformanceStatistics = models.PerformanceStatistics{AvgChangePct: round2(avg(changes)), MaxChangePct: hi, MinChangePct: lo}
	}
	if len(volumes) > 0 {
		_, hi := bounds(volumes)
		extreme := 0
		for _, v := range volumes {
			if v >= extremeSpike {
				extreme++
			}
		}
		stats.VolumeStatistics = models.VolumeStatistics{AvgVolumeSpike: round2(avg(volumes)), MaxVolumeSpike: hi, ExtremeSpikesCount: extreme}
	}
	return stats
}

// Patterns groups hits by ticker, session and risk level. It returns nil
// for no hits.
func Patterns(hits []models.Hit) *models.PatternAnalysis {
	if len(hits) == 0 {
		return nil
	}

	p := &models.PatternAnalysis{
		SessionEffectiveness: make(map[string]int),
		RiskDistribution:     make(map[string]int),
	}

	counts := make(map[string]int)
	var order []string
	strength := 0
	for _, h := range hits {
		t := h.StockData.Ticker
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
		p.SessionEffectiveness[h.MarketSession]++
		p.RiskDistribution[h.TriggerAnalysis.RiskLevel]++
		strength += h.TriggerAnalysis.SignalStrength
		if h.TriggerAnalysis.SignalStrength >= highConfidenceLevel {
			p.HighConfidenceSignals++
		}
	}

	// stable sort keeps first-seen order among equal counts
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > topTickerCount {
		order = order[:topTickerCount]
	}
	p.TopTickers = make([]models.TickerCount, 0, len(order))
	for _, t := range order {
		p.TopTickers = append(p.TopTickers, models.TickerCount{Ticker: t, Count: counts[t]})
	}

	p.SignalStrengthAvg = round2(float64(strength) / float64(len(hits)))
	return p
}

// round2 rounds half away from zero on the decimal value, so 1.005 becomes 1.01
func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func avg(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func bounds(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
