package hitlog

import (
	"math"
	"time"

	"github.com/Alias1177/Scanner/models"
)

// Market sessions
const (
	SessionRegular   = "regular_hours"
	SessionPreMarket = "pre_market"
	SessionAfter     = "after_hours"
	SessionOvernight = "overnight"
)

var triggerDescriptions = map[string]string{
	models.TriggerMinuteBreakout:  "5%+ price move within 1 minute timeframe",
	models.TriggerBreakingNews:    "Recent news mention in last 2 hours",
	models.TriggerVolumeSpike:     "10x+ volume explosion without news/breakout",
	models.TriggerBreakoutAndNews: "Both rapid price move AND breaking news",
}

// MarketSession buckets t by its wall clock hour
func MarketSession(t time.Time) string {
	h := t.Hour()
	switch {
	case h >= 9 && h < 16:
		return SessionRegular
	case h >= 4 && h < 9:
		return SessionPreMarket
	case h >= 16 && h <= 20:
		return SessionAfter
	default:
		return SessionOvernight
	}
}

// PriceCategory labels a price for the hit record. Zero means the price was unknown.
func PriceCategory(price float64) string {
	switch {
	case price == 0:
		return "unknown"
	case price < 5:
		return "penny_stock"
	case price < 10:
		return "low_priced"
	case price < 15:
		return "mid_priced"
	default:
		return "higher_priced"
	}
}

// VolumeCategory labels a relative volume for the hit record
func VolumeCategory(relVolume float64) string {
	switch {
	case relVolume == 0:
		return "normal"
	case relVolume >= 50:
		return "extreme_spike"
	case relVolume >= 20:
		return "massive_spike"
	case relVolume >= 10:
		return "high_spike"
	case relVolume >= 5:
		return "moderate_spike"
	default:
		return "normal_volume"
	}
}

// PriceRange is the daily summary bucket for price. Anything from 15 up
// lands in 15_to_20.
func PriceRange(price float64) string {
	switch {
	case price < 5:
		return "under_5"
	case price < 10:
		return "5_to_10"
	case price < 15:
		return "10_to_15"
	default:
		return "15_to_20"
	}
}

// TriggerDescription returns the human readable text for a trigger type
func TriggerDescription(trigger string) string {
	if d, ok := triggerDescriptions[trigger]; ok {
		return d
	}
	return "Unknown trigger type"
}

// ClassifyTrigger picks the primary trigger type. It returns "" when
// nothing fired.
func ClassifyTrigger(breakout, news, volumeSpike bool) string {
	switch {
	case breakout && news:
		return models.TriggerBreakoutAndNews
	case breakout:
		return models.TriggerMinuteBreakout
	case news:
		return models.TriggerBreakingNews
	case volumeSpike:
		return models.TriggerVolumeSpike
	default:
		return ""
	}
}

// SignalStrength scores a trigger from 1 to 10
func SignalStrength(td models.TriggerData) int {
	score := 5

	change := math.Abs(td.ChangePct)
	switch {
	case change >= 15:
		score += 2
	case change >= 10:
		score++
	}

	switch {
	case td.RelVolume >= 50:
		score += 2
	case td.RelVolume >= 20:
		score++
	}

	if td.BreakoutDetected && td.NewsDetected {
		score++
	}

	return min(10, max(1, score))
}

// RiskLevel rates a hit from low to very_high by price, move and relative
// volume. Zero price is unknown.
func RiskLevel(price, changePct, relVolume float64) string {
	if price == 0 {
		return "unknown"
	}
	change := math.Abs(changePct)
	switch {
	case price < 5 && change > 20:
		return "very_high"
	case price < 5 || change > 15:
		return "high"
	case change > 10 || relVolume > 25:
		return "moderate"
	default:
		return "low"
	}
}
