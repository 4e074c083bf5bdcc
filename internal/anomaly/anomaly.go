package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/Alias1177/Scanner/models"
)

const (
	// BreakoutMovePct is the one-minute move that counts as a breakout
	BreakoutMovePct = 5.0
	// BreakoutVolumeSpike is the latest/average minute volume ratio that counts as a breakout
	BreakoutVolumeSpike = 10.0

	ReasonInsufficientData = "insufficient_data"
)

// DetectBreakout analyses minute bars ordered newest first. Fewer than two
// bars yields an undetected result with ReasonInsufficientData.
func DetectBreakout(ticker string, bars []models.Bar, now time.Time) *models.Breakout {
	result := &models.Breakout{
		Ticker:       ticker,
		BarsAnalyzed: len(bars),
		Timestamp:    now,
	}
	if len(bars) < 2 {
		result.Reason = ReasonInsufficientData
		return result
	}

	latest, previous := bars[0], bars[1]
	result.LatestPrice = latest.Close
	result.PreviousPrice = previous.Close
	result.LatestVolume = latest.Volume

	if previous.Close > 0 {
		result.MinuteChangePct = (latest.Close - previous.Close) / previous.Close * 100
	}

	var total int64
	for _, b := range bars {
		total += b.Volume
	}
	avg := float64(total) / float64(len(bars))
	result.VolumeSpike = 1
	if avg > 0 {
		result.VolumeSpike = float64(latest.Volume) / avg
	}

	result.Detected = math.Abs(result.MinuteChangePct) >= BreakoutMovePct || result.VolumeSpike >= BreakoutVolumeSpike
	result.Anomaly = DetectBarAnomalies(bars)
	return result
}

// DetectBarAnomalies flags unusual price, volume and gap behaviour in the
// latest bar relative to the rest. Bars are newest first.
func DetectBarAnomalies(bars []models.Bar) *models.AnomalyDetection {
	a := &models.AnomalyDetection{Flags: []string{}}
	if len(bars) < 3 {
		return a
	}

	current, prev := bars[0], bars[1]
	avgRange := averageRange(bars[1:])

	if avgRange > 0 {
		move := math.Abs(current.Close-prev.Close) / avgRange
		if move > 3.0 {
			a.IsAnomaly = true
			a.AnomalyType = "PRICE_SPIKE"
			a.AnomalyScore = math.Min(move/3.0, 1.0)
			a.Details = fmt.Sprintf("Price moved %.1f times the normal range", move)
			a.Flags = append(a.Flags, "WIDE_STOPS")
		}
	}

	if current.Volume > 0 {
		var total int64
		for _, b := range bars[1:] {
			total += b.Volume
		}
		avgVolume := float64(total) / float64(len(bars)-1)
		if avgVolume > 0 {
			ratio := float64(current.Volume) / avgVolume
			if ratio > 3.0 {
				if a.IsAnomaly {
					a.AnomalyScore = math.Min(a.AnomalyScore+0.2, 1.0)
					a.AnomalyType += "_WITH_VOLUME_SPIKE"
				} else {
					a.IsAnomaly = true
					a.AnomalyType = "VOLUME_SPIKE"
					a.AnomalyScore = math.Min(ratio/5.0, 1.0)
					a.Details = fmt.Sprintf("Volume %.1f times the average", ratio)
					a.Flags = append(a.Flags, "WAIT_FOR_CONFIRMATION")
				}
			}
		}
	}

	gapType := ""
	gap := 0.0
	switch {
	case current.Low > prev.Close:
		gapType, gap = "GAP_UP", current.Low-prev.Close
	case current.High < prev.Close:
		gapType, gap = "GAP_DOWN", prev.Close-current.High
	}
	if gapType != "" && avgRange > 0 && gap/avgRange > 1.0 {
		size := gap / avgRange
		if a.IsAnomaly {
			a.AnomalyScore = math.Min(a.AnomalyScore+0.15, 1.0)
			a.AnomalyType += "_WITH_" + gapType
		} else {
			a.IsAnomaly = true
			a.AnomalyType = gapType
			a.AnomalyScore = math.Min(size/2.0, 1.0)
			a.Details = fmt.Sprintf("Price gapped %.1f times the average range", size)
			a.Flags = append(a.Flags, "EXPECT_VOLATILE_TRADING")
		}
	}

	if a.IsAnomaly {
		a.Flags = append(a.Flags, "MONITOR_CLOSELY")
	}
	return a
}

// averageRange is the mean high-low range, a cheap stand-in for ATR on
// short minute windows
func averageRange(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.High - b.Low
	}
	return sum / float64(len(bars))
}
