package models

import (
	"time"
)

// Bar represents a single OHLCV aggregate
type Bar struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	VWAP      float64   `json:"vwap,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PrevClose is the previous session bar for a ticker
type PrevClose struct {
	Ticker string  `json:"ticker"`
	Status string  `json:"status,omitempty"`
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Close  float64 `json:"close,omitempty"`
	Volume int64   `json:"volume,omitempty"`
	Epoch  int64   `json:"epoch,omitempty"`
	Date   string  `json:"date,omitempty"`
	Found  bool    `json:"-"`
}

// Quote is a real-time quote snapshot
type Quote struct {
	Current   float64 `json:"c"`
	Change    float64 `json:"d"`
	ChangePct float64 `json:"dp"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Open      float64 `json:"o"`
	PrevClose float64 `json:"pc"`
	Timestamp int64   `json:"t"`
}

// Trade is the latest trade print
type Trade struct {
	Price     float64 `json:"last_price"`
	Timestamp int64   `json:"last_trade_ts"` // seconds
	ISO       string  `json:"last_trade_iso,omitempty"`
}

// NBBO is the national best bid and offer
type NBBO struct {
	Bid            float64  `json:"bid"`
	BidSize        float64  `json:"bid_size"`
	Ask            float64  `json:"ask"`
	AskSize        float64  `json:"ask_size"`
	Spread         *float64 `json:"spread"`
	QuoteTimestamp int64    `json:"quote_timestamp,omitempty"`
}

// NewsItem is a single news article
type NewsItem struct {
	Category string    `json:"category,omitempty"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	Source   string    `json:"source"`
	URL      string    `json:"url,omitempty"`
	Image    string    `json:"image,omitempty"`
	Related  string    `json:"related,omitempty"`
	Datetime time.Time `json:"datetime"`
}

// Candidate is one screened stock
type Candidate struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	Volume         int64   `json:"volume"`
	ChangePct      float64 `json:"change_pct"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Open           float64 `json:"open"`
	FloatMillions  float64 `json:"float_millions"`
	RelativeVolume float64 `json:"relative_volume"`
	AvgVolume      float64 `json:"avg_volume"`
	HasCatalyst    bool    `json:"has_catalyst"`
	NewsCount      int     `json:"news_count"`
}

// UnknownFloatMillions is used when shares outstanding are not reported
const UnknownFloatMillions = 999.0

// Criteria holds the screening thresholds
type Criteria struct {
	MinPrice          float64 `json:"min_price"`
	MaxPrice          float64 `json:"max_price"`
	MinVolume         int64   `json:"min_volume"`
	MinChangePct      float64 `json:"min_change_pct"`
	MaxFloatMillions  float64 `json:"max_float_millions"`
	MinRelativeVolume float64 `json:"min_relative_volume"`
	RequireCatalyst   bool    `json:"require_catalyst"`
	Limit             int     `json:"limit"`
	UniverseSize      int     `json:"universe_size"`
}

// DefaultCriteria returns the momentum strategy defaults
func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice:          2.0,
		MaxPrice:          20.0,
		MinVolume:         500000,
		MinChangePct:      10.0,
		MaxFloatMillions:  20.0,
		MinRelativeVolume: 5.0,
		RequireCatalyst:   false,
		Limit:             0,
		UniverseSize:      100,
	}
}

// Technicals holds daily-bar derived indicators
type Technicals struct {
	SMA5         float64  `json:"sma_5"`
	SMA20        *float64 `json:"sma_20"`
	Momentum5d   float64  `json:"momentum_5d"`
	AvgVolume30d float64  `json:"avg_volume_30d"`
	RecentHigh   float64  `json:"recent_high"`
	RecentLow    float64  `json:"recent_low"`
}

// Metrics is the full per-ticker momentum picture
type Metrics struct {
	Ticker         string      `json:"ticker"`
	Prev           *PrevClose  `json:"prev,omitempty"`
	LastPrice      *float64    `json:"last_price,omitempty"`
	LastTradeTS    *int64      `json:"last_trade_ts,omitempty"`
	LastTradeISO   string      `json:"last_trade_iso,omitempty"`
	Quote          *NBBO       `json:"quote,omitempty"`
	PriceChange    *float64    `json:"price_change,omitempty"`
	PriceChangePct *float64    `json:"price_change_pct,omitempty"`
	TodayVolume    int64       `json:"today_volume"`
	AvgVolume10d   *float64    `json:"avg_volume_10d"`
	RelVolume      *float64    `json:"rvol"`
	Technical      *Technicals `json:"technical,omitempty"`
	MomentumScore  int         `json:"momentum_score"`
	Error          string      `json:"error,omitempty"`
}

// AnomalyDetection contains information about unusual minute bars
type AnomalyDetection struct {
	IsAnomaly    bool     `json:"is_anomaly"`
	AnomalyType  string   `json:"anomaly_type,omitempty"` // PRICE_SPIKE, VOLUME_SPIKE, GAP_UP, GAP_DOWN
	AnomalyScore float64  `json:"anomaly_score"`          // 0-1 score
	Details      string   `json:"details,omitempty"`
	Flags        []string `json:"flags,omitempty"`
}

// Breakout is the result of minute-level breakout detection
type Breakout struct {
	Ticker          string            `json:"ticker"`
	Detected        bool              `json:"breakout_detected"`
	Reason          string            `json:"reason,omitempty"`
	MinuteChangePct float64           `json:"minute_change_pct"`
	LatestPrice     float64           `json:"latest_price"`
	PreviousPrice   float64           `json:"previous_price"`
	VolumeSpike     float64           `json:"volume_spike"`
	LatestVolume    int64             `json:"latest_volume"`
	BarsAnalyzed    int               `json:"bars_analyzed"`
	Anomaly         *AnomalyDetection `json:"anomaly,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}
