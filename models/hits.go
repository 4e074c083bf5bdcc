package models

import "time"

// Trigger types
const (
	TriggerMinuteBreakout  = "minute_breakout"
	TriggerBreakingNews    = "breaking_news"
	TriggerVolumeSpike     = "volume_spike"
	TriggerBreakoutAndNews = "breakout_and_news"
	TriggerUnknown         = "unknown"
)

// TriggerData is what a scanner reports when something fires
type TriggerData struct {
	TriggerType      string  `json:"trigger_type"`
	Price            float64 `json:"price"`
	ChangePct        float64 `json:"change_pct"`
	Volume           *int64  `json:"volume"`
	RelVolume        float64 `json:"rel_volume"`
	BreakoutDetected bool    `json:"breakout_detected"`
	NewsDetected     bool    `json:"news_detected"`
	MomentumScore    *int    `json:"momentum_score"`
}

// StockData is the market snapshot stored with a hit
type StockData struct {
	Ticker         string   `json:"ticker"`
	Price          *float64 `json:"price"`
	PriceChangePct *float64 `json:"price_change_pct"`
	PriceCategory  string   `json:"price_category"`
	Volume         *int64   `json:"volume"`
	RelativeVolume *float64 `json:"relative_volume"`
	VolumeCategory string   `json:"volume_category"`
	MomentumScore  *int     `json:"momentum_score"`
}

// TriggerAnalysis explains why a hit fired
type TriggerAnalysis struct {
	PrimaryTrigger     string `json:"primary_trigger"`
	TriggerDescription string `json:"trigger_description"`
	BreakoutDetected   bool   `json:"breakout_detected"`
	NewsDetected       bool   `json:"news_detected"`
	SignalStrength     int    `json:"signal_strength"`
	RiskLevel          string `json:"risk_level"`
}

// HitContext describes the scanner setup
type HitContext struct {
	ScannerCriteria  string `json:"scanner_criteria"`
	MarketConditions string `json:"market_conditions"`
	ScanFrequency    string `json:"scan_frequency"`
}

// Hit is one logged scanner trigger
type Hit struct {
	HitID           int             `json:"hit_id"`
	Timestamp       time.Time       `json:"timestamp"`
	TimeReadable    string          `json:"time_readable"`
	MarketSession   string          `json:"market_session"`
	StockData       StockData       `json:"stock_data"`
	TriggerAnalysis TriggerAnalysis `json:"trigger_analysis"`
	Context         HitContext      `json:"context"`
}

// PerformanceMetrics tracks gain and volume extremes over a day
type PerformanceMetrics struct {
	AvgChangePct   float64 `json:"avg_change_pct"`
	MaxChangePct   float64 `json:"max_change_pct"`
	AvgVolumeSpike float64 `json:"avg_volume_spike"`
	MaxVolumeSpike float64 `json:"max_volume_spike"`
}

// DailySummary aggregates the hits of one day
type DailySummary struct {
	TotalHits     int                `json:"total_hits"`
	UniqueTickers []string           `json:"unique_tickers"`
	TriggerTypes  map[string]int     `json:"trigger_types"`
	PriceRanges   map[string]int     `json:"price_ranges"`
	Performance   PerformanceMetrics `json:"performance_metrics"`
}

// LogCriteria documents the scanner thresholds inside a log file
type LogCriteria struct {
	PriceRange    string   `json:"price_range"`
	Triggers      []string `json:"triggers"`
	ScanFrequency string   `json:"scan_frequency"`
}

// LogMetadata heads a daily log file
type LogMetadata struct {
	Date        string      `json:"date"`
	LogVersion  string      `json:"log_version"`
	Purpose     string      `json:"purpose"`
	ScannerType string      `json:"scanner_type"`
	CreatedAt   time.Time   `json:"created_at"`
	Timezone    string      `json:"timezone"`
	Criteria    LogCriteria `json:"criteria"`
}

// DailyLog is the on-disk layout of scanner_hits_YYYY-MM-DD.json
type DailyLog struct {
	Metadata LogMetadata  `json:"log_metadata"`
	Summary  DailySummary `json:"daily_summary"`
	Hits     []Hit        `json:"scanner_hits"`
}

// DayReport is the daily summary as served to clients
type DayReport struct {
	Date          string              `json:"date"`
	TotalHits     int                 `json:"total_hits"`
	UniqueTickers int                 `json:"unique_tickers"`
	TriggerTypes  map[string]int      `json:"trigger_types,omitempty"`
	PriceRanges   map[string]int      `json:"price_ranges,omitempty"`
	Performance   *PerformanceMetrics `json:"performance_metrics,omitempty"`
	Hits          []Hit               `json:"scanner_hits"`
	Metadata      *LogMetadata        `json:"log_metadata,omitempty"`
}

// PriceStatistics summarises hit prices
type PriceStatistics struct {
	AvgPrice float64 `json:"avg_price"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
}

// PerformanceStatistics summarises hit gains
type PerformanceStatistics struct {
	AvgChangePct float64 `json:"avg_change_pct"`
	MaxChangePct float64 `json:"max_change_pct"`
	MinChangePct float64 `json:"min_change_pct"`
}

// VolumeStatistics summarises relative volume of hits
type VolumeStatistics struct {
	AvgVolumeSpike     float64 `json:"avg_volume_spike"`
	MaxVolumeSpike     float64 `json:"max_volume_spike"`
	ExtremeSpikesCount int     `json:"extreme_spikes_count"`
}

// HitStatistics is the aggregate view over a range of hits
type HitStatistics struct {
	TotalHits             int                   `json:"total_hits"`
	UniqueTickers         int                   `json:"unique_tickers"`
	HitFrequency          float64               `json:"hit_frequency"`
	TriggerDistribution   map[string]int        `json:"trigger_distribution"`
	PriceStatistics       PriceStatistics       `json:"price_statistics"`
	PerformanceStatistics PerformanceStatistics `json:"performance_statistics"`
	VolumeStatistics      VolumeStatistics      `json:"volume_statistics"`
}

// TickerCount is a ticker with how often it hit
type TickerCount struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// PatternAnalysis groups hits by ticker, session and risk
type PatternAnalysis struct {
	TopTickers            []TickerCount  `json:"top_tickers"`
	SessionEffectiveness  map[string]int `json:"session_effectiveness"`
	RiskDistribution      map[string]int `json:"risk_distribution"`
	SignalStrengthAvg     float64        `json:"signal_strength_avg"`
	HighConfidenceSignals int            `json:"high_confidence_signals"`
}

// AnalysisMetadata describes an export
type AnalysisMetadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	AnalysisType string    `json:"analysis_type"`
	StartDate    string    `json:"start_date"`
	DaysAnalyzed int       `json:"days_analyzed"`
	Purpose      string    `json:"purpose"`
	FocusAreas   []string  `json:"focus_areas"`
}

// Analysis is the export payload over several days of hits
type Analysis struct {
	Metadata          AnalysisMetadata `json:"analysis_metadata"`
	SummaryStatistics *HitStatistics   `json:"summary_statistics"`
	DetailedHits      []Hit            `json:"detailed_hits"`
	PatternAnalysis   *PatternAnalysis `json:"pattern_analysis"`
}

// StoredHit is a hit row from permanent storage
type StoredHit struct {
	ID                 int64     `json:"id"`
	HitID              int       `json:"hit_id"`
	Date               string    `json:"date"`
	Timestamp          time.Time `json:"timestamp"`
	TimeReadable       string    `json:"time_readable"`
	MarketSession      string    `json:"market_session"`
	Ticker             string    `json:"ticker"`
	Price              *float64  `json:"price"`
	PriceChangePct     *float64  `json:"price_change_pct"`
	PriceCategory      string    `json:"price_category"`
	Volume             *int64    `json:"volume"`
	RelativeVolume     *float64  `json:"relative_volume"`
	VolumeCategory     string    `json:"volume_category"`
	MomentumScore      *int64    `json:"momentum_score"`
	PrimaryTrigger     string    `json:"primary_trigger"`
	TriggerDescription string    `json:"trigger_description"`
	BreakoutDetected   bool      `json:"breakout_detected"`
	NewsDetected       bool      `json:"news_detected"`
	SignalStrength     int       `json:"signal_strength"`
	RiskLevel          string    `json:"risk_level"`
	ScannerCriteria    string    `json:"scanner_criteria"`
	CreatedAt          time.Time `json:"created_at"`
}

// StorageStats describes the permanent store
type StorageStats struct {
	DatabaseSizeMB float64 `json:"database_size_mb"`
	TotalHits      int64   `json:"total_hits_stored"`
	UniqueTickers  int64   `json:"unique_tickers"`
	FirstHit       *string `json:"first_hit"`
	LatestHit      *string `json:"latest_hit"`
	BackupFiles    int     `json:"backup_files"`
}
