package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Alias1177/Scanner/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the params as a lib/pq connection string
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scanner_hits (
			id BIGSERIAL PRIMARY KEY,
			hit_id INTEGER NOT NULL,
			date DATE NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			time_readable TEXT,
			market_session TEXT,
			ticker TEXT NOT NULL,
			price DOUBLE PRECISION,
			price_change_pct DOUBLE PRECISION,
			price_category TEXT,
			volume BIGINT,
			relative_volume DOUBLE PRECISION,
			volume_category TEXT,
			momentum_score INTEGER,
			primary_trigger TEXT,
			trigger_description TEXT,
			breakout_detected BOOLEAN NOT NULL DEFAULT FALSE,
			news_detected BOOLEAN NOT NULL DEFAULT FALSE,
			signal_strength INTEGER,
			risk_level TEXT,
			scanner_criteria TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating scanner_hits: %w", err)
	}

	_, _ = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS scanner_hits_date_ticker_idx ON scanner_hits (date, ticker)`)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_summaries (
			id BIGSERIAL PRIMARY KEY,
			date DATE UNIQUE NOT NULL,
			total_hits INTEGER NOT NULL,
			unique_tickers INTEGER NOT NULL,
			tickers TEXT[],
			trigger_types JSONB,
			price_ranges JSONB,
			performance_metrics JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating daily_summaries: %w", err)
	}
	return nil
}

// SaveHit stores a logged hit permanently
func (db *DB) SaveHit(ctx context.Context, hit models.Hit) error {
	sd, ta := hit.StockData, hit.TriggerAnalysis
	_, err := db.ExecContext(ctx, `
		INSERT INTO scanner_hits (
			hit_id, date, timestamp, time_readable, market_session,
			ticker, price, price_change_pct, price_category, volume,
			relative_volume, volume_category, momentum_score,
			primary_trigger, trigger_description, breakout_detected,
			news_detected, signal_strength, risk_level, scanner_criteria
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		hit.HitID, models.FormatDate(hit.Timestamp), hit.Timestamp, hit.TimeReadable, hit.MarketSession,
		sd.Ticker, sd.Price, sd.PriceChangePct, sd.PriceCategory, sd.Volume,
		sd.RelativeVolume, sd.VolumeCategory, sd.MomentumScore,
		ta.PrimaryTrigger, ta.TriggerDescription, ta.BreakoutDetected,
		ta.NewsDetected, ta.SignalStrength, ta.RiskLevel, hit.Context.ScannerCriteria,
	)
	return err
}

// SaveDailySummary upserts the summary for date
func (db *DB) SaveDailySummary(ctx context.Context, date string, s models.DailySummary) error {
	triggers, err := json.Marshal(s.TriggerTypes)
	if err != nil {
		return err
	}
	ranges, err := json.Marshal(s.PriceRanges)
	if err != nil {
		return err
	}
	perf, err := json.Marshal(s.Performance)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO daily_summaries (
			date, total_hits, unique_tickers, tickers, trigger_types, price_ranges, performance_metrics
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date)
		DO UPDATE SET
			total_hits = EXCLUDED.total_hits,
			unique_tickers = EXCLUDED.unique_tickers,
			tickers = EXCLUDED.tickers,
			trigger_types = EXCLUDED.trigger_types,
			price_ranges = EXCLUDED.price_ranges,
			performance_metrics = EXCLUDED.performance_metrics
	`,
		date, s.TotalHits, len(s.UniqueTickers), pq.Array(s.UniqueTickers), string(triggers), string(ranges), string(perf))
	return err
}

// HitFilter narrows a historical query. Empty fields are ignored.
type HitFilter struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Ticker    string `json:"ticker,omitempty"`
	Limit     int    `json:"limit"`
}

// DefaultHistoryLimit caps historical queries without an explicit limit
const DefaultHistoryLimit = 1000

const hitColumns = `id, hit_id, date::TEXT, timestamp, time_readable, market_session,
	ticker, price, price_change_pct, price_category, volume,
	relative_volume, volume_category, momentum_score,
	primary_trigger, trigger_description, breakout_detected,
	news_detected, signal_strength, risk_level, scanner_criteria, created_at`

func buildHitsQuery(f HitFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + hitColumns + " FROM scanner_hits WHERE 1=1")

	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		fmt.Fprintf(&b, " AND %s $%d", clause, len(args))
	}
	if f.StartDate != "" {
		add("date >=", f.StartDate)
	}
	if f.EndDate != "" {
		add("date <=", f.EndDate)
	}
	if f.Ticker != "" {
		add("ticker =", strings.ToUpper(f.Ticker))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " ORDER BY timestamp DESC LIMIT $%d", len(args))
	return b.String(), args
}

// QueryHits returns stored hits newest first
func (db *DB) QueryHits(ctx context.Context, f HitFilter) ([]models.StoredHit, error) {
	query, args := buildHitsQuery(f)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []models.StoredHit{}
	for rows.Next() {
		var h models.StoredHit
		var date, timeReadable, session, priceCat, volumeCat sql.NullString
		var trigger, description, risk, criteria sql.NullString
		var price, change, rvol sql.NullFloat64
		var volume, momentum, strength sql.NullInt64
		var ts sql.NullTime

		if err := rows.Scan(
			&h.ID, &h.HitID, &date, &ts, &timeReadable, &session,
			&h.Ticker, &price, &change, &priceCat, &volume,
			&rvol, &volumeCat, &momentum,
			&trigger, &description, &h.BreakoutDetected,
			&h.NewsDetected, &strength, &risk, &criteria, &h.CreatedAt,
		); err != nil {
			return nil, err
		}

		h.Date = date.String
		h.Timestamp = ts.Time
		h.TimeReadable = timeReadable.String
		h.MarketSession = session.String
		h.PriceCategory = priceCat.String
		h.VolumeCategory = volumeCat.String
		h.PrimaryTrigger = trigger.String
		h.TriggerDescription = description.String
		h.RiskLevel = risk.String
		h.ScannerCriteria = criteria.String
		h.SignalStrength = int(strength.Int64)
		if price.Valid {
			h.Price = &price.Float64
		}
		if change.Valid {
			h.PriceChangePct = &change.Float64
		}
		if rvol.Valid {
			h.RelativeVolume = &rvol.Float64
		}
		if volume.Valid {
			h.Volume = &volume.Int64
		}
		if momentum.Valid {
			h.MomentumScore = &momentum.Int64
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Stats summarises the permanent store. BackupFiles is left for the caller.
func (db *DB) Stats(ctx context.Context) (*models.StorageStats, error) {
	var s models.StorageStats
	var first, latest sql.NullString
	var sizeBytes int64

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT ticker),
			MIN(date)::TEXT,
			MAX(date)::TEXT,
			pg_database_size(current_database())
		FROM scanner_hits
	`).Scan(&s.TotalHits, &s.UniqueTickers, &first, &latest, &sizeBytes)
	if err != nil {
		return nil, err
	}

	if first.Valid {
		s.FirstHit = &first.String
	}
	if latest.Valid {
		s.LatestHit = &latest.String
	}
	s.DatabaseSizeMB = sizeMB(sizeBytes)
	return &s, nil
}

// sizeMB converts bytes to megabytes rounded to two places
func sizeMB(bytes int64) float64 {
	return decimal.NewFromInt(bytes).DivRound(decimal.NewFromInt(1024*1024), 2).InexactFloat64()
}
