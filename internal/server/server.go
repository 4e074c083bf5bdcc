package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Alias1177/Scanner/internal/database"
	"github.com/Alias1177/Scanner/internal/news"
	"github.com/Alias1177/Scanner/models"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Screener runs a momentum screen
type Screener interface {
	Screen(ctx context.Context, c models.Criteria) ([]models.Candidate, error)
}

// MetricsProvider builds per-ticker metrics
type MetricsProvider interface {
	For(ctx context.Context, ticker string) *models.Metrics
}

// NewsProvider serves formatted market news
type NewsProvider interface {
	Market(ctx context.Context) ([]news.Article, error)
	Recent(ctx context.Context) ([]news.Article, error)
	Mentions(ctx context.Context, ticker string) (news.MentionReport, error)
}

// HitStore is the daily hit log
type HitStore interface {
	Log(ctx context.Context, ticker string, td models.TriggerData) (*models.Hit, error)
	Summary(date string) (*models.DayReport, error)
	Archive(ctx context.Context) error
	Export(date string, days int) (*models.Analysis, error)
	BackupCount() int
}

// HistoryStore is permanent hit storage
type HistoryStore interface {
	QueryHits(ctx context.Context, f database.HitFilter) ([]models.StoredHit, error)
	Stats(ctx context.Context) (*models.StorageStats, error)
}

// Deps wires the server. History is optional.
type Deps struct {
	Prices   models.PriceSource
	Metrics  MetricsProvider
	News     NewsProvider
	Screener Screener
	Hits     HitStore
	History  HistoryStore
	Criteria models.Criteria
	Clock    func() time.Time
}

// Server is the JSON API
type Server struct {
	prices   models.PriceSource
	metrics  MetricsProvider
	news     NewsProvider
	screener Screener
	hits     HitStore
	history  HistoryStore
	criteria models.Criteria
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a server from deps
func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Server{
		prices:   d.Prices,
		metrics:  d.Metrics,
		news:     d.News,
		screener: d.Screener,
		hits:     d.Hits,
		history:  d.History,
		criteria: d.Criteria,
		now:      d.Clock,
		logger:   log.With().Str("component", "server").Logger(),
	}
}

// Handler returns the routed API with CORS and access logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stock", s.handleStock)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /quote", s.handleQuote)
	mux.HandleFunc("GET /stocks", s.handleStocks)
	mux.HandleFunc("GET /news", s.handleNews)
	mux.HandleFunc("GET /breakout", s.handleBreakout)
	mux.HandleFunc("GET /recent-news", s.handleRecentNews)
	mux.HandleFunc("GET /screen", s.handleScreen)
	mux.HandleFunc("GET /daily-summary", s.handleDailySummary)
	mux.HandleFunc("GET /export-analysis", s.handleExportAnalysis)
	mux.HandleFunc("GET /historical-data", s.handleHistoricalData)
	mux.HandleFunc("GET /database-stats", s.handleDatabaseStats)
	mux.HandleFunc("POST /log-hit", s.handleLogHit)
	mux.HandleFunc("POST /archive-logs", s.handleArchiveLogs)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	})

	return hlog.NewHandler(s.logger)(access(c.Handler(mux)))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
