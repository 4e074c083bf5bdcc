package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/Scanner/internal/anomaly"
	"github.com/Alias1177/Scanner/internal/database"
	"github.com/Alias1177/Scanner/internal/screener"
	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog/hlog"
)

const defaultTicker = "AAPL"

// breakoutWindow is how far back /breakout looks for minute bars
const breakoutWindow = 5 * time.Minute

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type tickerError struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

func tickerParam(r *http.Request) string {
	t := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if t == "" {
		return defaultTicker
	}
	return t
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Momentum Stock Scanner API",
		"version": "2.0",
		"features": []string{
			"Real-time quotes and trades",
			"Bid/Ask spreads",
			"Technical indicators",
			"Momentum scoring",
			"Minute breakout detection",
			"Scanner hit logging",
		},
		"endpoints": map[string]string{
			"health":          "/health",
			"basic_stock":     "/stock?ticker=AAPL",
			"real_time_quote": "/quote?ticker=AAPL",
			"full_metrics":    "/metrics?ticker=AAPL",
			"multiple_stocks": "/stocks?tickers=AAPL,TSLA,AMD",
			"with_metrics":    "/stocks?tickers=AAPL,TSLA&metrics=1",
			"market_news":     "/news",
			"recent_news":     "/recent-news?ticker=AAPL",
			"breakout":        "/breakout?ticker=AAPL",
			"screen":          "/screen?min_change=10&max_float=20",
			"scanner_log":     "/log-hit (POST)",
			"daily_summary":   "/daily-summary?date=2024-01-01",
			"archive_logs":    "/archive-logs (POST)",
			"export_analysis": "/export-analysis?days=7",
			"historical_data": "/historical-data?ticker=AAPL",
			"database_stats":  "/database-stats",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	t := tickerParam(r)
	prev, err := s.prices.PreviousClose(r.Context(), t)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("ticker", t).Msg("Previous close failed")
		writeJSON(w, http.StatusBadGateway, tickerError{Ticker: t, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.For(r.Context(), tickerParam(r)))
}

type quoteResponse struct {
	Ticker    string   `json:"ticker"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Spread    *float64 `json:"spread"`
	LastPrice *float64 `json:"last_price"`
	PrevClose *float64 `json:"prev_close"`
	Timestamp string   `json:"timestamp,omitempty"`
	Change    *float64 `json:"change,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t := tickerParam(r)
	fail := func(err error) {
		writeJSON(w, http.StatusBadGateway, tickerError{Ticker: t, Error: err.Error()})
	}

	nbbo, err := s.prices.LastQuote(ctx, t)
	if err != nil {
		fail(err)
		return
	}
	trade, err := s.prices.LastTrade(ctx, t)
	if err != nil {
		fail(err)
		return
	}
	prev, err := s.prices.PreviousClose(ctx, t)
	if err != nil {
		fail(err)
		return
	}

	resp := quoteResponse{Ticker: t, Spread: nbbo.Spread, Timestamp: trade.ISO}
	if nbbo.Bid > 0 {
		resp.Bid = &nbbo.Bid
	}
	if nbbo.Ask > 0 {
		resp.Ask = &nbbo.Ask
	}
	if trade.Price > 0 {
		resp.LastPrice = &trade.Price
	}
	if prev.Found && prev.Close > 0 {
		resp.PrevClose = &prev.Close
	}
	if resp.LastPrice != nil && resp.PrevClose != nil {
		change := trade.Price - prev.Close
		pct := change / prev.Close * 100
		resp.Change = &change
		resp.ChangePct = &pct
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	var tickers []string
	for _, part := range strings.Split(r.URL.Query().Get("tickers"), ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			tickers = append(tickers, part)
		}
	}
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, "Provide ?tickers=AAPL,TSLA,AMD")
		return
	}
	withMetrics := r.URL.Query().Get("metrics") == "1"

	results := make(map[string]any, len(tickers))
	for _, t := range tickers {
		if withMetrics {
			results[t] = s.metrics.For(r.Context(), t)
			continue
		}
		prev, err := s.prices.PreviousClose(r.Context(), t)
		if err != nil {
			results[t] = tickerError{Ticker: t, Error: err.Error()}
			continue
		}
		results[t] = prev
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.news.Market(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Market news failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// handleRecentNews lists the last two hours of news, or checks one ticker
// for mentions when ?ticker is given
func (s *Server) handleRecentNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if t := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))); t != "" {
		report, err := s.news.Mentions(ctx, t)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, tickerError{Ticker: t, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	articles, err := s.news.Recent(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleBreakout(w http.ResponseWriter, r *http.Request) {
	t := tickerParam(r)
	now := s.now()
	bars, err := s.prices.MinuteBars(r.Context(), t, now.Add(-breakoutWindow), now, 10)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, tickerError{Ticker: t, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, anomaly.DetectBreakout(t, bars, now))
}

// ParseCriteria overlays screening thresholds from query values onto base.
// Unknown keys are ignored, malformed values are an error.
func ParseCriteria(q url.Values, base models.Criteria) (models.Criteria, error) {
	c := base
	floats := []struct {
		key string
		dst *float64
	}{
		{"min_price", &c.MinPrice},
		{"max_price", &c.MaxPrice},
		{"min_change", &c.MinChangePct},
		{"max_float", &c.MaxFloatMillions},
		{"min_rvol", &c.MinRelativeVolume},
	}
	for _, f := range floats {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return base, fmt.Errorf("invalid %s %q", f.key, v)
		}
		*f.dst = parsed
	}

	if v := q.Get("min_volume"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return base, fmt.Errorf("invalid min_volume %q", v)
		}
		c.MinVolume = parsed
	}
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("invalid limit %q", v)
		}
		c.Limit = parsed
	}
	if v := q.Get("require_catalyst"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return base, fmt.Errorf("invalid require_catalyst %q", v)
		}
		c.RequireCatalyst = parsed
	}

	if err := screener.Validate(c); err != nil {
		return base, err
	}
	return c, nil
}

type screenResponse struct {
	Criteria models.Criteria    `json:"criteria"`
	Count    int                `json:"count"`
	Stocks   []models.Candidate `json:"stocks"`
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query(), s.criteria)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stocks, err := s.screener.Screen(r.Context(), c)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Screen failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if stocks == nil {
		stocks = []models.Candidate{}
	}
	writeJSON(w, http.StatusOK, screenResponse{Criteria: c, Count: len(stocks), Stocks: stocks})
}

type logHitRequest struct {
	Ticker           string   `json:"ticker"`
	TriggerType      string   `json:"trigger_type"`
	Price            *float64 `json:"price"`
	ChangePct        *float64 `json:"change_pct"`
	Volume           *int64   `json:"volume"`
	RelVolume        *float64 `json:"rel_volume"`
	BreakoutDetected bool     `json:"breakout_detected"`
	NewsDetected     bool     `json:"news_detected"`
	MomentumScore    *int     `json:"momentum_score"`
}

func (s *Server) handleLogHit(w http.ResponseWriter, r *http.Request) {
	var req logHitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}

	td := models.TriggerData{
		TriggerType:      req.TriggerType,
		Volume:           req.Volume,
		BreakoutDetected: req.BreakoutDetected,
		NewsDetected:     req.NewsDetected,
		MomentumScore:    req.MomentumScore,
	}
	if td.TriggerType == "" {
		td.TriggerType = models.TriggerUnknown
	}
	if req.Price != nil {
		td.Price = *req.Price
	}
	if req.ChangePct != nil {
		td.ChangePct = *req.ChangePct
	}
	if req.RelVolume != nil {
		td.RelVolume = *req.RelVolume
	}

	hit, err := s.hits.Log(r.Context(), ticker, td)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("ticker", ticker).Msg("Failed to log hit")
		writeError(w, http.StatusInternalServerError, "failed to log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged", "ticker": ticker, "hit_id": hit.HitID})
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.hits.Summary(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleArchiveLogs(w http.ResponseWriter, r *http.Request) {
	if err := s.hits.Archive(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Archive failed")
		writeError(w, http.StatusInternalServerError, "archive failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleExportAnalysis(w http.ResponseWriter, r *http.Request) {
	days := 1
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid days %q", v))
			return
		}
		days = parsed
	}
	analysis, err := s.hits.Export(r.URL.Query().Get("date"), days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type historyResponse struct {
	TotalRecords int                `json:"total_records"`
	QueryParams  database.HitFilter `json:"query_params"`
	Data         []models.StoredHit `json:"data"`
}

func (s *Server) handleHistoricalData(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "permanent storage is not configured")
		return
	}
	q := r.URL.Query()
	f := database.HitFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Ticker:    strings.ToUpper(q.Get("ticker")),
		Limit:     database.DefaultHistoryLimit,
	}
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		f.Limit = parsed
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", d))
			return
		}
	}

	hits, err := s.history.QueryHits(r.Context(), f)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("History query failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hits == nil {
		hits = []models.StoredHit{}
	}
	writeJSON(w, http.StatusOK, historyResponse{TotalRecords: len(hits), QueryParams: f, Data: hits})
}

type statsResponse struct {
	PermanentStorage *models.StorageStats `json:"permanent_storage"`
	Status           string               `json:"status"`
}

func (s *Server) handleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "permanent storage is not configured")
		return
	}
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats.BackupFiles = s.hits.BackupCount()
	writeJSON(w, http.StatusOK, statsResponse{PermanentStorage: stats, Status: "operational"})
}
