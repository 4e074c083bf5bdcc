package news

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	GeneralCategory = "general"

	marketLimit        = 15
	marketSummaryLen   = 200
	recentScanLimit    = 50
	recentSummaryLen   = 150
	mentionSummaryLen  = 100
	maxMentionArticles = 3
	maxRelatedSymbols  = 5

	// RecentWindow is how far back "recent" news reaches
	RecentWindow = 2 * time.Hour
)

var (
	cashtagRe = regexp.MustCompile(`\$([A-Z]{2,5})`)
	wordRe    = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

	commonSymbols = map[string]bool{
		"AAPL": true, "TSLA": true, "NVDA": true, "AMD": true, "GOOGL": true,
		"MSFT": true, "META": true, "AMZN": true, "NFLX": true, "PLTR": true,
		"SOFI": true, "RIOT": true, "MARA": true,
	}
)

// Article is a news item shaped for API responses
type Article struct {
	Headline       string    `json:"headline"`
	Summary        string    `json:"summary"`
	Source         string    `json:"source"`
	Datetime       time.Time `json:"datetime"`
	URL            string    `json:"url,omitempty"`
	Image          string    `json:"image,omitempty"`
	RelatedSymbols []string  `json:"related_symbols,omitempty"`
}

// MentionReport says whether a ticker shows up in recent market news
type MentionReport struct {
	Ticker        string    `json:"ticker"`
	HasRecentNews bool      `json:"has_recent_news"`
	NewsCount     int       `json:"news_count"`
	Articles      []Article `json:"articles"`
}

// Truncate cuts s to n runes and appends "..." when anything was removed
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FormatMarket shapes the first 15 articles of a market feed
func FormatMarket(items []models.NewsItem, now time.Time) []Article {
	if len(items) > marketLimit {
		items = items[:marketLimit]
	}
	out := make([]Article, 0, len(items))
	for _, item := range items {
		source := item.Source
		if source == "" {
			source = "Unknown"
		}
		dt := item.Datetime
		if dt.IsZero() {
			dt = now
		}
		out = append(out, Article{
			Headline: item.Headline,
			Summary:  Truncate(item.Summary, marketSummaryLen),
			Source:   source,
			Datetime: dt,
			URL:      item.URL,
			Image:    item.Image,
		})
	}
	return out
}

// Recent keeps articles published after since among the first 50 of the
// feed and tags each with the symbols it mentions.
func Recent(items []models.NewsItem, since time.Time) []Article {
	if len(items) > recentScanLimit {
		items = items[:recentScanLimit]
	}
	out := []Article{}
	for _, item := range items {
		if !item.Datetime.After(since) {
			continue
		}
		out = append(out, Article{
			Headline:       item.Headline,
			Summary:        Truncate(item.Summary, recentSummaryLen),
			Source:         item.Source,
			Datetime:       item.Datetime,
			URL:            item.URL,
			RelatedSymbols: ExtractSymbols(item.Headline + " " + item.Summary),
		})
	}
	return out
}

// Mentions counts recent articles naming ticker, plain or as a cashtag.
// At most three articles are returned.
func Mentions(ticker string, items []models.NewsItem, since time.Time) MentionReport {
	ticker = strings.ToUpper(ticker)
	report := MentionReport{Ticker: ticker, Articles: []Article{}}

	if len(items) > recentScanLimit {
		items = items[:recentScanLimit]
	}
	for _, item := range items {
		if !item.Datetime.After(since) {
			continue
		}
		// "$T" contains "T", so one check covers both forms
		text := strings.ToUpper(item.Headline + "\n" + item.Summary)
		if !strings.Contains(text, ticker) {
			continue
		}
		report.NewsCount++
		if len(report.Articles) < maxMentionArticles {
			report.Articles = append(report.Articles, Article{
				Headline: item.Headline,
				Summary:  Truncate(item.Summary, mentionSummaryLen),
				Source:   item.Source,
				Datetime: item.Datetime,
			})
		}
	}
	report.HasRecentNews = report.NewsCount > 0
	return report
}

// ExtractSymbols finds cashtags and well-known tickers in text, in order
// of first appearance, capped at five.
func ExtractSymbols(text string) []string {
	upper := strings.ToUpper(text)
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] && len(out) < maxRelatedSymbols {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, m := range cashtagRe.FindAllStringSubmatch(upper, -1) {
		add(m[1])
	}
	for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
		if commonSymbols[m[1]] {
			add(m[1])
		}
	}
	return out
}

// Service fetches market news and applies the formatting rules above
type Service struct {
	source models.NewsSource
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a news service. A nil clock uses time.Now.
func NewService(source models.NewsSource, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		source: source,
		now:    clock,
		logger: log.With().Str("component", "news").Logger(),
	}
}

// Market returns the latest general market news
func (s *Service) Market(ctx context.Context) ([]Article, error) {
	items, err := s.source.MarketNews(ctx, GeneralCategory)
	if err != nil {
		return nil, err
	}
	return FormatMarket(items, s.now()), nil
}

// Recent returns general news from the last two hours
func (s *Service) Recent(ctx context.Context) ([]Article, error) {
	items, err := s.source.MarketNews(ctx, GeneralCategory)
	if err != nil {
		return nil, err
	}
	return Recent(items, s.now().Add(-RecentWindow)), nil
}

// Mentions checks the last two hours of general news for ticker
func (s *Service) Mentions(ctx context.Context, ticker string) (MentionReport, error) {
	items, err := s.source.MarketNews(ctx, GeneralCategory)
	if err != nil {
		return MentionReport{Ticker: strings.ToUpper(ticker)}, err
	}
	report := Mentions(ticker, items, s.now().Add(-RecentWindow))
	s.logger.Debug().Str("ticker", report.Ticker).Int("mentions", report.NewsCount).Msg("Checked news mentions")
	return report, nil
}
