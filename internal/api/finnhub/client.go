package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpClient "github.com/Alias1177/Scanner/internal/platform/http"
	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public Finnhub REST endpoint
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Client is the Finnhub API client
type Client struct {
	token      string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Finnhub client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new Finnhub API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		token:   options.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			InitialInterval: options.RetryInterval,
		}),
		logger: log.With().Str("component", "finnhub_client").Logger(),
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.token)

	c.logger.Debug().Str("path", path).Msg("Finnhub request")

	if err := c.httpClient.GetJSON(ctx, c.baseURL+path+"?"+params.Encode(), out); err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	return nil
}

// Quote fetches the current quote. Unknown symbols come back with a zero price.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var q models.Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CompanyNews fetches company news published between from and to
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	params := url.Values{
		"symbol": {symbol},
		"from":   {models.FormatDate(from)},
		"to":     {models.FormatDate(to)},
	}

	var raw []newsArticle
	if err := c.get(ctx, "/company-news", params, &raw); err != nil {
		return nil, err
	}
	return toNewsItems(raw), nil
}

// MarketNews fetches the latest market news for a category such as general
func (c *Client) MarketNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	if category == "" {
		category = "general"
	}

	var raw []newsArticle
	if err := c.get(ctx, "/news", url.Values{"category": {category}}, &raw); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(raw)).Str("category", category).Msg("Fetched market news")
	return toNewsItems(raw), nil
}

// BasicFinancials fetches /stock/metric with metric=all
func (c *Client) BasicFinancials(ctx context.Context, symbol string) (*BasicFinancials, error) {
	var bf BasicFinancials
	if err := c.get(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &bf); err != nil {
		return nil, err
	}
	return &bf, nil
}

// AverageVolume returns the 10 day average trading volume in shares.
// The other arguments exist to satisfy the reference source contract.
func (c *Client) AverageVolume(ctx context.Context, symbol string, _ int, _ time.Time) (float64, error) {
	bf, err := c.BasicFinancials(ctx, symbol)
	if err != nil {
		return 0, err
	}
	// reported in millions
	return bf.Float("10DayAverageTradingVolume") * 1_000_000, nil
}

type newsArticle struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func toNewsItems(raw []newsArticle) []models.NewsItem {
	items := make([]models.NewsItem, 0, len(raw))
	for _, a := range raw {
		item := models.NewsItem{
			Category: a.Category,
			Headline: a.Headline,
			Summary:  a.Summary,
			Source:   a.Source,
			URL:      a.URL,
			Image:    a.Image,
			Related:  a.Related,
		}
		if a.Datetime > 0 {
			item.Datetime = time.Unix(a.Datetime, 0).UTC()
		}
		items = append(items, item)
	}
	return items
}

// BasicFinancials is the /stock/metric payload
type BasicFinancials struct {
	Symbol     string         `json:"symbol"`
	MetricType string         `json:"metricType"`
	Metric     map[string]any `json:"metric"`
}

// Float returns a numeric metric, or 0 when missing or null
func (b *BasicFinancials) Float(key string) float64 {
	if b == nil || b.Metric == nil {
		return 0
	}
	if v, ok := b.Metric[key].(float64); ok {
		return v
	}
	return 0
}
