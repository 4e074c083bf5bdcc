package polygon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpClient "github.com/Alias1177/Scanner/internal/platform/http"
	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public Polygon.io REST endpoint
const DefaultBaseURL = "https://api.polygon.io"

// Client is the Polygon.io API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Polygon client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new Polygon API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			InitialInterval: options.RetryInterval,
		}),
		logger: log.With().Str("component", "polygon_client").Logger(),
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.getURL(ctx, c.baseURL+path, params, out)
}

// getURL also serves next_url pagination links, which come back without the key
func (c *Client) getURL(ctx context.Context, rawURL string, params url.Values, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	c.logger.Debug().Str("path", u.Path).Msg("Polygon request")

	if err := c.httpClient.GetJSON(ctx, u.String(), out); err != nil {
		return fmt.Errorf("polygon %s: %w", u.Path, err)
	}
	return nil
}

// ListTickers pages through active stock tickers until limit symbols are collected
func (c *Client) ListTickers(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	pageSize := limit
	if pageSize > 1000 {
		pageSize = 1000
	}

	params := url.Values{}
	params.Set("market", "stocks")
	params.Set("active", "true")
	params.Set("limit", strconv.Itoa(pageSize))

	tickers := make([]string, 0, limit)
	next := c.baseURL + "/v3/reference/tickers"
	for next != "" && len(tickers) < limit {
		var page tickersResponse
		if err := c.getURL(ctx, next, params, &page); err != nil {
			return tickers, err
		}
		for _, r := range page.Results {
			if r.Market != "stocks" {
				continue
			}
			tickers = append(tickers, r.Ticker)
			if len(tickers) == limit {
				break
			}
		}
		// next_url already carries the cursor and filters
		next = page.NextURL
		params = nil
	}

	c.logger.Debug().Int("count", len(tickers)).Msg("Fetched tickers")
	return tickers, nil
}

// TickerDetails fetches reference data for one ticker
func (c *Client) TickerDetails(ctx context.Context, ticker string) (*TickerDetails, error) {
	var resp tickerDetailsResponse
	if err := c.get(ctx, "/v3/reference/tickers/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Results, nil
}

// SharesOutstanding returns share class shares outstanding, or 0 when unreported
func (c *Client) SharesOutstanding(ctx context.Context, ticker string) (float64, error) {
	details, err := c.TickerDetails(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return details.ShareClassSharesOutstanding, nil
}

// PreviousClose fetches the previous session bar
func (c *Client) PreviousClose(ctx context.Context, ticker string) (*models.PrevClose, error) {
	var resp aggsResponse
	if err := c.get(ctx, "/v2/aggs/ticker/"+url.PathEscape(ticker)+"/prev", nil, &resp); err != nil {
		return nil, err
	}

	out := &models.PrevClose{Ticker: ticker, Status: resp.Status}
	if len(resp.Results) == 0 {
		return out, nil
	}
	r := resp.Results[0]
	ts := r.Timestamp / 1000
	out.Open = r.Open
	out.High = r.High
	out.Low = r.Low
	out.Close = r.Close
	out.Volume = int64(r.Volume)
	out.Epoch = ts
	out.Date = models.FormatDate(time.Unix(ts, 0).UTC())
	out.Found = true
	return out, nil
}

// AggParams are optional aggregate query parameters
type AggParams struct {
	Sort  string // asc or desc
	Limit int
	// Millisecond bounds that narrow a day range
	From time.Time
	To   time.Time
}

// Aggregates fetches bars of size 1 timespan between two dates
func (c *Client) Aggregates(ctx context.Context, ticker, timespan string, from, to time.Time, p AggParams) ([]models.Bar, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/%s/%s/%s",
		url.PathEscape(ticker), timespan, models.FormatDate(from), models.FormatDate(to))

	params := url.Values{}
	params.Set("adjusted", "true")
	if p.Sort != "" {
		params.Set("sort", p.Sort)
	}
	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}
	if !p.From.IsZero() {
		params.Set("timestamp.gte", strconv.FormatInt(p.From.UnixMilli(), 10))
	}
	if !p.To.IsZero() {
		params.Set("timestamp.lte", strconv.FormatInt(p.To.UnixMilli(), 10))
	}

	var resp aggsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, r.toBar())
	}
	return bars, nil
}

// DailyBars returns up to days daily bars ending at asOf, newest first
func (c *Client) DailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]models.Bar, error) {
	start := asOf.AddDate(0, 0, -days)
	return c.Aggregates(ctx, ticker, "day", start, asOf, AggParams{Sort: "desc", Limit: days})
}

// CompletedDailyBars returns up to days completed daily bars, excluding asOf's session, newest first
func (c *Client) CompletedDailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]models.Bar, error) {
	start, end := models.CompletedDayRange(asOf, days)
	bars, err := c.Aggregates(ctx, ticker, "day", start, end, AggParams{Sort: "desc", Limit: days * 2})
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[:days]
	}
	return bars, nil
}

// AverageVolume is the mean daily volume over the last days calendar days
func (c *Client) AverageVolume(ctx context.Context, ticker string, days int, asOf time.Time) (float64, error) {
	bars, err := c.Aggregates(ctx, ticker, "day", asOf.AddDate(0, 0, -days), asOf, AggParams{})
	if err != nil {
		return 0, err
	}
	return meanVolume(bars), nil
}

// IntradayVolume sums the minute volumes of day
func (c *Client) IntradayVolume(ctx context.Context, ticker string, day time.Time) (int64, error) {
	bars, err := c.Aggregates(ctx, ticker, "minute", day, day, AggParams{Limit: 50000})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, b := range bars {
		total += b.Volume
	}
	return total, nil
}

// MinuteBars returns minute bars in [from, to], newest first
func (c *Client) MinuteBars(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.Bar, error) {
	return c.Aggregates(ctx, ticker, "minute", from, to, AggParams{
		Sort:  "desc",
		Limit: limit,
		From:  from,
		To:    to,
	})
}

// LastTrade fetches the most recent trade
func (c *Client) LastTrade(ctx context.Context, ticker string) (*models.Trade, error) {
	var resp lastTradeResponse
	if err := c.get(ctx, "/v2/last/trade/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, err
	}

	trade := &models.Trade{Price: resp.Results.Price}
	if ts := models.NormalizeEpoch(resp.Results.Timestamp); ts > 0 {
		trade.Timestamp = ts
		trade.ISO = time.Unix(ts, 0).UTC().Format("2006-01-02T15:04:05") + "Z"
	}
	return trade, nil
}

// LastQuote fetches the current NBBO
func (c *Client) LastQuote(ctx context.Context, ticker string) (*models.NBBO, error) {
	var resp lastQuoteResponse
	if err := c.get(ctx, "/v2/last/nbbo/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, err
	}

	r := resp.Results
	q := &models.NBBO{
		Bid:            r.BidPrice,
		BidSize:        r.BidSize,
		Ask:            r.AskPrice,
		AskSize:        r.AskSize,
		QuoteTimestamp: r.Timestamp,
	}
	if r.AskPrice != 0 && r.BidPrice != 0 {
		spread := r.AskPrice - r.BidPrice
		q.Spread = &spread
	}
	return q, nil
}

func meanVolume(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars))
}
