package models

import (
	"context"
	"time"
)

type TickerLister interface {
	ListTickers(ctx context.Context, limit int) ([]string, error)
}

type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

type NewsSource interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsItem, error)
	MarketNews(ctx context.Context, category string) ([]NewsItem, error)
}

// ReferenceSource provides the slower per-ticker data used after the basic filter
type ReferenceSource interface {
	PreviousClose(ctx context.Context, ticker string) (*PrevClose, error)
	SharesOutstanding(ctx context.Context, ticker string) (float64, error)
	AverageVolume(ctx context.Context, ticker string, days int, asOf time.Time) (float64, error)
}

// PriceSource provides trades, quotes and aggregates. Bar slices are newest first.
type PriceSource interface {
	PreviousClose(ctx context.Context, ticker string) (*PrevClose, error)
	LastTrade(ctx context.Context, ticker string) (*Trade, error)
	LastQuote(ctx context.Context, ticker string) (*NBBO, error)
	IntradayVolume(ctx context.Context, ticker string, day time.Time) (int64, error)
	CompletedDailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]Bar, error)
	DailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]Bar, error)
	MinuteBars(ctx context.Context, ticker string, from, to time.Time, limit int) ([]Bar, error)
}
