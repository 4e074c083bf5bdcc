package polygon

import (
	"time"

	"github.com/Alias1177/Scanner/models"
)

type tickersResponse struct {
	Status  string `json:"status"`
	NextURL string `json:"next_url"`
	Results []struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
		Market string `json:"market"`
		Active bool   `json:"active"`
	} `json:"results"`
}

// TickerDetails is the subset of /v3/reference/tickers/{ticker} the scanner uses
type TickerDetails struct {
	Ticker                      string  `json:"ticker"`
	Name                        string  `json:"name"`
	Market                      string  `json:"market"`
	MarketCap                   float64 `json:"market_cap"`
	ShareClassSharesOutstanding float64 `json:"share_class_shares_outstanding"`
	WeightedSharesOutstanding   float64 `json:"weighted_shares_outstanding"`
}

type tickerDetailsResponse struct {
	Status  string        `json:"status"`
	Results TickerDetails `json:"results"`
}

type aggResult struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"` // sometimes fractional
	VWAP      float64 `json:"vw"`
	Timestamp int64   `json:"t"` // ms
}

func (r aggResult) toBar() models.Bar {
	return models.Bar{
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    int64(r.Volume),
		VWAP:      r.VWAP,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
	}
}

type aggsResponse struct {
	Ticker       string      `json:"ticker"`
	Status       string      `json:"status"`
	ResultsCount int         `json:"resultsCount"`
	Results      []aggResult `json:"results"`
}

type lastTradeResponse struct {
	Status  string `json:"status"`
	Results struct {
		Price     float64 `json:"p"`
		Size      float64 `json:"s"`
		Timestamp int64   `json:"t"`
	} `json:"results"`
}

// NBBO keys differ only by case; encoding/json prefers the exact match
type lastQuoteResponse struct {
	Status  string `json:"status"`
	Results struct {
		AskPrice  float64 `json:"P"`
		AskSize   float64 `json:"S"`
		BidPrice  float64 `json:"p"`
		BidSize   float64 `json:"s"`
		Timestamp int64   `json:"t"`
	} `json:"results"`
}
