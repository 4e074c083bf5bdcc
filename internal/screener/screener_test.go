package screener

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Alias1177/Scanner/models"
)

func TestMeetsBasic(t *testing.T) {
	c := models.DefaultCriteria()
	tests := []struct {
		name      string
		price     float64
		volume    int64
		changePct float64
		expected  bool
	}{
		{"Inside range", 5, 600000, 12, true},
		{"Lower bound inclusive", 2, 500000, 10, true},
		{"Upper bound inclusive", 20, 500000, 10, true},
		{"Too cheap", 1.99, 600000, 12, false},
		{"Too expensive", 20.01, 600000, 12, false},
		{"Thin volume", 5, 499999, 12, false},
		{"Small gain", 5, 600000, 9.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := MeetsBasic(tt.price, tt.volume, tt.changePct, c)
			if got != tt.expected {
				t.Errorf("MeetsBasic() = %v (%s), want %v", got, reason, tt.expected)
			}
			if !got && reason == "" {
				t.Error("MeetsBasic() rejected without a reason")
			}
		})
	}
}

func TestMeetsMomentum(t *testing.T) {
	base := models.Candidate{
		Symbol:         "ABCD",
		Price:          8,
		ChangePct:      15,
		FloatMillions:  12,
		RelativeVolume: 6,
	}
	c := models.DefaultCriteria()

	tests := []struct {
		name     string
		mutate   func(*models.Candidate)
		criteria func(*models.Criteria)
		expected bool
	}{
		{"All thresholds hold", nil, nil, true},
		{"Float at limit", func(s *models.Candidate) { s.FloatMillions = 20 }, nil, true},
		{"Float above limit", func(s *models.Candidate) { s.FloatMillions = 20.1 }, nil, false},
		{"Unknown float", func(s *models.Candidate) { s.FloatMillions = models.UnknownFloatMillions }, nil, false},
		{"Relative volume at limit", func(s *models.Candidate) { s.RelativeVolume = 5 }, nil, true},
		{"Relative volume low", func(s *models.Candidate) { s.RelativeVolume = 4.9 }, nil, false},
		{"Gain too small", func(s *models.Candidate) { s.ChangePct = 9 }, nil, false},
		{"Price out of range", func(s *models.Candidate) { s.Price = 25 }, nil, false},
		{"Catalyst required and missing", nil, func(c *models.Criteria) { c.RequireCatalyst = true }, false},
		{"Catalyst required and present", func(s *models.Candidate) { s.HasCatalyst = true }, func(c *models.Criteria) { c.RequireCatalyst = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, cr := base, c
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			if tt.criteria != nil {
				tt.criteria(&cr)
			}
			if got, reason := MeetsMomentum(s, cr); got != tt.expected {
				t.Errorf("MeetsMomentum() = %v (%s), want %v", got, reason, tt.expected)
			}
		})
	}
}

func TestSortByChangeAndLimit(t *testing.T) {
	stocks := []models.Candidate{
		{Symbol: "BBB", ChangePct: 12},
		{Symbol: "AAA", ChangePct: 30},
		{Symbol: "DDD", ChangePct: 12},
		{Symbol: "CCC", ChangePct: 18},
	}
	SortByChange(stocks)

	want := []string{"AAA", "CCC", "BBB", "DDD"}
	for i, w := range want {
		if stocks[i].Symbol != w {
			t.Errorf("SortByChange()[%d] = %s, want %s", i, stocks[i].Symbol, w)
		}
	}

	if got := Limit(stocks, 2); len(got) != 2 || got[1].Symbol != "CCC" {
		t.Errorf("Limit(2) = %+v", got)
	}
	if got := Limit(stocks, 0); len(got) != 4 {
		t.Errorf("Limit(0) returned %d, want 4", len(got))
	}
	if got := Limit(stocks, 10); len(got) != 4 {
		t.Errorf("Limit(10) returned %d, want 4", len(got))
	}
}

func TestDetectCatalyst(t *testing.T) {
	tests := []struct {
		name     string
		news     []models.NewsItem
		expected bool
	}{
		{"No news", nil, false},
		{"Headline keyword", []models.NewsItem{{Headline: "Company Receives FDA Approval"}}, true},
		{"Summary keyword", []models.NewsItem{{Headline: "Update", Summary: "Quarterly EARNINGS ahead"}}, true},
		{"Nothing relevant", []models.NewsItem{{Headline: "CEO interview", Summary: "A chat about culture"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCatalyst(tt.news); got != tt.expected {
				t.Errorf("DetectCatalyst() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	c := models.DefaultCriteria()
	if err := Validate(c); err != nil {
		t.Errorf("Validate(defaults) error = %v", err)
	}
	c.MaxPrice = 1
	if err := Validate(c); err == nil {
		t.Error("Validate() accepted max price below min price")
	}

	tests := []struct {
		name   string
		mutate func(c *models.Criteria)
	}{
		{"NaN min change", func(c *models.Criteria) { c.MinChangePct = math.NaN() }},
		{"NaN max float", func(c *models.Criteria) { c.MaxFloatMillions = math.NaN() }},
		{"Inf max price", func(c *models.Criteria) { c.MaxPrice = math.Inf(1) }},
		{"-Inf min relative volume", func(c *models.Criteria) { c.MinRelativeVolume = math.Inf(-1) }},
		{"NaN min price", func(c *models.Criteria) { c.MinPrice = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.DefaultCriteria()
			tt.mutate(&c)
			if err := Validate(c); err == nil {
				t.Errorf("Validate(%+v) accepted a non-finite threshold", c)
			}
		})
	}
}

type fakeMarket struct {
	tickers []string
	quotes  map[string]models.Quote
	prev    map[string]models.PrevClose
	shares  map[string]float64
	avgVol  map[string]float64
	news    map[string][]models.NewsItem
	failFor string
}

func (f *fakeMarket) ListTickers(ctx context.Context, limit int) ([]string, error) {
	if limit < len(f.tickers) {
		return f.tickers[:limit], nil
	}
	return f.tickers, nil
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if symbol == f.failFor {
		return nil, errors.New("boom")
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return &models.Quote{}, nil
	}
	return &q, nil
}

func (f *fakeMarket) PreviousClose(ctx context.Context, ticker string) (*models.PrevClose, error) {
	p, ok := f.prev[ticker]
	if !ok {
		return &models.PrevClose{Ticker: ticker}, nil
	}
	p.Found = true
	return &p, nil
}

func (f *fakeMarket) SharesOutstanding(ctx context.Context, ticker string) (float64, error) {
	return f.shares[ticker], nil
}

func (f *fakeMarket) AverageVolume(ctx context.Context, ticker string, days int, asOf time.Time) (float64, error) {
	return f.avgVol[ticker], nil
}

func (f *fakeMarket) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	return f.news[symbol], nil
}

func (f *fakeMarket) MarketNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	return nil, nil
}

type fixedVolume float64

func (v fixedVolume) AverageVolume(ctx context.Context, symbol string, days int, asOf time.Time) (float64, error) {
	return float64(v), nil
}

func newFakeScreener(f *fakeMarket, fallback VolumeSource) *Screener {
	return New(Options{
		Tickers:        f,
		Quotes:         f,
		Reference:      f,
		News:           f,
		FallbackVolume: fallback,
		Workers:        3,
		Clock:          func() time.Time { return time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC) },
	})
}

func TestScreen(t *testing.T) {
	f := &fakeMarket{
		tickers: []string{"WIN", "BIG", "DEAR", "FLOAT", "ERR", "NOQ", "SLOW"},
		quotes: map[string]models.Quote{
			"WIN":   {Current: 6.0, High: 6.2, Low: 5.1, Open: 5.2},
			"BIG":   {Current: 12.0},
			"DEAR":  {Current: 45.0},
			"FLOAT": {Current: 5.5},
			"SLOW":  {Current: 3.6},
		},
		prev: map[string]models.PrevClose{
			"WIN":   {Close: 5.0, Volume: 2_000_000},
			"BIG":   {Close: 8.0, Volume: 3_000_000},
			"DEAR":  {Close: 30.0, Volume: 3_000_000},
			"FLOAT": {Close: 5.0, Volume: 3_000_000},
			"SLOW":  {Close: 3.0, Volume: 900_000},
		},
		shares: map[string]float64{
			"WIN":   8_000_000,
			"BIG":   15_000_000,
			"FLOAT": 80_000_000,
			"SLOW":  5_000_000,
		},
		avgVol: map[string]float64{
			"WIN":   200_000,
			"BIG":   300_000,
			"FLOAT": 100_000,
			"SLOW":  0,
		},
		news: map[string][]models.NewsItem{
			"WIN": {{Headline: "WIN announces merger"}, {Headline: "Other"}},
		},
		failFor: "ERR",
	}

	got, err := newFakeScreener(f, nil).Screen(context.Background(), models.DefaultCriteria())
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Screen() returned %d candidates, want 2: %+v", len(got), got)
	}
	// BIG is up 50%, WIN 20%
	if got[0].Symbol != "BIG" || got[1].Symbol != "WIN" {
		t.Errorf("Screen() order = %s, %s; want BIG, WIN", got[0].Symbol, got[1].Symbol)
	}

	win := got[1]
	if win.FloatMillions != 8 || win.RelativeVolume != 10 {
		t.Errorf("WIN float/rvol = %v/%v, want 8/10", win.FloatMillions, win.RelativeVolume)
	}
	if !win.HasCatalyst || win.NewsCount != 2 {
		t.Errorf("WIN catalyst/news = %v/%d, want true/2", win.HasCatalyst, win.NewsCount)
	}
	if win.High != 6.2 || win.Open != 5.2 {
		t.Errorf("WIN quote fields not carried: %+v", win)
	}
}

func TestScreenUsesFallbackVolume(t *testing.T) {
	f := &fakeMarket{
		tickers: []string{"SLOW"},
		quotes:  map[string]models.Quote{"SLOW": {Current: 3.6}},
		prev:    map[string]models.PrevClose{"SLOW": {Close: 3.0, Volume: 900_000}},
		shares:  map[string]float64{"SLOW": 5_000_000},
		avgVol:  map[string]float64{},
	}

	got, err := newFakeScreener(f, fixedVolume(100_000)).Screen(context.Background(), models.DefaultCriteria())
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if len(got) != 1 || got[0].RelativeVolume != 9 {
		t.Errorf("Screen() = %+v, want SLOW at 9x", got)
	}
}

func TestScreenAppliesLimit(t *testing.T) {
	f := &fakeMarket{
		tickers: []string{"A", "B", "C"},
		quotes:  map[string]models.Quote{"A": {Current: 6}, "B": {Current: 7}, "C": {Current: 8}},
		prev: map[string]models.PrevClose{
			"A": {Close: 5, Volume: 1_000_000},
			"B": {Close: 5, Volume: 1_000_000},
			"C": {Close: 5, Volume: 1_000_000},
		},
		shares: map[string]float64{"A": 1e6, "B": 1e6, "C": 1e6},
		avgVol: map[string]float64{"A": 1e5, "B": 1e5, "C": 1e5},
	}
	c := models.DefaultCriteria()
	c.Limit = 2

	got, err := newFakeScreener(f, nil).Screen(context.Background(), c)
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "C" || got[1].Symbol != "B" {
		t.Errorf("Screen() = %+v, want C then B", got)
	}
}
