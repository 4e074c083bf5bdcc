package news

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/Scanner/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		n        int
		expected string
	}{
		{"Short", "hello", 10, "hello"},
		{"Exact", "hello", 5, "hello"},
		{"Long", "hello world", 5, "hello..."},
		{"Runes", "привет мир", 6, "привет..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.expected {
				t.Errorf("Truncate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractSymbols(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"Cashtags", "$gme and $AMC squeeze", []string{"GME", "AMC"}},
		{"Common symbols", "Nvda and aapl rally while XYZ lags", []string{"NVDA", "AAPL"}},
		{"Deduplicated", "$TSLA up, TSLA again", []string{"TSLA"}},
		{"Capped at five", "$AA $BB $CC $DD $EE $FF", []string{"AA", "BB", "CC", "DD", "EE"}},
		{"Nothing", "markets were quiet", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSymbols(tt.text); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractSymbols() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormatMarket(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	items := make([]models.NewsItem, 20)
	for i := range items {
		items[i] = models.NewsItem{Headline: "h", Summary: strings.Repeat("x", 250), Source: "Reuters", Datetime: now}
	}
	items[0].Source = ""
	items[0].Datetime = time.Time{}

	got := FormatMarket(items, now)
	if len(got) != 15 {
		t.Fatalf("FormatMarket() returned %d, want 15", len(got))
	}
	if got[0].Source != "Unknown" || !got[0].Datetime.Equal(now) {
		t.Errorf("defaults not applied: %+v", got[0])
	}
	if len(got[1].Summary) != 203 {
		t.Errorf("summary length = %d, want 203", len(got[1].Summary))
	}
}

func TestRecent(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	items := []models.NewsItem{
		{Headline: "$PLTR wins contract", Datetime: now.Add(-30 * time.Minute)},
		{Headline: "Old news", Datetime: now.Add(-3 * time.Hour)},
	}
	got := Recent(items, now.Add(-RecentWindow))
	if len(got) != 1 {
		t.Fatalf("Recent() returned %d, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0].RelatedSymbols, []string{"PLTR"}) {
		t.Errorf("RelatedSymbols = %v, want [PLTR]", got[0].RelatedSymbols)
	}
}

func TestMentions(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	recent := now.Add(-10 * time.Minute)
	items := []models.NewsItem{
		{Headline: "abcd surges on deal", Datetime: recent},
		{Headline: "Market wrap", Summary: "$ABCD leads small caps", Datetime: recent},
		{Headline: "ABCD again", Datetime: recent},
		{Headline: "ABCD fourth", Datetime: recent},
		{Headline: "ABCD stale", Datetime: now.Add(-5 * time.Hour)},
		{Headline: "Unrelated", Datetime: recent},
	}

	got := Mentions("abcd", items, now.Add(-RecentWindow))
	if got.Ticker != "ABCD" || !got.HasRecentNews {
		t.Errorf("Mentions() = %+v", got)
	}
	if got.NewsCount != 4 {
		t.Errorf("NewsCount = %d, want 4", got.NewsCount)
	}
	if len(got.Articles) != 3 {
		t.Errorf("Articles = %d, want 3", len(got.Articles))
	}

	none := Mentions("ZZZZ", items, now.Add(-RecentWindow))
	if none.HasRecentNews || none.NewsCount != 0 || none.Articles == nil {
		t.Errorf("Mentions(ZZZZ) = %+v", none)
	}
}

type fakeSource struct {
	items []models.NewsItem
	err   error
}

func (f fakeSource) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	return nil, f.err
}

func (f fakeSource) MarketNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	if category != GeneralCategory {
		return nil, errors.New("unexpected category " + category)
	}
	return f.items, f.err
}

func TestServiceMentions(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	src := fakeSource{items: []models.NewsItem{{Headline: "TSLA jumps", Datetime: now.Add(-time.Minute)}}}
	svc := NewService(src, func() time.Time { return now })

	report, err := svc.Mentions(context.Background(), "tsla")
	if err != nil {
		t.Fatalf("Mentions() error = %v", err)
	}
	if report.NewsCount != 1 {
		t.Errorf("NewsCount = %d, want 1", report.NewsCount)
	}

	failing := NewService(fakeSource{err: errors.New("down")}, nil)
	if _, err := failing.Market(context.Background()); err == nil {
		t.Error("Market() expected error")
	}
}
