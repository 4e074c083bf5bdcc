package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/Scanner/internal/news"
	"github.com/Alias1177/Scanner/models"
)

type fakePrices struct {
	bars map[string][]models.Bar
}

func (f *fakePrices) PreviousClose(ctx context.Context, ticker string) (*models.PrevClose, error) {
	return nil, errors.New("not used")
}

func (f *fakePrices) LastTrade(ctx context.Context, ticker string) (*models.Trade, error) {
	return nil, errors.New("not used")
}

func (f *fakePrices) LastQuote(ctx context.Context, ticker string) (*models.NBBO, error) {
	return nil, errors.New("not used")
}

func (f *fakePrices) IntradayVolume(ctx context.Context, ticker string, day time.Time) (int64, error) {
	return 0, nil
}

func (f *fakePrices) CompletedDailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (f *fakePrices) DailyBars(ctx context.Context, ticker string, days int, asOf time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (f *fakePrices) MinuteBars(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.Bar, error) {
	bars, ok := f.bars[ticker]
	if !ok {
		return nil, errors.New("no bars")
	}
	return bars, nil
}

type fakeMetrics map[string]*models.Metrics

func (f fakeMetrics) For(ctx context.Context, ticker string) *models.Metrics {
	if m, ok := f[ticker]; ok {
		return m
	}
	return &models.Metrics{Ticker: ticker}
}

type fakeNews map[string]bool

func (f fakeNews) Mentions(ctx context.Context, ticker string) (news.MentionReport, error) {
	if f[ticker] {
		return news.MentionReport{Ticker: ticker, HasRecentNews: true, NewsCount: 1}, nil
	}
	return news.MentionReport{Ticker: ticker}, nil
}

type recordingHits struct {
	logged []models.TriggerData
	fail   bool
}

func (r *recordingHits) Log(ctx context.Context, ticker string, td models.TriggerData) (*models.Hit, error) {
	if r.fail {
		return nil, errors.New("disk full")
	}
	r.logged = append(r.logged, td)
	return &models.Hit{HitID: len(r.logged), StockData: models.StockData{Ticker: ticker}}, nil
}

func ptr[T any](v T) *T { return &v }

// flat bars never fire
var flatBars = []models.Bar{{Close: 5, Volume: 100}, {Close: 5, Volume: 100}, {Close: 5, Volume: 100}}

func jumpBars(from, to float64) []models.Bar {
	return []models.Bar{{Close: to, Volume: 100}, {Close: from, Volume: 100}, {Close: from, Volume: 100}}
}

func TestCheck(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		bars        []models.Bar
		metrics     *models.Metrics
		news        bool
		wantOK      bool
		wantTrigger string
	}{
		{
			name:        "Minute breakout",
			bars:        jumpBars(10, 10.6),
			wantOK:      true,
			wantTrigger: models.TriggerMinuteBreakout,
		},
		{
			name:        "Breakout and news",
			bars:        jumpBars(10, 10.6),
			news:        true,
			wantOK:      true,
			wantTrigger: models.TriggerBreakoutAndNews,
		},
		{
			name:        "News only",
			bars:        flatBars,
			news:        true,
			wantOK:      true,
			wantTrigger: models.TriggerBreakingNews,
		},
		{
			name:        "Volume spike from metrics",
			bars:        flatBars,
			metrics:     &models.Metrics{LastPrice: ptr(5.0), RelVolume: ptr(12.0)},
			wantOK:      true,
			wantTrigger: models.TriggerVolumeSpike,
		},
		{
			name:   "Nothing fired",
			bars:   flatBars,
			wantOK: false,
		},
		{
			name:   "Breakout above price range",
			bars:   jumpBars(40, 44),
			wantOK: false,
		},
		{
			name:    "Metrics price wins over bar price",
			bars:    jumpBars(10, 10.6),
			metrics: &models.Metrics{LastPrice: ptr(1.5)},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fakeMetrics{}
			if tt.metrics != nil {
				m["ABCD"] = tt.metrics
			}
			s := New(Options{
				Prices:  &fakePrices{bars: map[string][]models.Bar{"ABCD": tt.bars}},
				Metrics: m,
				News:    fakeNews{"ABCD": tt.news},
				Hits:    &recordingHits{},
				Clock:   func() time.Time { return now },
			})

			td, ok := s.Check(context.Background(), "ABCD")
			if ok != tt.wantOK {
				t.Fatalf("Check() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && td.TriggerType != tt.wantTrigger {
				t.Errorf("TriggerType = %q, want %q", td.TriggerType, tt.wantTrigger)
			}
		})
	}
}

func TestScanOnceCooldown(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	hits := &recordingHits{}
	s := New(Options{
		Prices: &fakePrices{bars: map[string][]models.Bar{
			"ABCD": jumpBars(10, 10.6),
			"WXYZ": flatBars,
		}},
		Metrics:   fakeMetrics{},
		News:      fakeNews{},
		Hits:      hits,
		Watchlist: []string{" abcd", "wxyz", "", "MISSING"},
		Cooldown:  15 * time.Minute,
		Clock:     func() time.Time { return now },
	})

	if got := s.ScanOnce(context.Background()); len(got) != 1 || got[0].StockData.Ticker != "ABCD" {
		t.Fatalf("first scan = %+v, want one ABCD hit", got)
	}

	now = now.Add(5 * time.Minute)
	if got := s.ScanOnce(context.Background()); len(got) != 0 {
		t.Errorf("scan inside cooldown logged %d hits", len(got))
	}

	now = now.Add(15 * time.Minute)
	if got := s.ScanOnce(context.Background()); len(got) != 1 {
		t.Errorf("scan after cooldown logged %d hits, want 1", len(got))
	}
	if len(hits.logged) != 2 {
		t.Errorf("logged %d hits, want 2", len(hits.logged))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Options{
		Prices:  &fakePrices{},
		Metrics: fakeMetrics{},
		News:    fakeNews{},
		Hits:    &recordingHits{},
	})

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestScanOnceFailedLogKeepsTickerEligible(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	hits := &recordingHits{fail: true}
	s := New(Options{
		Prices:    &fakePrices{bars: map[string][]models.Bar{"ABCD": jumpBars(10, 10.6)}},
		Metrics:   fakeMetrics{},
		News:      fakeNews{},
		Hits:      hits,
		Watchlist: []string{"ABCD"},
		Cooldown:  15 * time.Minute,
		Clock:     func() time.Time { return now },
	})

	if got := s.ScanOnce(context.Background()); len(got) != 0 {
		t.Fatalf("failed log returned %d hits", len(got))
	}

	hits.fail = false
	now = now.Add(time.Minute)
	if got := s.ScanOnce(context.Background()); len(got) != 1 {
		t.Errorf("scan after failed log returned %d hits, want 1", len(got))
	}
}

func TestReleaseRestoresPreviousHit(t *testing.T) {
	now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	s := New(Options{Cooldown: 15 * time.Minute, Clock: func() time.Time { return now }})

	if _, ok := s.claim("ABCD"); !ok {
		t.Fatal("first claim refused")
	}
	now = now.Add(20 * time.Minute)
	prev, ok := s.claim("ABCD")
	if !ok {
		t.Fatal("claim after cooldown refused")
	}
	s.release("ABCD", prev)

	now = now.Add(time.Minute)
	if _, ok := s.claim("ABCD"); !ok {
		t.Error("released claim still blocks the ticker")
	}
}

func TestRunNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		t.Run(interval.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s := New(Options{
				Prices:  &fakePrices{},
				Metrics: fakeMetrics{},
				News:    fakeNews{},
				Hits:    &recordingHits{},
			})

			done := make(chan struct{})
			go func() {
				defer close(done)
				s.Run(ctx, interval)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return")
			}
		})
	}
}
