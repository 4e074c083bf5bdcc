package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/Alias1177/Scanner/models"
)

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("POLYGON_API_KEY", "poly")
	t.Setenv("FINNHUB_API_KEY", "finn")
}

func TestLoadDefaults(t *testing.T) {
	setKeys(t)
	for _, k := range []string{"LOG_LEVEL", "PORT", "WATCHLIST", "MIN_PRICE", "DB_HOST", "TELEGRAM_BOT_TOKEN", "TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PolygonAPIKey != "poly" || cfg.FinnhubAPIKey != "finn" {
		t.Errorf("keys = %q/%q", cfg.PolygonAPIKey, cfg.FinnhubAPIKey)
	}
	if cfg.Port != "5000" || cfg.LogLevel != "info" || cfg.ScanInterval != 30 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Criteria != models.DefaultCriteria() {
		t.Errorf("Criteria = %+v, want defaults", cfg.Criteria)
	}
	if cfg.DatabaseEnabled() || cfg.TelegramEnabled() {
		t.Error("optional integrations enabled without configuration")
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	setKeys(t)
	t.Setenv("WATCHLIST", " abcd, wxyz ,,tsla")
	t.Setenv("MIN_PRICE", "1.5")
	t.Setenv("REQUIRE_CATALYST", "yes")
	t.Setenv("STOCK_LIMIT", "25")
	t.Setenv("MAX_FLOAT_MILLIONS", "not-a-number")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.Watchlist, []string{"ABCD", "WXYZ", "TSLA"}) {
		t.Errorf("Watchlist = %v", cfg.Watchlist)
	}
	if cfg.Criteria.MinPrice != 1.5 || !cfg.Criteria.RequireCatalyst || cfg.Criteria.Limit != 25 {
		t.Errorf("Criteria = %+v", cfg.Criteria)
	}
	if cfg.Criteria.MaxFloatMillions != 20 {
		t.Errorf("MaxFloatMillions = %v, want default on bad input", cfg.Criteria.MaxFloatMillions)
	}
	if !cfg.DatabaseEnabled() || !cfg.TelegramEnabled() || cfg.TelegramChatID != -100200 {
		t.Errorf("integrations = db %v, telegram %v (%d)", cfg.DatabaseEnabled(), cfg.TelegramEnabled(), cfg.TelegramChatID)
	}
}

func TestLoadScanIntervalFallsBack(t *testing.T) {
	for _, v := range []string{"0", "-5", "soon"} {
		t.Run(v, func(t *testing.T) {
			setKeys(t)
			t.Setenv("SCAN_INTERVAL", v)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.ScanInterval != 30 {
				t.Errorf("ScanInterval = %d, want 30", cfg.ScanInterval)
			}
		})
	}
}

func TestLoadRequiresKeys(t *testing.T) {
	tests := []struct {
		name    string
		polygon string
		finnhub string
	}{
		{"Missing Polygon", "", "finn"},
		{"Missing Finnhub", "poly", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POLYGON_API_KEY", tt.polygon)
			t.Setenv("FINNHUB_API_KEY", tt.finnhub)
			if _, err := Load(); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Error("Location() should fall back to UTC")
	}
	cfg.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Errorf("Location() = %v", cfg.Location())
	}
}
