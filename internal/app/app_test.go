package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alias1177/Scanner/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			SetupLogging(tt.in)
			if got := log.Logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHitStoreWithoutDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		LogsDir:   filepath.Join(dir, "logs"),
		BackupDir: filepath.Join(dir, "backups"),
		Timezone:  "UTC",
	}

	store, db, err := HitStore(context.Background(), cfg, Clock(cfg))
	if err != nil {
		t.Fatalf("HitStore() error = %v", err)
	}
	if db != nil {
		t.Error("db should be nil without DB_HOST")
	}
	if store == nil {
		t.Fatal("store is nil")
	}
	for _, d := range []string{cfg.LogsDir, cfg.BackupDir} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("%s not created: %v", d, err)
		}
	}
}
