package hitlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Alias1177/Scanner/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	archiveDirName   = "archive"
	filePrefix       = "scanner_hits_"
	fileSuffix       = ".json"
	defaultRetention = 30 * 24 * time.Hour
	detailedHitLimit = 50

	scannerCriteria = "$2-$20 range, 5%+ minute moves OR breaking news, 10x+ volume"
)

// HitRepository is permanent storage for hits and daily summaries
type HitRepository interface {
	SaveHit(ctx context.Context, hit models.Hit) error
	SaveDailySummary(ctx context.Context, date string, summary models.DailySummary) error
}

// Alerter is told about every logged hit
type Alerter interface {
	NotifyHit(ctx context.Context, hit models.Hit) error
}

// Uploader ships an archived daily log somewhere off-box
type Uploader interface {
	Upload(ctx context.Context, date string, payload []byte) error
}

// StoreOptions configures a Store. Repository, Alerter and Uploader are optional.
type StoreOptions struct {
	LogsDir    string
	BackupDir  string
	Repository HitRepository
	Alerter    Alerter
	Uploader   Uploader
	Retention  time.Duration
	Clock      func() time.Time
}

// Store keeps one JSON log file per day
type Store struct {
	logsDir   string
	backupDir string
	repo      HitRepository
	alerter   Alerter
	uploader  Uploader
	retention time.Duration
	now       func() time.Time
	mu        sync.Mutex
	logger    zerolog.Logger
}

// NewStore creates the log and backup directories if needed
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.LogsDir == "" {
		opts.LogsDir = "scanner_logs"
	}
	if opts.BackupDir == "" {
		opts.BackupDir = "scanner_backups"
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	for _, dir := range []string{opts.LogsDir, opts.BackupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return &Store{
		logsDir:   opts.LogsDir,
		backupDir: opts.BackupDir,
		repo:      opts.Repository,
		alerter:   opts.Alerter,
		uploader:  opts.Uploader,
		retention: opts.Retention,
		now:       opts.Clock,
		logger:    log.With().Str("component", "hitlog").Logger(),
	}, nil
}

func fileName(date string) string {
	return filePrefix + date + fileSuffix
}

func (s *Store) dailyPath(date string) string {
	return filepath.Join(s.logsDir, fileName(date))
}

func (s *Store) archivePath(date string) string {
	return filepath.Join(s.logsDir, archiveDirName, fileName(date))
}

func newDailyLog(now time.Time) *models.DailyLog {
	return &models.DailyLog{
		Metadata: models.LogMetadata{
			Date:        models.FormatDate(now),
			LogVersion:  "2.0",
			Purpose:     "Stock scanner trigger logs for pattern analysis",
			ScannerType: "breakout_and_news_momentum",
			CreatedAt:   now,
			Timezone:    now.Location().String(),
			Criteria: models.LogCriteria{
				PriceRange:    "$2-$20",
				Triggers:      []string{"5%+ moves in <1 minute", "breaking news mentions", "10x+ volume spikes"},
				ScanFrequency: "every 30 seconds",
			},
		},
		Summary: emptySummary(),
		Hits:    []models.Hit{},
	}
}

func emptySummary() models.DailySummary {
	return models.DailySummary{
		UniqueTickers: []string{},
		TriggerTypes: map[string]int{
			models.TriggerMinuteBreakout:  0,
			models.TriggerBreakingNews:    0,
			models.TriggerVolumeSpike:     0,
			models.TriggerBreakoutAndNews: 0,
		},
		PriceRanges: map[string]int{
			"under_5":  0,
			"5_to_10":  0,
			"10_to_15": 0,
			"15_to_20": 0,
		},
	}
}

// NewHit builds a classified hit entry. hitID is 1-based within the day.
func NewHit(hitID int, ticker string, td models.TriggerData, now time.Time) models.Hit {
	trigger := td.TriggerType
	if trigger == "" {
		trigger = models.TriggerUnknown
	}

	return models.Hit{
		HitID:         hitID,
		Timestamp:     now,
		TimeReadable:  now.Format("2006-01-02 15:04:05 MST"),
		MarketSession: MarketSession(now),
		StockData: models.StockData{
			Ticker:         strings.ToUpper(ticker),
			Price:          roundedOrNil(td.Price),
			PriceChangePct: roundedOrNil(td.ChangePct),
			PriceCategory:  PriceCategory(td.Price),
			Volume:         td.Volume,
			RelativeVolume: roundedOrNil(td.RelVolume),
			VolumeCategory: VolumeCategory(td.RelVolume),
			MomentumScore:  td.MomentumScore,
		},
		TriggerAnalysis: models.TriggerAnalysis{
			PrimaryTrigger:     trigger,
			TriggerDescription: TriggerDescription(trigger),
			BreakoutDetected:   td.BreakoutDetected,
			NewsDetected:       td.NewsDetected,
			SignalStrength:     SignalStrength(td),
			RiskLevel:          RiskLevel(td.Price, td.ChangePct, td.RelVolume),
		},
		Context: models.HitContext{
			ScannerCriteria:  scannerCriteria,
			MarketConditions: "Real-time breakout and news scanner",
			ScanFrequency:    "Every 30 seconds",
		},
	}
}

// UpdateSummary folds hit into summary. Averages are running pairs,
// (previous + new) / 2, not true means.
func UpdateSummary(summary *models.DailySummary, hit models.Hit) {
	summary.TotalHits++

	ticker := hit.StockData.Ticker
	known := false
	for _, t := range summary.UniqueTickers {
		if t == ticker {
			known = true
			break
		}
	}
	if !known {
		summary.UniqueTickers = append(summary.UniqueTickers, ticker)
	}

	if _, ok := summary.TriggerTypes[hit.TriggerAnalysis.PrimaryTrigger]; ok {
		summary.TriggerTypes[hit.TriggerAnalysis.PrimaryTrigger]++
	}

	if p := hit.StockData.Price; p != nil && *p != 0 {
		summary.PriceRanges[PriceRange(*p)]++
	}

	perf := &summary.Performance
	if c := hit.StockData.PriceChangePct; c != nil {
		change := math.Abs(*c)
		perf.AvgChangePct = (perf.AvgChangePct + change) / 2
		perf.MaxChangePct = math.Max(perf.MaxChangePct, change)
	}
	if v := hit.StockData.RelativeVolume; v != nil {
		perf.AvgVolumeSpike = (perf.AvgVolumeSpike + *v) / 2
		perf.MaxVolumeSpike = math.Max(perf.MaxVolumeSpike, *v)
	}
}

// Log appends a hit for ticker to today's file, then hands it to the
// repository and alerter. Their failures are logged, not returned.
func (s *Store) Log(ctx context.Context, ticker string, td models.TriggerData) (*models.Hit, error) {
	s.mu.Lock()
	now := s.now()
	date := models.FormatDate(now)
	path := s.dailyPath(date)

	daily, err := readDailyLog(path)
	if errors.Is(err, os.ErrNotExist) {
		daily, err = newDailyLog(now), nil
	}
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	hit := NewHit(len(daily.Hits)+1, ticker, td, now)
	daily.Hits = append(daily.Hits, hit)
	UpdateSummary(&daily.Summary, hit)

	err = writeJSON(path, daily)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", path, err)
	}

	s.logger.Info().
		Str("ticker", hit.StockData.Ticker).
		Str("trigger", hit.TriggerAnalysis.PrimaryTrigger).
		Int("hit_id", hit.HitID).
		Msg("Scanner hit logged")

	if s.repo != nil {
		if err := s.repo.SaveHit(ctx, hit); err != nil {
			s.logger.Error().Err(err).Str("ticker", hit.StockData.Ticker).Msg("Error saving hit to database")
		}
	}
	if s.alerter != nil {
		if err := s.alerter.NotifyHit(ctx, hit); err != nil {
			s.logger.Error().Err(err).Str("ticker", hit.StockData.Ticker).Msg("Error sending hit alert")
		}
	}
	return &hit, nil
}

// Summary returns the day's report from the live file, then the archive.
// An empty date means today; a day without a file yields an empty report.
func (s *Store) Summary(date string) (*models.DayReport, error) {
	if date == "" {
		date = models.FormatDate(s.now())
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	daily, err := readDailyLog(s.dailyPath(date))
	if errors.Is(err, os.ErrNotExist) {
		daily, err = readDailyLog(s.archivePath(date))
	}
	if errors.Is(err, os.ErrNotExist) {
		return &models.DayReport{Date: date, Hits: []models.Hit{}}, nil
	}
	if err != nil {
		return nil, err
	}

	perf := daily.Summary.Performance
	meta := daily.Metadata
	hits := daily.Hits
	if hits == nil {
		hits = []models.Hit{}
	}
	return &models.DayReport{
		Date:          date,
		TotalHits:     daily.Summary.TotalHits,
		UniqueTickers: len(daily.Summary.UniqueTickers),
		TriggerTypes:  daily.Summary.TriggerTypes,
		PriceRanges:   daily.Summary.PriceRanges,
		Performance:   &perf,
		Hits:          hits,
		Metadata:      &meta,
	}, nil
}

// Archive moves yesterday's log into the archive, prunes archives past
// retention, copies the archived file to the backup directory and pushes
// its summary to the repository and uploader.
func (s *Store) Archive(ctx context.Context) error {
	now := s.now()
	yesterday := models.FormatDate(now.AddDate(0, 0, -1))
	archiveDir := filepath.Join(s.logsDir, archiveDirName)

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.dailyPath(yesterday)
	if _, err := os.Stat(src); err == nil {
		if err := os.MkdirAll(archiveDir, 0o755); err != nil {
			return fmt.Errorf("creating archive dir: %w", err)
		}
		if err := os.Rename(src, s.archivePath(yesterday)); err != nil {
			return fmt.Errorf("archiving %s: %w", src, err)
		}
		s.logger.Info().Str("date", yesterday).Msg("Archived daily log")
	}

	if err := s.prune(archiveDir, now); err != nil {
		return err
	}
	return s.backup(ctx, yesterday, now)
}

func (s *Store) prune(archiveDir string, now time.Time) error {
	entries, err := os.ReadDir(archiveDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading archive dir: %w", err)
	}

	cutoff := now.Add(-s.retention)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		day, err := time.ParseInLocation(models.DateLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix), now.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(archiveDir, name)); err != nil {
				return fmt.Errorf("removing %s: %w", name, err)
			}
			s.logger.Info().Str("file", name).Msg("Removed expired archive")
		}
	}
	return nil
}

func (s *Store) backup(ctx context.Context, date string, now time.Time) error {
	archived := s.archivePath(date)
	payload, err := os.ReadFile(archived)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", archived, err)
	}

	name := fmt.Sprintf("%s%s_backup_%d%s", filePrefix, date, now.Unix(), fileSuffix)
	if err := copyFile(archived, filepath.Join(s.backupDir, name)); err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	s.logger.Info().Str("file", name).Msg("Created permanent backup")

	if s.repo != nil {
		var daily models.DailyLog
		if err := json.Unmarshal(payload, &daily); err != nil {
			s.logger.Error().Err(err).Str("date", date).Msg("Unreadable archived log")
		} else if err := s.repo.SaveDailySummary(ctx, date, daily.Summary); err != nil {
			s.logger.Error().Err(err).Str("date", date).Msg("Error saving daily summary to database")
		}
	}

	if s.uploader != nil {
		if err := s.uploader.Upload(ctx, date, payload); err != nil {
			s.logger.Error().Err(err).Str("date", date).Msg("Cloud backup failed")
		}
	}
	return nil
}

// RunArchiver archives once per interval until ctx is cancelled
func (s *Store) RunArchiver(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Archive(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Error archiving logs")
			}
		}
	}
}

// Export collects hits from date and the days-1 days before it and
// analyses them. An empty date means today.
func (s *Store) Export(date string, days int) (*models.Analysis, error) {
	now := s.now()
	if days < 1 {
		days = 1
	}
	label := date
	if date == "" {
		label = "today"
		date = models.FormatDate(now)
	}
	start, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var hits []models.Hit
	for i := 0; i < days; i++ {
		report, err := s.Summary(models.FormatDate(start.AddDate(0, 0, -i)))
		if err != nil {
			return nil, err
		}
		hits = append(hits, report.Hits...)
	}

	detailed := hits
	if len(detailed) > detailedHitLimit {
		detailed = detailed[len(detailed)-detailedHitLimit:]
	}
	if detailed == nil {
		detailed = []models.Hit{}
	}

	return &models.Analysis{
		Metadata: models.AnalysisMetadata{
			GeneratedAt:  now,
			AnalysisType: "momentum_scanner_performance",
			StartDate:    label,
			DaysAnalyzed: days,
			Purpose:      "Analyze stock scanner performance and trading opportunities",
			FocusAreas: []string{
				"Most frequent trigger types",
				"Best performing price ranges",
				"Volume spike patterns",
				"Risk assessment accuracy",
				"Market session effectiveness",
			},
		},
		SummaryStatistics: Statistics(hits),
		DetailedHits:      detailed,
		PatternAnalysis:   Patterns(hits),
	}, nil
}

// BackupCount is the number of JSON files in the backup directory
func (s *Store) BackupCount() int {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileSuffix) {
			n++
		}
	}
	return n
}

func roundedOrNil(x float64) *float64 {
	if x == 0 {
		return nil
	}
	r := round2(x)
	return &r
}

func readDailyLog(path string) (*models.DailyLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var daily models.DailyLog
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if daily.Summary.TriggerTypes == nil || daily.Summary.PriceRanges == nil {
		fresh := emptySummary()
		if daily.Summary.TriggerTypes == nil {
			daily.Summary.TriggerTypes = fresh.TriggerTypes
		}
		if daily.Summary.PriceRanges == nil {
			daily.Summary.PriceRanges = fresh.PriceRanges
		}
	}
	return &daily, nil
}

// writeJSON replaces path atomically
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
