package database

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/webrisk/internal/model"
	"github.com/nao1215/webrisk/internal/view"
)

// fakeClock returns successive minutes starting at a fixed instant.
func fakeClock() func() time.Time {
	t := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *ReportDB {
	t.Helper()

	opts := DefaultOptions()
	opts.Clock = fakeClock()
	db, err := Open(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testReport(risk float64) *model.WebsiteReport {
	return &model.WebsiteReport{
		Categories:  model.Flags{"is_torrent": true},
		RiskResult:  model.RiskResult{Risk: model.NewScore(risk)},
		GeoLocation: []string{"US"},
		Blacklists: model.BlacklistSummary{
			Detections: 1,
			Engines:    []model.BlacklistEngine{{Name: "Spamhaus", Detected: true}},
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails on missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, _, err := db.SaveReport(context.Background(), "https://example.com", testReport(10)); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		if _, err := db.LatestReport(context.Background(), "https://example.com"); err != nil {
			t.Errorf("LatestReport after reopen: %v", err)
		}
	})
}

func TestSaveReport(t *testing.T) {
	t.Parallel()

	t.Run("stores metadata and document", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := testReport(60)

		id, saved, err := db.SaveReport(ctx, "https://www.Example.com/login", report)
		if err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		if !saved || id == 0 {
			t.Fatalf("SaveReport() = %d, %v", id, saved)
		}

		rec, err := db.GetReport(ctx, id)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		if rec.Host != "www.example.com" {
			t.Errorf("Host = %q", rec.Host)
		}
		if rec.Tier != view.TierDangerous {
			t.Errorf("Tier = %q", rec.Tier)
		}
		if rec.Risk == nil || *rec.Risk != 60 {
			t.Errorf("Risk = %v", rec.Risk)
		}
		want := time.Date(2026, time.January, 2, 3, 5, 5, 0, time.UTC)
		if !rec.FetchedAt.Equal(want) {
			t.Errorf("FetchedAt = %v, want %v", rec.FetchedAt, want)
		}
		if diff := cmp.Diff(report, rec.Report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		if len(rec.ContentHash) != 64 {
			t.Errorf("ContentHash length = %d", len(rec.ContentHash))
		}
	})

	t.Run("identical report is a no-op", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		first, saved, err := db.SaveReport(ctx, "https://example.com", testReport(3))
		if err != nil || !saved {
			t.Fatalf("first SaveReport() = %v, %v", saved, err)
		}
		second, saved, err := db.SaveReport(ctx, "https://example.com", testReport(3))
		if err != nil {
			t.Fatalf("second SaveReport: %v", err)
		}
		if saved {
			t.Error("expected identical report to be skipped")
		}
		if second != first {
			t.Errorf("id = %d, want existing %d", second, first)
		}

		history, err := db.History(ctx, "https://example.com", 0)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(history) != 1 {
			t.Errorf("History length = %d, want 1", len(history))
		}
	})

	t.Run("same report for another url is stored", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if _, _, err := db.SaveReport(ctx, "https://a.example", testReport(3)); err != nil {
			t.Fatal(err)
		}
		if _, saved, err := db.SaveReport(ctx, "https://b.example", testReport(3)); err != nil || !saved {
			t.Errorf("SaveReport() = %v, %v", saved, err)
		}
	})

	t.Run("unknown risk stored as null", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		id, _, err := db.SaveReport(ctx, "https://example.com", &model.WebsiteReport{})
		if err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		rec, err := db.GetReport(ctx, id)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		if rec.Risk != nil {
			t.Errorf("Risk = %v, want nil", *rec.Risk)
		}
		if rec.Tier != view.TierUnknown {
			t.Errorf("Tier = %q", rec.Tier)
		}
	})

	t.Run("infinite risk stored as unknown", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := &model.WebsiteReport{
			RiskResult: model.RiskResult{Risk: model.Score{Value: math.Inf(1), Valid: true}},
		}
		id, _, err := db.SaveReport(ctx, "https://example.com", report)
		if err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		rec, err := db.GetReport(ctx, id)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		if rec.Risk != nil {
			t.Errorf("Risk = %v, want nil", *rec.Risk)
		}
		if rec.Tier != view.TierUnknown {
			t.Errorf("Tier = %q, want unknown", rec.Tier)
		}
		if got := view.ClassifyRisk(rec.Report.RiskResult.Risk); got != rec.Tier {
			t.Errorf("reloaded report classifies as %q, stored tier %q", got, rec.Tier)
		}
	})

	t.Run("concurrent saves of one report store a single row", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			saves int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, saved, err := db.SaveReport(ctx, "https://example.com", testReport(42))
				if err != nil {
					t.Errorf("SaveReport: %v", err)
					return
				}
				if saved {
					mu.Lock()
					saves++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if saves != 1 {
			t.Errorf("saved %d times, want 1", saves)
		}
		history, err := db.History(ctx, "https://example.com", 0)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(history) != 1 {
			t.Errorf("History length = %d, want 1", len(history))
		}
	})
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	a, _, err := ContentHash(testReport(10))
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := ContentHash(testReport(10))
	if err != nil {
		t.Fatal(err)
	}
	c, _, err := ContentHash(testReport(11))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("equal reports must hash equally")
	}
	if a == c {
		t.Error("different reports must hash differently")
	}
}

func TestLatestReportAndHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	url := "https://example.com"

	for _, risk := range []float64{10, 20, 30} {
		if _, _, err := db.SaveReport(ctx, url, testReport(risk)); err != nil {
			t.Fatalf("SaveReport(%v): %v", risk, err)
		}
	}
	if _, _, err := db.SaveReport(ctx, "https://other.example.org", testReport(80)); err != nil {
		t.Fatal(err)
	}

	t.Run("latest", func(t *testing.T) {
		t.Parallel()

		rec, err := db.LatestReport(ctx, url)
		if err != nil {
			t.Fatalf("LatestReport: %v", err)
		}
		if rec.Risk == nil || *rec.Risk != 30 {
			t.Errorf("Risk = %v, want 30", rec.Risk)
		}
	})

	t.Run("latest missing", func(t *testing.T) {
		t.Parallel()

		if _, err := db.LatestReport(ctx, "https://absent.example"); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		if _, err := db.GetReport(ctx, 999); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("history newest first", func(t *testing.T) {
		t.Parallel()

		history, err := db.History(ctx, url, 0)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		var risks []float64
		for _, h := range history {
			risks = append(risks, *h.Risk)
		}
		if diff := cmp.Diff([]float64{30, 20, 10}, risks); diff != "" {
			t.Errorf("history order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("history limit and all urls", func(t *testing.T) {
		t.Parallel()

		history, err := db.History(ctx, "", 2)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("History length = %d, want 2", len(history))
		}
		if history[0].URL != "https://other.example.org" {
			t.Errorf("newest URL = %q", history[0].URL)
		}
	})

	t.Run("list hosts", func(t *testing.T) {
		t.Parallel()

		hosts, err := db.ListHosts(ctx)
		if err != nil {
			t.Fatalf("ListHosts: %v", err)
		}
		want := []HostSummary{
			{Host: "example.com", Reports: 3, LastFetched: time.Date(2026, time.January, 2, 3, 7, 5, 0, time.UTC)},
			{Host: "other.example.org", Reports: 1, LastFetched: time.Date(2026, time.January, 2, 3, 8, 5, 0, time.UTC)},
		}
		if diff := cmp.Diff(want, hosts); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2026-01-02T03:04:05.000000000Z", want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{in: "2026-01-02 03:04:05", want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{in: "garbage", want: time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
