package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webrisk/internal/model"
	"github.com/nao1215/webrisk/internal/view"
)

// FileName is the database file created inside the data directory.
const FileName = "webrisk.db"

// timeLayout keeps a fixed width so that fetched_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrReportNotFound is returned when no stored report matches a lookup.
var ErrReportNotFound = errors.New("report not found in history")

// ReportDB stores report history in SQLite.
type ReportDB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// Clock returns the time recorded for new rows. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
		now:    opts.Clock,
	}
	if rdb.now == nil {
		rdb.now = time.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ReportDB) Path() string {
	return rdb.dbPath
}

func (rdb *ReportDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		risk REAL,
		tier TEXT NOT NULL,
		report_json TEXT NOT NULL,
		content_hash TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url);
	CREATE INDEX IF NOT EXISTS idx_reports_host ON reports(host);
	CREATE INDEX IF NOT EXISTS idx_reports_fetched_at ON reports(fetched_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// ReportMeta is the summary of a stored report, without the document.
type ReportMeta struct {
	ID          int64
	URL         string
	Host        string
	FetchedAt   time.Time
	Risk        *float64
	Tier        view.RiskTier
	ContentHash string
}

// ReportRecord is a stored report with its metadata.
type ReportRecord struct {
	ReportMeta

	Report *model.WebsiteReport
}

// HostSummary aggregates the stored reports of one host.
type HostSummary struct {
	Host        string
	Reports     int
	LastFetched time.Time
}

// ContentHash returns the hex SHA3-256 digest of the report's JSON encoding.
// encoding/json sorts map keys, so equal reports hash equally.
func ContentHash(report *model.WebsiteReport) (string, []byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}

// SaveReport stores report for url. If the most recent row for url has the
// same content hash nothing is written and saved is false; id is then the
// existing row.
func (rdb *ReportDB) SaveReport(ctx context.Context, url string, report *model.WebsiteReport) (id int64, saved bool, err error) {
	if report == nil {
		report = &model.WebsiteReport{}
	}
	hash, data, err := ContentHash(report)
	if err != nil {
		return 0, false, err
	}

	// The lookup and insert share one transaction so concurrent saves of
	// the same report cannot both insert.
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		lastID   int64
		lastHash string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, content_hash FROM reports WHERE url = ? ORDER BY id DESC LIMIT 1`, url,
	).Scan(&lastID, &lastHash)
	switch {
	case err == nil && lastHash == hash:
		if err = tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return lastID, false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return 0, false, fmt.Errorf("failed to check previous report: %w", err)
	}

	var risk sql.NullFloat64
	if score := report.RiskResult.Risk; score.Usable() {
		risk = sql.NullFloat64{Float64: score.Value, Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO reports (url, host, fetched_at, risk, tier, report_json, content_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		url,
		view.HostOf(url),
		rdb.now().UTC().Format(timeLayout),
		risk,
		string(view.ClassifyRisk(report.RiskResult.Risk)),
		string(data),
		hash,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save report: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read report id: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, true, nil
}

const recordColumns = `id, url, host, fetched_at, risk, tier, content_hash, report_json`

// scanRecord reads one row selected with recordColumns.
func scanRecord(row interface{ Scan(...any) error }) (*ReportRecord, error) {
	var (
		rec        ReportRecord
		fetchedAt  string
		risk       sql.NullFloat64
		tier       string
		reportJSON string
	)
	if err := row.Scan(&rec.ID, &rec.URL, &rec.Host, &fetchedAt, &risk, &tier, &rec.ContentHash, &reportJSON); err != nil {
		return nil, err
	}
	rec.FetchedAt = parseTimestamp(fetchedAt)
	rec.Tier = view.RiskTier(tier)
	if risk.Valid {
		v := risk.Float64
		rec.Risk = &v
	}

	var report model.WebsiteReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %d: %w", rec.ID, err)
	}
	rec.Report = &report
	return &rec, nil
}

// LatestReport returns the most recent report stored for url.
func (rdb *ReportDB) LatestReport(ctx context.Context, url string) (*ReportRecord, error) {
	row := rdb.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM reports WHERE url = ? ORDER BY id DESC LIMIT 1`, url)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return rec, nil
}

// GetReport returns the stored report with the given id.
func (rdb *ReportDB) GetReport(ctx context.Context, id int64) (*ReportRecord, error) {
	row := rdb.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM reports WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rec, nil
}

// History lists stored report metadata, newest first. An empty url lists
// every report; limit <= 0 means no limit.
func (rdb *ReportDB) History(ctx context.Context, url string, limit int) ([]ReportMeta, error) {
	query := `SELECT id, url, host, fetched_at, risk, tier, content_hash FROM reports`
	var args []any
	if url != "" {
		query += ` WHERE url = ?`
		args = append(args, url)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	results := []ReportMeta{}
	for rows.Next() {
		var (
			meta      ReportMeta
			fetchedAt string
			risk      sql.NullFloat64
			tier      string
		)
		if err := rows.Scan(&meta.ID, &meta.URL, &meta.Host, &fetchedAt, &risk, &tier, &meta.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		meta.FetchedAt = parseTimestamp(fetchedAt)
		meta.Tier = view.RiskTier(tier)
		if risk.Valid {
			v := risk.Float64
			meta.Risk = &v
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListHosts returns every host with stored reports, ordered by host name.
func (rdb *ReportDB) ListHosts(ctx context.Context) ([]HostSummary, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT host, COUNT(*), MAX(fetched_at)
	FROM reports
	GROUP BY host
	ORDER BY host
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	hosts := []HostSummary{}
	for rows.Next() {
		var (
			h    HostSummary
			last string
		)
		if err := rows.Scan(&h.Host, &h.Reports, &last); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		h.LastFetched = parseTimestamp(last)
		hosts = append(hosts, h)
	}

	return hosts, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time on failure.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
