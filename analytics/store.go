// Package analytics tracks per-visitor and site-wide view counters and
// rolls them up into weekly statistics.
package analytics

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mileusna/useragent"
	_ "modernc.org/sqlite"
)

// Counter ids for the fixed site-wide tallies.
const (
	siteCounterID   = "site"
	resumeCounterID = "resume"
)

// Store provides database operations for visit analytics. It lives in its
// own SQLite database, separate from site content.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
	`); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visitors (
			addr TEXT PRIMARY KEY,
			count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS counters (
			id TEXT PRIMARY KEY,
			count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS weekly_stats (
			week_start TEXT PRIMARY KEY,
			views INTEGER NOT NULL,
			cumulative INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);
	`)
	return err
}

// RecordVisit tallies a page view: the per-address counter is created with
// count 1 or incremented, and the site-wide counter is always incremented.
// The two writes are independent; partial completion is tolerated and both
// errors are reported for the caller to log. Bot user agents are not
// counted at all.
func (s *Store) RecordVisit(remoteAddr, userAgent string) error {
	if useragent.Parse(userAgent).Bot {
		return nil
	}
	addrErr := s.increment(`INSERT INTO visitors (addr, count) VALUES (?, 1)
		ON CONFLICT(addr) DO UPDATE SET count = count + 1`, remoteAddr)
	siteErr := s.incrementCounter(siteCounterID)
	return errors.Join(addrErr, siteErr)
}

// RecordResumeVisit increments the fixed resume counter only; per-address
// counters are untouched.
func (s *Store) RecordResumeVisit() error {
	return s.incrementCounter(resumeCounterID)
}

func (s *Store) incrementCounter(id string) error {
	return s.increment(`INSERT INTO counters (id, count) VALUES (?, 1)
		ON CONFLICT(id) DO UPDATE SET count = count + 1`, id)
}

func (s *Store) increment(query, key string) error {
	_, err := s.db.Exec(query, key)
	return err
}

// SiteViews returns the cumulative site-wide view count.
func (s *Store) SiteViews() (int64, error) {
	return s.counter(siteCounterID)
}

// ResumeViews returns the cumulative resume view count.
func (s *Store) ResumeViews() (int64, error) {
	return s.counter(resumeCounterID)
}

func (s *Store) counter(id string) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT count FROM counters WHERE id = ?`, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// VisitorCount returns the view count recorded for a remote address, zero
// if the address has never been seen.
func (s *Store) VisitorCount(remoteAddr string) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT count FROM visitors WHERE addr = ?`, remoteAddr).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// WeeklyStat is one rolled-up week of site views.
type WeeklyStat struct {
	WeekStart  string // Monday of the week, YYYY-MM-DD
	Views      int64  // views gained during that week
	Cumulative int64  // site counter snapshot at rollup time
}

// WeeklyRollup snapshots the cumulative site counter and stores the delta
// against the previous week's snapshot under the current week. The first
// rollup records the full cumulative total as the baseline week. Re-running
// within the same week recomputes that week's row.
func (s *Store) WeeklyRollup(now time.Time) error {
	cumulative, err := s.SiteViews()
	if err != nil {
		return fmt.Errorf("read site counter: %w", err)
	}

	week := WeekStart(now)

	var prev int64
	err = s.db.QueryRow(
		`SELECT cumulative FROM weekly_stats WHERE week_start < ? ORDER BY week_start DESC LIMIT 1`,
		week,
	).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read previous snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO weekly_stats (week_start, views, cumulative, recorded_at) VALUES (?, ?, ?, ?)`,
		week, cumulative-prev, cumulative, now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write weekly stat: %w", err)
	}
	return nil
}

// GetWeeklyStat returns the rolled-up row for a week start date.
func (s *Store) GetWeeklyStat(weekStart string) (WeeklyStat, error) {
	var w WeeklyStat
	err := s.db.QueryRow(
		`SELECT week_start, views, cumulative FROM weekly_stats WHERE week_start = ?`,
		weekStart,
	).Scan(&w.WeekStart, &w.Views, &w.Cumulative)
	if err != nil {
		return WeeklyStat{}, err
	}
	return w, nil
}

// ListWeeklyStats returns all rolled-up weeks, newest first.
func (s *Store) ListWeeklyStats() ([]WeeklyStat, error) {
	rows, err := s.db.Query(`SELECT week_start, views, cumulative FROM weekly_stats ORDER BY week_start DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []WeeklyStat
	for rows.Next() {
		var w WeeklyStat
		if err := rows.Scan(&w.WeekStart, &w.Views, &w.Cumulative); err != nil {
			return nil, err
		}
		stats = append(stats, w)
	}
	return stats, rows.Err()
}

// WeekStart returns the Monday of the week containing t, as YYYY-MM-DD.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}
