package blogspace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post, body or image does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrDuplicate is returned when a post id already exists.
var ErrDuplicate = errors.New("duplicate id")

// Store wraps a SQLite database holding the post index, post bodies and
// uploaded images. The handle is opened once at startup and injected into
// every component that needs it.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema setup.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy timeout so writers wait
	// instead of returning SQLITE_BUSY, synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    tags TEXT NOT NULL,
    target TEXT NOT NULL,
    created TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    views INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_posts_target ON posts(target);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

CREATE TABLE IF NOT EXISTS post_bodies (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
    id TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// CreatePost inserts the index entry and its body in a single transaction,
// so a post never exists with only one of the two rows. Returns ErrDuplicate
// when the id is already taken.
func (s *Store) CreatePost(e PostEntry, body string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO posts (id, title, description, tags, target, created, created_at, views) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, encodeTags(e.Tags), e.Target, e.Created, e.CreatedAt, e.Views,
	); err != nil {
		return wrapDuplicate(err)
	}
	if _, err := tx.Exec(
		`INSERT INTO post_bodies (id, title, body) VALUES (?, ?, ?)`,
		e.ID, e.Title, body,
	); err != nil {
		return wrapDuplicate(err)
	}
	return tx.Commit()
}

// ListPosts returns index entries for a target ordered by publish time
// descending. When tags are supplied, only entries whose tag set contains
// every requested tag are returned (superset match, case-insensitive).
func (s *Store) ListPosts(target string, tags []string) ([]PostEntry, error) {
	query := `SELECT id, title, description, tags, target, created, created_at, views FROM posts WHERE target = ?`
	args := []any{target}
	for _, t := range tags {
		query += ` AND instr(lower(tags), ',' || ? || ',') > 0`
		args = append(args, strings.ToLower(strings.TrimSpace(t)))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PostEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetPost returns a single index entry by id.
func (s *Store) GetPost(id string) (PostEntry, error) {
	row := s.db.QueryRow(`SELECT id, title, description, tags, target, created, created_at, views FROM posts WHERE id = ?`, id)
	return scanEntry(row)
}

// GetPostBody returns the full post content by id.
func (s *Store) GetPostBody(id string) (PostBody, error) {
	var b PostBody
	err := s.db.QueryRow(`SELECT id, title, body FROM post_bodies WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Body)
	if err != nil {
		return PostBody{}, err
	}
	return b, nil
}

// IncrementViews bumps the views counter for a post by one. The update is a
// single atomic statement; a missing id is a no-op. Callers treat failures
// as best-effort and must not fail the page render on them.
func (s *Store) IncrementViews(id string) error {
	_, err := s.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	return err
}

// PutImage upserts image bytes under the given id (last writer wins).
func (s *Store) PutImage(id string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO images (id, data, uploaded_at) VALUES (?, ?, ?)`,
		id, data, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetImage returns the stored image for an id.
func (s *Store) GetImage(id string) (Image, error) {
	var img Image
	err := s.db.QueryRow(`SELECT id, data, uploaded_at FROM images WHERE id = ?`, id).
		Scan(&img.ID, &img.Data, &img.UploadedAt)
	if err != nil {
		return Image{}, err
	}
	return img, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (PostEntry, error) {
	var e PostEntry
	var tags string
	if err := r.Scan(&e.ID, &e.Title, &e.Description, &tags, &e.Target, &e.Created, &e.CreatedAt, &e.Views); err != nil {
		return PostEntry{}, err
	}
	e.Tags = parseTags(tags)
	e.Link = "/blog/" + e.ID
	return e, nil
}

// encodeTags stores tags as a comma-fenced string (",a,b,") so SQL instr
// matching works on whole tags. Order and duplicates are preserved.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ","
	}
	return "," + strings.Join(tags, ",") + ","
}

// parseTags splits a comma-fenced tag string (e.g. ",go,web,") into a slice.
func parseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func wrapDuplicate(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
