package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
	video_id       TEXT NOT NULL,
	language       TEXT NOT NULL,
	track_language TEXT NOT NULL DEFAULT '',
	text           TEXT NOT NULL,
	segments       INTEGER NOT NULL DEFAULT 0,
	fetched_at     TEXT NOT NULL,
	PRIMARY KEY (video_id, language)
)`

// Cache stores fetched transcripts in a SQLite file so repeated sessions for
// the same video skip the network.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) transcripts.db inside dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "transcripts.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	if err := addTrackLanguage(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// addTrackLanguage upgrades cache files written before the track language
// was stored separately from the requested one.
func addTrackLanguage(db *sql.DB) error {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('transcripts') WHERE name = 'track_language'`,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect cache schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE transcripts ADD COLUMN track_language TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("upgrade cache schema: %w", err)
	}
	return nil
}

// Get returns the transcript cached for the requested language or
// ErrCacheMiss. Language on the result is the track that was fetched.
func (c *Cache) Get(ctx context.Context, videoID, language string) (*Transcript, error) {
	t := &Transcript{VideoID: videoID}
	err := c.db.QueryRowContext(ctx,
		`SELECT track_language, text, segments FROM transcripts WHERE video_id = ? AND language = ?`,
		videoID, language,
	).Scan(&t.Language, &t.Text, &t.Segments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if t.Language == "" {
		t.Language = language
	}
	return t, nil
}

// Put stores t under (t.VideoID, language), replacing any earlier entry.
// t.Language is kept as the track language.
func (c *Cache) Put(ctx context.Context, language string, t *Transcript) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transcripts (video_id, language, track_language, text, segments, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.VideoID, language, t.Language, t.Text, t.Segments, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// CachingSource serves transcripts from a Cache and fills it from an inner
// Source on a miss. Failures from the inner source are never cached.
type CachingSource struct {
	inner    Source
	cache    *Cache
	language string
	logger   *slog.Logger
}

// NewCachingSource wraps inner with cache. language is the cache key
// component and should match the inner source's requested language.
func NewCachingSource(inner Source, cache *Cache, language string, logger *slog.Logger) *CachingSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingSource{inner: inner, cache: cache, language: language, logger: logger}
}

// Fetch implements Source.
func (s *CachingSource) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	cached, err := s.cache.Get(ctx, videoID, s.language)
	if err == nil {
		s.logger.Info("Transcript cache hit", "video", videoID, "chars", len(cached.Text))
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("Transcript cache read failed", "video", videoID, "error", err)
	}

	t, err := s.inner.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, s.language, t); err != nil {
		s.logger.Warn("Transcript cache write failed", "video", videoID, "error", err)
	}
	return t, nil
}
