package transcript

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	t     *Transcript
	err   error
}

func (s *countingSource) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.t
	out.VideoID = videoID
	return &out, nil
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Get(ctx, "Gfr50f6ZBvo", "en")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := &Transcript{VideoID: "Gfr50f6ZBvo", Language: "en-GB", Text: "hello there", Segments: 2}
	require.NoError(t, cache.Put(ctx, "en", want))

	got, err := cache.Get(ctx, "Gfr50f6ZBvo", "en")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Keyed by requested language, not track language.
	_, err = cache.Get(ctx, "Gfr50f6ZBvo", "de")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want.Text = "replaced"
	require.NoError(t, cache.Put(ctx, "en", want))
	got, err = cache.Get(ctx, "Gfr50f6ZBvo", "en")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Text)
}

func TestCache_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := OpenCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "en", &Transcript{VideoID: "abc", Language: "en", Text: "kept"}))
	require.NoError(t, cache.Close())

	cache, err = OpenCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Get(ctx, "abc", "en")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Text)
}

func TestCachingSource(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingSource{t: &Transcript{Language: "en", Text: "the cat sat", Segments: 1}}
	src := NewCachingSource(inner, cache, "en", nil)

	first, err := src.Fetch(ctx, "vid")
	require.NoError(t, err)
	second, err := src.Fetch(ctx, "vid")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, "vid", second.VideoID)
}

func TestCachingSource_HitKeepsTrackLanguage(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingSource{t: &Transcript{Language: "en-GB", Text: "the cat sat", Segments: 1}}
	src := NewCachingSource(inner, cache, "en", nil)

	_, err = src.Fetch(ctx, "vid")
	require.NoError(t, err)
	cached, err := src.Fetch(ctx, "vid")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "en-GB", cached.Language)
}

func TestOpenCache_UpgradesOldSchema(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sql.Open("sqlite", filepath.Join(dir, "transcripts.db"))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE transcripts (
		video_id TEXT NOT NULL, language TEXT NOT NULL, text TEXT NOT NULL,
		segments INTEGER NOT NULL DEFAULT 0, fetched_at TEXT NOT NULL,
		PRIMARY KEY (video_id, language))`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transcripts VALUES ('old', 'en', 'from before', 3, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cache, err := OpenCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Get(ctx, "old", "en")
	require.NoError(t, err)
	assert.Equal(t, "from before", got.Text)
	assert.Equal(t, "en", got.Language, "rows without a track language report the requested one")

	require.NoError(t, cache.Put(ctx, "en", &Transcript{VideoID: "new", Language: "en-US", Text: "after"}))
	got, err = cache.Get(ctx, "new", "en")
	require.NoError(t, err)
	assert.Equal(t, "en-US", got.Language)
}

func TestCachingSource_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	inner := &countingSource{err: ErrTranscriptsDisabled}
	src := NewCachingSource(inner, cache, "en", nil)

	_, err = src.Fetch(ctx, "vid")
	assert.True(t, errors.Is(err, ErrTranscriptsDisabled))
	_, err = src.Fetch(ctx, "vid")
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
	assert.Equal(t, 2, inner.calls)
}
