// Package chatbot assembles a question-answering session for one video:
// transcript, chunks, both indexes, both pipelines, classifier and router.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bull/ytchat/internal/chunker"
	"github.com/bull/ytchat/internal/classify"
	"github.com/bull/ytchat/internal/index"
	"github.com/bull/ytchat/internal/indexer"
	"github.com/bull/ytchat/internal/pipeline"
	"github.com/bull/ytchat/internal/prompt"
	"github.com/bull/ytchat/internal/router"
	"github.com/bull/ytchat/internal/transcript"
)

// LLM is the chat model used for summaries, answers and classification.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Embedder turns texts into vectors.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Splitter cuts a transcript into chunks.
type Splitter interface {
	Split(text string) []chunker.Chunk
}

// Settings are the tunables of a session.
type Settings struct {
	ChunkSize    int
	ChunkOverlap int
	QAK          int
	SummaryK     int // 0 retrieves every summary
	SummaryDelay time.Duration
}

// DefaultSettings returns the stock chunking, retrieval and throttle values.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:    chunker.DefaultChunkSize,
		ChunkOverlap: chunker.DefaultChunkOverlap,
		QAK:          4,
		SummaryDelay: indexer.DefaultSummaryDelay,
	}
}

// Deps carries everything a session needs. Nothing is global, so tests can
// substitute any collaborator.
type Deps struct {
	Source   transcript.Source
	LLM      LLM
	Embedder Embedder
	Indexes  index.Factory
	Splitter Splitter // nil builds one from Settings
	Logger   *slog.Logger
	Settings Settings
}

// BuildResult contains statistics about a session build.
type BuildResult struct {
	VideoID         string
	TranscriptChars int
	Chunks          int
	Summaries       int
	Duration        time.Duration
}

// Session answers questions about one video. Its indexes are read-only
// once built; a failed question leaves the session usable.
type Session struct {
	ID      string
	VideoID string
	Result  BuildResult

	router    *router.Router
	qaIdx     index.Index
	summaries index.Index
	logger    *slog.Logger
}

// Build fetches the transcript for videoInput (URL or bare ID) and builds a
// session. Disabled captions count as an empty transcript, which fails with
// ErrNoTranscript before anything is split, embedded or indexed.
func Build(ctx context.Context, deps Deps, videoInput string) (*Session, error) {
	start := time.Now()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	videoID, ok := transcript.ExtractVideoID(videoInput)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoID, videoInput)
	}

	text, err := fetchTranscript(ctx, deps.Source, videoID, logger)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoTranscript)
	}

	splitter := deps.Splitter
	if splitter == nil {
		s, err := chunker.NewSplitter(deps.Settings.ChunkSize, deps.Settings.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		splitter = s
	}

	chunks := splitter.Split(text)
	logger.Info("Split transcript", "video", videoID, "chars", len(text), "chunks", len(chunks))

	qaIdx, err := deps.Indexes.NewIndex(ctx, "qa")
	if err != nil {
		return nil, fmt.Errorf("create qa index: %w", err)
	}
	summaryIdx, err := deps.Indexes.NewIndex(ctx, "summary")
	if err != nil {
		qaIdx.Close()
		return nil, fmt.Errorf("create summary index: %w", err)
	}

	builder := indexer.NewBuilder(deps.Embedder, deps.LLM, deps.Settings.SummaryDelay, logger)
	stats, err := builder.Build(ctx, chunks, qaIdx, summaryIdx)
	if err != nil {
		closeAll(logger, qaIdx, summaryIdx)
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	summaryK := deps.Settings.SummaryK
	if summaryK <= 0 {
		summaryK = len(chunks)
	}

	qa := pipeline.NewRAG("qa", pipeline.NewRetriever(qaIdx, deps.Embedder, deps.Settings.QAK), prompt.QA, deps.LLM, logger)
	summary := pipeline.NewRAG("summary", pipeline.NewRetriever(summaryIdx, deps.Embedder, summaryK), prompt.Summary, deps.LLM, logger)

	classifier, err := classify.New(deps.LLM, logger)
	if err != nil {
		closeAll(logger, qaIdx, summaryIdx)
		return nil, err
	}

	s := &Session{
		ID:      uuid.NewString(),
		VideoID: videoID,
		Result: BuildResult{
			VideoID:         videoID,
			TranscriptChars: len(text),
			Chunks:          stats.Chunks,
			Summaries:       stats.Summaries,
			Duration:        time.Since(start),
		},
		router:    router.New(classifier, summary, qa, logger),
		qaIdx:     qaIdx,
		summaries: summaryIdx,
		logger:    logger,
	}

	logger.Info("Session ready",
		"session", s.ID,
		"video", videoID,
		"chunks", s.Result.Chunks,
		"summaries", s.Result.Summaries,
		"duration", s.Result.Duration,
	)
	return s, nil
}

// fetchTranscript returns the transcript text, or "" when captions are disabled.
func fetchTranscript(ctx context.Context, source transcript.Source, videoID string, logger *slog.Logger) (string, error) {
	t, err := source.Fetch(ctx, videoID)
	if errors.Is(err, transcript.ErrTranscriptsDisabled) {
		logger.Warn("Transcripts disabled for this video", "video", videoID)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	logger.Info("Transcript fetched", "video", videoID, "chars", len(t.Text))
	return t.Text, nil
}

// Ask routes question to the summary or QA pipeline and returns its answer.
func (s *Session) Ask(ctx context.Context, question string) (*router.Result, error) {
	return s.router.Answer(ctx, question)
}

// Close releases both indexes.
func (s *Session) Close() error {
	return errors.Join(s.qaIdx.Close(), s.summaries.Close())
}

func closeAll(logger *slog.Logger, indexes ...index.Index) {
	for _, idx := range indexes {
		if err := idx.Close(); err != nil {
			logger.Warn("Failed to close index", "error", err)
		}
	}
}
