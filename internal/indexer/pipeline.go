// Package indexer builds the per-video QA and summary indexes from transcript chunks.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/ytchat/internal/chunker"
	"github.com/bull/ytchat/internal/index"
	"github.com/bull/ytchat/internal/prompt"
)

// DefaultSummaryDelay is the pause between per-chunk summary calls.
const DefaultSummaryDelay = 8 * time.Second

// Embedder turns texts into vectors.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IndexResult contains statistics about building both indexes.
type IndexResult struct {
	Chunks          int
	Summaries       int
	QADuration      time.Duration
	SummaryDuration time.Duration
}

// Builder embeds chunks and chunk summaries into indexes.
type Builder struct {
	embedder Embedder
	llm      Generator
	delay    time.Duration
	logger   *slog.Logger
}

// NewBuilder creates a Builder. delay is waited after every summary call
// except the last.
func NewBuilder(embedder Embedder, llm Generator, delay time.Duration, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		embedder: embedder,
		llm:      llm,
		delay:    delay,
		logger:   logger,
	}
}

// Build fills qaIdx with the chunks and summaryIdx with one summary per chunk.
func (b *Builder) Build(ctx context.Context, chunks []chunker.Chunk, qaIdx, summaryIdx index.Index) (*IndexResult, error) {
	result := &IndexResult{Chunks: len(chunks)}

	start := time.Now()
	if err := b.BuildQAIndex(ctx, chunks, qaIdx); err != nil {
		return nil, err
	}
	result.QADuration = time.Since(start)

	start = time.Now()
	summaries, err := b.BuildSummaryIndex(ctx, chunks, summaryIdx)
	if err != nil {
		return nil, err
	}
	result.Summaries = len(summaries)
	result.SummaryDuration = time.Since(start)

	return result, nil
}

// BuildQAIndex embeds every chunk and stores it with its text.
func (b *Builder) BuildQAIndex(ctx context.Context, chunks []chunker.Chunk, idx index.Index) error {
	if err := b.embedInto(ctx, chunker.Contents(chunks), idx); err != nil {
		return fmt.Errorf("qa index: %w", err)
	}
	b.logger.Info("Built QA index", "chunks", len(chunks))
	return nil
}

// BuildSummaryIndex summarizes every chunk, then embeds the summaries.
// It returns the summaries in chunk order.
func (b *Builder) BuildSummaryIndex(ctx context.Context, chunks []chunker.Chunk, idx index.Index) ([]string, error) {
	summaries, err := b.SummarizeChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if err := b.embedInto(ctx, summaries, idx); err != nil {
		return nil, fmt.Errorf("summary index: %w", err)
	}
	b.logger.Info("Built summary index", "summaries", len(summaries))
	return summaries, nil
}

// SummarizeChunks asks the model for a concise summary of each chunk on its
// own, strictly one call at a time.
func (b *Builder) SummarizeChunks(ctx context.Context, chunks []chunker.Chunk) ([]string, error) {
	summaries := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		b.logger.Info("Summarizing chunk", "chunk", i+1, "total", len(chunks))

		rendered, err := prompt.ChunkSummary.Render(map[string]string{
			prompt.VarText: chunk.Content,
		})
		if err != nil {
			return nil, err
		}

		summary, err := b.llm.Complete(ctx, rendered)
		if err != nil {
			return nil, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, summary)

		if i != len(chunks)-1 {
			if err := pause(ctx, b.delay); err != nil {
				return nil, fmt.Errorf("summarize chunk %d/%d: %w", i+2, len(chunks), err)
			}
		}
	}

	b.logger.Info("All chunks summarized", "total", len(summaries))
	return summaries, nil
}

func (b *Builder) embedInto(ctx context.Context, texts []string, idx index.Index) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := b.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embeddings: expected %d vectors, got %d", len(texts), len(vectors))
	}

	docs := make([]index.Document, len(texts))
	for i, text := range texts {
		docs[i] = index.Document{Text: text, Position: i, Vector: vectors[i]}
	}
	if err := idx.Add(ctx, docs); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
