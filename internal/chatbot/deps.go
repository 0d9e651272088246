package chatbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bull/ytchat/internal/config"
	"github.com/bull/ytchat/internal/embedding"
	"github.com/bull/ytchat/internal/index"
	"github.com/bull/ytchat/internal/llm"
	"github.com/bull/ytchat/internal/transcript"
)

// SettingsFromConfig copies the session tunables out of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		QAK:          cfg.QAK,
		SummaryK:     cfg.SummaryK,
		SummaryDelay: cfg.SummaryDelay,
	}
}

// Runtime is the production wiring of Deps plus the resources to release on exit.
type Runtime struct {
	Deps    Deps
	store   *index.QdrantStore
	closers []io.Closer
}

// NewRuntime connects the OpenAI client, transcript source (with the SQLite
// cache when configured) and index backend described by cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{}

	openaiClient := embedding.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	embedder := embedding.NewEmbedder(openaiClient, cfg.EmbeddingModel, 0)
	chat := llm.New(openaiClient.Client(), cfg.ChatModel, cfg.LLMRequestsPerMinute, logger)

	fetcher := transcript.NewFetcher(nil, cfg.Language, logger)
	var source transcript.Source = fetcher
	if cfg.CacheDir != "" {
		cache, err := transcript.OpenCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, cache)
		source = transcript.NewCachingSource(fetcher, cache, cfg.Language, logger)
		logger.Info("Transcript cache enabled", "dir", cfg.CacheDir)
	}

	var indexes index.Factory = index.MemoryFactory{}
	if cfg.VectorStore == config.VectorStoreQdrant {
		store, err := index.NewQdrantStore(ctx, cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect vector store: %w", err)
		}
		rt.closers = append(rt.closers, store)
		rt.store = store
		indexes = store
		logger.Info("Using Qdrant vector store", "addr", store.Addr())
	}

	rt.Deps = Deps{
		Source:   source,
		LLM:      chat,
		Embedder: embedder,
		Indexes:  indexes,
		Logger:   logger,
		Settings: SettingsFromConfig(cfg),
	}
	return rt, nil
}

// Backend names the vector index backend in use.
func (r *Runtime) Backend() string {
	if r.store != nil {
		return config.VectorStoreQdrant
	}
	return config.VectorStoreMemory
}

// Health checks the vector store connection. The in-memory backend is always healthy.
func (r *Runtime) Health(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Health(ctx)
}

// Close releases the cache and vector store connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}
