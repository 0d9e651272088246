// Package config loads runtime settings for the chatbot from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when an environment variable holds a value
// that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Vector store backends.
const (
	VectorStoreMemory = "memory"
	VectorStoreQdrant = "qdrant"
)

// Config holds every tunable of the chatbot. Zero values are never used
// directly; Load fills defaults for anything unset.
type Config struct {
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	ChatModel            string
	EmbeddingModel       string
	LLMRequestsPerMinute int

	Language     string
	ChunkSize    int
	ChunkOverlap int
	QAK          int
	SummaryK     int           // 0 retrieves every summary
	SummaryDelay time.Duration // pause between per-chunk summary calls

	VectorStore string
	QdrantHost  string
	QdrantPort  int

	CacheDir string
	Port     string
	LogLevel slog.Level
}

// Load reads the configuration from the environment. A missing API key is not
// an error here; callers warn about it and model calls fail later.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		ChatModel:      getEnv("YTCHAT_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("YTCHAT_EMBEDDING_MODEL", "text-embedding-3-small"),
		Language:       getEnv("YTCHAT_LANGUAGE", "en"),
		VectorStore:    strings.ToLower(getEnv("YTCHAT_VECTOR_STORE", VectorStoreMemory)),
		QdrantHost:     getEnv("QDRANT_HOST", "localhost"),
		CacheDir:       getEnv("YTCHAT_CACHE_DIR", ""),
		Port:           getEnv("PORT", "8080"),
	}

	var err error
	if cfg.LLMRequestsPerMinute, err = getEnvInt("YTCHAT_LLM_RPM", 0); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("YTCHAT_CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("YTCHAT_CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.QAK, err = getEnvInt("YTCHAT_QA_K", 4); err != nil {
		return nil, err
	}
	if cfg.SummaryK, err = getEnvInt("YTCHAT_SUMMARY_K", 0); err != nil {
		return nil, err
	}
	if cfg.QdrantPort, err = getEnvInt("QDRANT_PORT", 6334); err != nil {
		return nil, err
	}
	if cfg.SummaryDelay, err = getEnvDuration("YTCHAT_SUMMARY_DELAY", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLevel(getEnv("YTCHAT_LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: YTCHAT_CHUNK_SIZE must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: YTCHAT_CHUNK_OVERLAP must be in [0, %d), got %d", ErrInvalidConfig, c.ChunkSize, c.ChunkOverlap)
	case c.QAK <= 0:
		return fmt.Errorf("%w: YTCHAT_QA_K must be positive, got %d", ErrInvalidConfig, c.QAK)
	case c.SummaryK < 0:
		return fmt.Errorf("%w: YTCHAT_SUMMARY_K must not be negative, got %d", ErrInvalidConfig, c.SummaryK)
	case c.SummaryDelay < 0:
		return fmt.Errorf("%w: YTCHAT_SUMMARY_DELAY must not be negative, got %s", ErrInvalidConfig, c.SummaryDelay)
	case c.LLMRequestsPerMinute < 0:
		return fmt.Errorf("%w: YTCHAT_LLM_RPM must not be negative, got %d", ErrInvalidConfig, c.LLMRequestsPerMinute)
	}
	if c.VectorStore != VectorStoreMemory && c.VectorStore != VectorStoreQdrant {
		return fmt.Errorf("%w: YTCHAT_VECTOR_STORE must be %q or %q, got %q",
			ErrInvalidConfig, VectorStoreMemory, VectorStoreQdrant, c.VectorStore)
	}
	return nil
}

// HasAPIKey reports whether a model credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.OpenAIAPIKey != ""
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return i, nil
}

// getEnvDuration accepts Go durations ("8s", "500ms") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, v)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: YTCHAT_LOG_LEVEL=%q", ErrInvalidConfig, s)
	}
	return level, nil
}
