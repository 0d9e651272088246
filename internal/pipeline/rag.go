package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bull/ytchat/internal/index"
	"github.com/bull/ytchat/internal/prompt"
)

// Embedder turns texts into vectors.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever finds the k texts in an index closest to a question.
type Retriever struct {
	index    index.Index
	embedder Embedder
	k        int
}

// NewRetriever creates a Retriever returning at most k texts.
func NewRetriever(idx index.Index, embedder Embedder, k int) *Retriever {
	return &Retriever{index: idx, embedder: embedder, k: k}
}

// K returns the retrieval count.
func (r *Retriever) K() int {
	return r.k
}

// Execute implements Stage. A blank question has nothing to rank by, so the
// first k texts in source order are returned.
func (r *Retriever) Execute(ctx context.Context, question string) ([]string, error) {
	if strings.TrimSpace(question) == "" {
		hits, err := r.index.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("list index: %w", err)
		}
		return index.Texts(hits[:min(r.k, len(hits))]), nil
	}

	vecs, err := r.embedder.GenerateEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed question: expected 1 vector, got %d", len(vecs))
	}

	hits, err := r.index.Search(ctx, vecs[0], r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return index.Texts(hits), nil
}

// FormatDocs joins retrieved texts with newlines.
func FormatDocs(texts []string) string {
	return strings.Join(texts, "\n")
}

// RAG answers a question by retrieving context, rendering a prompt over
// {context, question}, and generating with the model. Stages run in order:
// retrieve, format, render, generate, parse.
type RAG struct {
	name     string
	retrieve Stage[string, []string]
	prompt   *prompt.Template
	llm      Generator
	parse    func(string) (string, error)
	logger   *slog.Logger
}

// NewRAG assembles a pipeline. The template must declare "context" and "question".
func NewRAG(name string, retrieve Stage[string, []string], tmpl *prompt.Template, llm Generator, logger *slog.Logger) *RAG {
	if logger == nil {
		logger = slog.Default()
	}
	return &RAG{
		name:     name,
		retrieve: retrieve,
		prompt:   tmpl,
		llm:      llm,
		parse:    ParseText,
		logger:   logger,
	}
}

// Name returns the pipeline name.
func (p *RAG) Name() string {
	return p.name
}

// ParseText is the output stage for plain-text answers: the model's reply is
// returned verbatim.
func ParseText(s string) (string, error) {
	return s, nil
}

// Run executes all stages for question.
func (p *RAG) Run(ctx context.Context, question string) (string, error) {
	start := time.Now()

	docs, err := p.retrieve.Execute(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%s pipeline: retrieve: %w", p.name, err)
	}

	formatted := FormatDocs(docs)

	rendered, err := p.prompt.Render(map[string]string{
		prompt.VarContext:  formatted,
		prompt.VarQuestion: question,
	})
	if err != nil {
		return "", fmt.Errorf("%s pipeline: %w", p.name, err)
	}

	raw, err := p.llm.Complete(ctx, rendered)
	if err != nil {
		return "", fmt.Errorf("%s pipeline: generate: %w", p.name, err)
	}

	answer, err := p.parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s pipeline: parse: %w", p.name, err)
	}

	p.logger.Debug("Pipeline answered",
		"pipeline", p.name,
		"retrieved", len(docs),
		"context_chars", len(formatted),
		"duration", time.Since(start),
	)
	return answer, nil
}
