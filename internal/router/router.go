// Package router classifies each query and dispatches it to the matching pipeline.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bull/ytchat/internal/classify"
)

// Classifier labels a query.
type Classifier interface {
	Classify(ctx context.Context, query string) (classify.Category, error)
}

// Pipeline answers a question.
type Pipeline interface {
	Run(ctx context.Context, question string) (string, error)
}

// Result is a routed answer.
type Result struct {
	Category classify.Category
	Text     string
}

// Router holds one pipeline per category. It keeps no state between queries.
type Router struct {
	classifier Classifier
	summary    Pipeline
	qa         Pipeline
	logger     *slog.Logger
}

// New creates a Router.
func New(classifier Classifier, summary, qa Pipeline, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		classifier: classifier,
		summary:    summary,
		qa:         qa,
		logger:     logger,
	}
}

// Answer classifies question, then runs exactly one pipeline with the
// original question and returns its answer unmodified.
func (r *Router) Answer(ctx context.Context, question string) (*Result, error) {
	category, err := r.classifier.Classify(ctx, question)
	if err != nil {
		return nil, err
	}

	pipeline, err := r.pipelineFor(category)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Routing query", "category", category)

	text, err := pipeline.Run(ctx, question)
	if err != nil {
		return nil, err
	}
	return &Result{Category: category, Text: text}, nil
}

func (r *Router) pipelineFor(category classify.Category) (Pipeline, error) {
	switch category {
	case classify.Summary:
		return r.summary, nil
	case classify.QuestionAnswer:
		return r.qa, nil
	default:
		return nil, fmt.Errorf("route query: %w: %q", classify.ErrUnknownCategory, category)
	}
}
