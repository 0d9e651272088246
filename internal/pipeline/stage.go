// Package pipeline composes retrieval-augmented generation from explicit stages.
package pipeline

import "context"

// Stage is one step of a pipeline with a single execute contract.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, in In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// Execute implements Stage.
func (f StageFunc[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	return f(ctx, in)
}
