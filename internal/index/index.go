// Package index stores embedded texts and answers nearest-neighbour queries.
//
// A session owns two indexes (chunks and chunk summaries). Both are filled
// once while the session is built and only read afterwards.
package index

import (
	"context"
	"errors"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
	ErrClosed            = errors.New("index closed")
)

// Document is one text with its embedding. Position is the text's place in
// the source sequence (chunk index) and is returned with every hit.
type Document struct {
	Text     string
	Position int
	Vector   []float32
}

// Hit is a search result. Score is cosine similarity, higher is closer.
type Hit struct {
	Text     string
	Position int
	Score    float64
}

// Index is a vector index over a fixed set of documents.
type Index interface {
	// Add stores docs. All vectors in an index must share one dimension.
	Add(ctx context.Context, docs []Document) error
	// Search returns up to k hits, most similar first.
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	// All returns every document ordered by Position, with zero scores.
	All(ctx context.Context) ([]Hit, error)
	// Len returns the number of stored documents.
	Len() int
	// Close releases the index and anything it holds on a server.
	Close() error
}

// Factory creates empty indexes. name identifies the index's role
// ("qa", "summary") and is used in backend resource names.
type Factory interface {
	NewIndex(ctx context.Context, name string) (Index, error)
}

// Texts returns the text of each hit, in order.
func Texts(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Text
	}
	return out
}
