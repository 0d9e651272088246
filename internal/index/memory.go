package index

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Memory is an exact (brute-force) cosine index held in process memory.
type Memory struct {
	mu     sync.RWMutex
	docs   []Document
	dim    int
	closed bool
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{}
}

// MemoryFactory creates Memory indexes.
type MemoryFactory struct{}

// NewIndex implements Factory.
func (MemoryFactory) NewIndex(ctx context.Context, name string) (Index, error) {
	return NewMemory(), nil
}

// Add implements Index.
func (m *Memory) Add(ctx context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	dim := m.dim
	for i, doc := range docs {
		if dim == 0 {
			dim = len(doc.Vector)
		}
		if len(doc.Vector) == 0 || len(doc.Vector) != dim {
			return fmt.Errorf("%w: document %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(doc.Vector), dim)
		}
	}

	m.dim = dim
	m.docs = append(m.docs, docs...)
	return nil
}

// Search implements Index. Equal scores keep insertion order.
func (m *Memory) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	if k <= 0 || len(m.docs) == 0 {
		return []Hit{}, nil
	}
	if len(vector) != m.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), m.dim)
	}

	hits := make([]Hit, len(m.docs))
	for i, doc := range m.docs {
		hits[i] = Hit{
			Text:     doc.Text,
			Position: doc.Position,
			Score:    cosine(vector, doc.Vector),
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return hits[:min(k, len(hits))], nil
}

// All implements Index.
func (m *Memory) All(ctx context.Context) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	hits := make([]Hit, len(m.docs))
	for i, doc := range m.docs {
		hits[i] = Hit{Text: doc.Text, Position: doc.Position}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return hits, nil
}

// Len implements Index.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Close implements Index.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.docs = nil
	return nil
}

// cosine returns the cosine similarity of a and b, or 0 if either is a zero vector.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
