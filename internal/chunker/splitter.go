// Package chunker splits transcript text into overlapping fixed-size chunks.
package chunker

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared by consecutive chunks.
	DefaultChunkOverlap = 200
)

// ErrInvalidConfig is returned for a size/overlap pair that cannot make progress.
var ErrInvalidConfig = errors.New("invalid splitter configuration")

// Chunk is a contiguous slice of the source text.
type Chunk struct {
	Index   int    // Position in the sequence (0, 1, 2...)
	Start   int    // Offset of the first character in the source, in runes
	Content string // Chunk text, at most size characters
}

// separators are tried in order: paragraph, line, sentence end, word.
// Sentence ends are grouped so the latest one wins.
var separators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "? ", "! "},
	{" "},
}

// Splitter cuts text recursively by paragraph, sentence and word boundaries.
// Consecutive chunks share exactly overlap characters, so dropping the first
// overlap characters of every chunk after the first and concatenating gives
// back the source text.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter. Lengths are counted in characters (runes).
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfig, size, overlap)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// NewDefaultSplitter returns a Splitter with 1000-character chunks and 200 characters of overlap.
func NewDefaultSplitter() *Splitter {
	return &Splitter{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
}

// Size returns the maximum chunk length.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the number of characters shared by consecutive chunks.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns the ordered chunks of text. Text that fits in one chunk,
// including the empty string, yields exactly one chunk.
func (s *Splitter) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) <= s.size {
		return []Chunk{{Index: 0, Start: 0, Content: text}}
	}

	var chunks []Chunk
	start := 0
	for {
		if len(runes)-start <= s.size {
			chunks = append(chunks, Chunk{
				Index:   len(chunks),
				Start:   start,
				Content: string(runes[start:]),
			})
			return chunks
		}

		end := s.cutPoint(runes, start)
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Start:   start,
			Content: string(runes[start:end]),
		})
		start = end - s.overlap
	}
}

// cutPoint picks the end (exclusive) of the chunk beginning at start.
// The result always lies in (start+overlap, start+size], which keeps every
// chunk within size and guarantees the next chunk starts further along.
func (s *Splitter) cutPoint(runes []rune, start int) int {
	limit := start + s.size
	lowest := start + s.overlap + 1

	// Prefer boundaries in the back half of the window so chunks stay large,
	// then accept any boundary that still makes progress.
	preferred := max(start+s.size/2, lowest)
	for _, lo := range []int{preferred, lowest} {
		for _, group := range separators {
			if cut := lastCut(runes, lo, limit, group); cut > 0 {
				return cut
			}
		}
	}
	return limit
}

// lastCut returns the largest position p in [lo, hi] that directly follows
// one of seps, or -1.
func lastCut(runes []rune, lo, hi int, seps []string) int {
	best := -1
	for _, sep := range seps {
		sr := []rune(sep)
		for p := hi; p >= lo && p > best; p-- {
			if endsWith(runes[:p], sr) {
				best = p
				break
			}
		}
	}
	return best
}

func endsWith(runes, suffix []rune) bool {
	if len(suffix) > len(runes) {
		return false
	}
	off := len(runes) - len(suffix)
	for i, r := range suffix {
		if runes[off+i] != r {
			return false
		}
	}
	return true
}

// Contents returns the text of each chunk in order.
func Contents(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return texts
}
