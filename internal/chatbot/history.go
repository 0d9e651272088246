package chatbot

import (
	"time"

	"github.com/bull/ytchat/internal/classify"
)

// Entry is one answered question.
type Entry struct {
	Question string
	Answer   string
	Category classify.Category
	At       time.Time
}

// History is the ordered list of answered questions shown by a front end.
// It is append-only apart from Clear and is not used to answer questions.
type History struct {
	entries []Entry
}

// Append records an answered question.
func (h *History) Append(e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	h.entries = append(h.entries, e)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.entries = nil
}
