package chatbot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bull/ytchat/internal/router"
)

// Status describes the active session of a Manager.
type Status struct {
	Ready     bool
	SessionID string
	VideoID   string
	Result    BuildResult
	Questions int
}

// Manager holds the single active session and its history for front ends
// that serve several requests (web, MCP).
type Manager struct {
	deps Deps

	buildMu sync.Mutex // serializes Load
	mu      sync.RWMutex
	session *Session
	history History
}

// NewManager creates a Manager with no session.
func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

// Load builds a session for videoInput and makes it active, clearing the
// history. On failure the previous session stays active.
func (m *Manager) Load(ctx context.Context, videoInput string) (*BuildResult, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	s, err := Build(ctx, m.deps, videoInput)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	old := m.session
	m.session = s
	m.history.Clear()
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			m.deps.Logger.Warn("Failed to close previous session", "session", old.ID, "error", err)
		}
	}

	result := s.Result
	return &result, nil
}

// Ask answers question with the active session and records it in the history.
// A failed question is not recorded and leaves the session in place.
func (m *Manager) Ask(ctx context.Context, question string) (*router.Result, error) {
	m.mu.RLock()
	s := m.session
	if s == nil {
		m.mu.RUnlock()
		return nil, ErrNoSession
	}
	res, err := s.Ask(ctx, question)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.session == s {
		m.history.Append(Entry{
			Question: question,
			Answer:   res.Text,
			Category: res.Category,
			At:       time.Now(),
		})
	}
	m.mu.Unlock()

	return res, nil
}

// History returns the answered questions of the active session.
func (m *Manager) History() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.Entries()
}

// ClearHistory empties the history and keeps the session.
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history.Clear()
}

// Status reports whether a session is active and what it was built from.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return Status{}
	}
	return Status{
		Ready:     true,
		SessionID: m.session.ID,
		VideoID:   m.session.VideoID,
		Result:    m.session.Result,
		Questions: m.history.Len(),
	}
}

// Close closes the active session.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	m.history.Clear()
	return err
}
