package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

const publishTimeout = 2 * time.Second

// SceneFactory builds the UI collaborators of a new session.
type SceneFactory func(id string, mobile bool) ports.Scene

// SceneListener receives the scene of a session after each change.
type SceneListener func(st domain.SceneState)

// SessionManager owns the live sessions and fans asset completions out to
// them.
type SessionManager struct {
	catalog   *Catalog
	newScene  SceneFactory
	publisher ports.EventPublisher

	mu       sync.RWMutex
	sessions map[string]*Session

	listenMu  sync.Mutex
	listenSeq uint64
	listeners map[string]map[uint64]SceneListener
}

// NewSessionManager creates a manager. publisher may be nil.
func NewSessionManager(catalog *Catalog, newScene SceneFactory, publisher ports.EventPublisher) *SessionManager {
	m := &SessionManager{
		catalog:   catalog,
		newScene:  newScene,
		publisher: publisher,
		sessions:  make(map[string]*Session),
		listeners: make(map[string]map[uint64]SceneListener),
	}
	catalog.Store.OnCategoryLoaded(m.categoryLoaded)
	return m
}

// Create opens a new session.
func (m *SessionManager) Create(mobile bool) *Session {
	id := uuid.NewString()

	// Holding mu while the session is built keeps categoryLoaded from
	// missing a category registered in between.
	m.mu.Lock()
	s := NewSession(id, mobile, m.catalog, m.newScene(id, mobile), m.publish)
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	slog.Info("session created", "session", id, "mobile", mobile)
	return s
}

// Get returns a live session.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Close()
	m.listenMu.Lock()
	delete(m.listeners, id)
	m.listenMu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	slog.Info("session closed", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	metrics.ActiveSessions.Set(0)
}

func (m *SessionManager) categoryLoaded(cat domain.Category) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.OnCategoryLoaded(cat)
	}
}

// Subscribe calls fn in-process with every scene of session id until the
// returned function is called. It serves clients when no event publisher is
// configured.
func (m *SessionManager) Subscribe(id string, fn SceneListener) func() {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.listenSeq++
	seq := m.listenSeq
	if m.listeners[id] == nil {
		m.listeners[id] = make(map[uint64]SceneListener)
	}
	m.listeners[id][seq] = fn
	return func() {
		m.listenMu.Lock()
		defer m.listenMu.Unlock()
		delete(m.listeners[id], seq)
		if len(m.listeners[id]) == 0 {
			delete(m.listeners, id)
		}
	}
}

func (m *SessionManager) publish(s *Session) {
	m.listenMu.Lock()
	fns := make([]SceneListener, 0, len(m.listeners[s.ID]))
	for _, fn := range m.listeners[s.ID] {
		fns = append(fns, fn)
	}
	m.listenMu.Unlock()

	if len(fns) == 0 && m.publisher == nil {
		return
	}
	st := s.Snapshot()
	for _, fn := range fns {
		fn(st)
	}
	if m.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := m.publisher.PublishScene(ctx, &st); err != nil {
		slog.Warn("publish scene failed", "session", s.ID, "error", err)
	}
}
