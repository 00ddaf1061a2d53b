package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/request-classifier-console/internal/core/ports"
)

type sessionEntry struct {
	controller *FormController
	lastSeen   time.Time
}

// SessionManager binds browser sessions to form controllers and tears down
// the ones that went idle.
type SessionManager struct {
	deps    FormControllerDeps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	closed   bool
}

func NewSessionManager(deps FormControllerDeps, idleTTL time.Duration) *SessionManager {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &SessionManager{
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

func (m *SessionManager) Get(id string) (ports.FormController, bool) {
	controller, ok := m.lookup(id)
	if !ok {
		return nil, false
	}
	return controller, true
}

func (m *SessionManager) lookup(id string) (*FormController, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = m.now()
	return entry.controller, true
}

func (m *SessionManager) Create() (string, ports.FormController) {
	id := uuid.NewString()
	controller := NewFormController(id, m.deps)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		controller.Close()
		return id, controller
	}
	m.sessions[id] = &sessionEntry{controller: controller, lastSeen: m.now()}
	return id, controller
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep tears down sessions idle for longer than the TTL. Sessions with a
// submission or text read in flight are kept until that work finishes.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*FormController
	for id, entry := range m.sessions {
		if entry.lastSeen.After(cutoff) || entry.controller.Busy() {
			continue
		}
		expired = append(expired, entry.controller)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, controller := range expired {
		controller.Close()
	}
	if len(expired) > 0 {
		slog.Info("sessions_expired", "count", len(expired))
	}
	return len(expired)
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close tears down every session. Later Create calls return closed controllers.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*sessionEntry)
	m.mu.Unlock()

	for _, entry := range sessions {
		entry.controller.Close()
	}
}
