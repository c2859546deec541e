package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

const reapTick = 30 * time.Second

// Manager owns the live sessions of one gateway and reaps idle ones.
type Manager struct {
	source      sources.Source
	cfg         types.SearchConfig
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	stopped  bool
}

func NewManager(source sources.Source, cfg types.SearchConfig, idleTimeout time.Duration) *Manager {
	return &Manager{
		source:      source,
		cfg:         cfg,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Create registers a new session.
func (m *Manager) Create() *Session {
	s := newSession(m.source, m.cfg)

	m.mu.Lock()
	m.sessions[s.Id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	log.Debug().Str("session_id", s.Id).Int("active", count).Msg("session created")
	return s
}

// Get resolves a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, &types.ErrSessionNotFound{SessionId: id}
	}
	return s, nil
}

// Delete tears down a session. Deleting an unknown id is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		log.Debug().Str("session_id", id).Msg("session deleted")
	}
}

// Start runs the idle-session reaper until ctx is done. Call as a goroutine.
func (m *Manager) Start(ctx context.Context) {
	t := time.NewTicker(reapTick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.reap()
		}
	}
}

// Stop tears down every live session.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	stale := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		stale = append(stale, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
}

func (m *Manager) reap() {
	if m.idleTimeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		log.Debug().Str("session_id", s.Id).Msg("reaped idle session")
	}
}
