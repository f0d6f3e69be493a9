// ABOUTME: Session lifecycle management: create, look up, abort, and serialized turn delivery
// ABOUTME: Sessions are fully isolated; only the knowledge index is shared, read-only
package dialog

import (
	"context"
	"fmt"
	"sync"

	"github.com/welldesk/careline/internal/models"
)

// Session is one patient conversation. Its mutex guarantees the
// single-threaded cooperative turn loop: a new turn never starts before
// the previous turn's handler, retrieval, and safety check complete.
type Session struct {
	State *models.ConversationState
	Phase Phase

	mu sync.Mutex
}

// SessionView is a point-in-time summary of a session, safe to read while
// another goroutine is delivering a turn.
type SessionView struct {
	Phase     Phase
	Task      models.TaskType
	Escalated bool
	Turns     int
}

// Snapshot takes the session lock and returns a consistent view. Callers
// inspecting a session from outside the turn loop must use this instead of
// reading State directly.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		Phase:     s.Phase,
		Task:      s.State.ActiveTask,
		Escalated: s.State.Escalated,
		Turns:     len(s.State.Turns),
	}
}

// Manager owns session lifecycle for the hosting context
type Manager struct {
	orch *Orchestrator

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager around one orchestrator
func NewManager(orch *Orchestrator) *Manager {
	return &Manager{
		orch:     orch,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session for an authenticated patient
func (m *Manager) Create(patientID int64) *Session {
	sess := &Session{
		State: models.NewConversationState(patientID),
		Phase: PhaseIdle,
	}

	m.mu.Lock()
	m.sessions[sess.State.SessionID] = sess
	m.mu.Unlock()

	return sess
}

// Get looks up a session by id
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// SendMessage delivers one utterance to a session. Turns of the same
// session are processed strictly one at a time.
func (m *Manager) SendMessage(ctx context.Context, sessionID, utterance string) (Reply, error) {
	sess, ok := m.Get(sessionID)
	if !ok {
		return Reply{}, fmt.Errorf("unknown session %q", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply, err := m.orch.ProcessTurn(ctx, sess, utterance)
	if err != nil {
		return Reply{}, err
	}
	if reply.Ended {
		m.remove(sessionID)
	}
	return reply, nil
}

// ProcessTurn runs one turn on a directly held session
func (m *Manager) ProcessTurn(ctx context.Context, sess *Session, utterance string) (Reply, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return m.orch.ProcessTurn(ctx, sess, utterance)
}

// Abort discards a session between turns. Any uncommitted confirmation
// is dropped along with the state.
func (m *Manager) Abort(sessionID string) bool {
	sess, ok := m.Get(sessionID)
	if !ok {
		return false
	}

	// Waits for an in-flight turn; sessions are never aborted mid-turn
	sess.mu.Lock()
	defer sess.mu.Unlock()
	m.remove(sessionID)
	return true
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
