package memory

import (
	"sync"

	"finlit-quiz-service/internal/app"
	"github.com/google/uuid"
)

// SessionRegistry tracks live sessions by ID. Each interactive connection
// owns exactly one session at a time.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

// Put stores a session under a fresh ID and returns the ID.
func (r *SessionRegistry) Put(session *app.Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
	return id
}

func (r *SessionRegistry) Get(id string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Replace swaps the session stored under an existing ID.
func (r *SessionRegistry) Replace(id string, session *app.Session) {
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
