package core

import "sync"

// SessionContext carries per-session identity and lifecycle flags into every
// node. Immutable fields (SessionID, UserID) are plain values; the mutable
// termination flag is guarded so a concurrent external Terminate is observed
// by the next step.
type SessionContext struct {
	SessionID string
	UserID    string

	mu         sync.RWMutex
	terminated bool
}

// NewSessionContext creates a session context for the given session and user.
func NewSessionContext(sessionID, userID string) *SessionContext {
	return &SessionContext{SessionID: sessionID, UserID: userID}
}

// Terminate marks the session as ended. Once set, the engine refuses to
// advance the session further.
func (s *SessionContext) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = true
}

// Terminated reports whether the session has been marked as ended.
func (s *SessionContext) Terminated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminated
}
