package memory

import (
	"sync"
	"time"

	"advent-quiz-service/internal/app"
)

// SessionStore keeps live quiz sessions in process memory; it implements app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock is test-only for deterministic leaderboard tie-breaks.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{sessions: make(map[string]*app.Session), now: now}
}

func (s *SessionStore) GetOrCreate(quizID string) *app.Session {
	if session, ok := s.Get(quizID); ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another join may have created it between the locks
	if session, ok := s.sessions[quizID]; ok {
		return session
	}
	session := app.NewSessionWithClock(quizID, s.now)
	s.sessions[quizID] = session
	return session
}

func (s *SessionStore) Get(quizID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[quizID]
	return session, ok
}

func (s *SessionStore) DeleteIfEmpty(quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[quizID]; ok && session.IsEmpty() {
		delete(s.sessions, quizID)
	}
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
