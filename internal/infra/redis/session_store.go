package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"advent-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions and their broadcast stay in process; Redis holds a liveness marker per quiz so
// other instances and operators can see which quizzes are running. Scores live in AnswerStore.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(quizID string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[quizID]
	if !ok {
		session = app.NewSession(quizID)
		s.sessions[quizID] = session
	}
	// every join refreshes the marker
	if err := s.client.Set(context.Background(), sessionKey(quizID), "1", s.ttl).Err(); err != nil {
		log.Printf("mark session %s live: %v", quizID, err)
	}
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
	session, ok := s.sessions[quizID]
	if !ok || !session.IsEmpty() {
		return
	}
	delete(s.sessions, quizID)
	if err := s.client.Del(context.Background(), sessionKey(quizID)).Err(); err != nil {
		log.Printf("clear session %s: %v", quizID, err)
	}
}

// Live reports whether any instance marked quizID as running.
func (s *SessionStore) Live(ctx context.Context, quizID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(quizID)).Result()
	return n > 0, err
}

func sessionKey(quizID string) string {
	return "quiz:session:" + quizID
}
