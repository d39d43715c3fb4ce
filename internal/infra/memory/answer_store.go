package memory

import (
	"context"
	"sync"

	"advent-quiz-service/internal/domain"
)

type answerKey struct {
	quizID   string
	playerID string
}

// AnswerStore is an in-memory implementation of app.AnswerRepository.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[answerKey]map[int]domain.PlayerAnswer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[answerKey]map[int]domain.PlayerAnswer)}
}

func (s *AnswerStore) Record(_ context.Context, answer domain.PlayerAnswer) error {
	key := answerKey{quizID: answer.QuizID, playerID: answer.PlayerID}

	s.mu.Lock()
	defer s.mu.Unlock()
	days, ok := s.answers[key]
	if !ok {
		days = make(map[int]domain.PlayerAnswer)
		s.answers[key] = days
	}
	if _, dup := days[answer.DayNumber]; dup {
		return domain.ErrAlreadyAnswered
	}
	days[answer.DayNumber] = answer
	return nil
}

func (s *AnswerStore) HasAnswered(_ context.Context, quizID, playerID string, day int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.answers[answerKey{quizID: quizID, playerID: playerID}][day]
	return ok, nil
}

func (s *AnswerStore) Answered(_ context.Context, quizID, playerID string) ([]domain.AnsweredDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := s.answers[answerKey{quizID: quizID, playerID: playerID}]
	out := make([]domain.AnsweredDay, 0, len(days))
	for _, a := range days {
		out = append(out, domain.AnsweredDay{Day: a.DayNumber, Correct: a.IsCorrect, Points: a.Points})
	}
	return out, nil
}

func (s *AnswerStore) TotalScore(_ context.Context, quizID, playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, a := range s.answers[answerKey{quizID: quizID, playerID: playerID}] {
		total += a.Points
	}
	return total, nil
}
