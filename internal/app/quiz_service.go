package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"advent-quiz-service/internal/domain"
	"advent-quiz-service/internal/validation"
)

// DefaultPointsPerCorrect is awarded for each correct answer unless configured otherwise.
const DefaultPointsPerCorrect = 10

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(quizID string) *Session
	Get(quizID string) (*Session, bool)
	DeleteIfEmpty(quizID string)
}

// QuestionRepository loads questions (from cache/backing store).
type QuestionRepository interface {
	GetQuestion(ctx context.Context, day int) (domain.Question, error)
}

// AnswerRepository records answers; Record must reject a second answer for the same
// quiz, player and day with domain.ErrAlreadyAnswered.
type AnswerRepository interface {
	Record(ctx context.Context, answer domain.PlayerAnswer) error
	HasAnswered(ctx context.Context, quizID, playerID string, day int) (bool, error)
	Answered(ctx context.Context, quizID, playerID string) ([]domain.AnsweredDay, error)
	TotalScore(ctx context.Context, quizID, playerID string) (int, error)
}

// AnswerChecker grades a free-text answer for a day.
type AnswerChecker interface {
	Check(ctx context.Context, userAnswer, correctAnswer string, day int) validation.Verdict
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithPointsPerCorrect overrides DefaultPointsPerCorrect.
func WithPointsPerCorrect(points int) Option {
	return func(s *QuizService) {
		if points > 0 {
			s.points = points
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionRepository
	answers   AnswerRepository
	checker   AnswerChecker
	points    int
	now       func() time.Time
}

func NewQuizService(store SessionRepository, questions QuestionRepository, answers AnswerRepository, checker AnswerChecker, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  store,
		questions: questions,
		answers:   answers,
		checker:   checker,
		points:    DefaultPointsPerCorrect,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return newSession(id)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return newSessionWithClock(id, now)
}

// Join registers or refreshes a participant in a quiz session.
func (s *QuizService) Join(_ context.Context, quizID, userID, displayName string) (domain.Leaderboard, error) {
	session := s.sessions.GetOrCreate(quizID)
	return session.join(userID, displayName), nil
}

// Question returns the public view of the question for day.
func (s *QuizService) Question(ctx context.Context, day int) (domain.QuestionView, error) {
	if err := domain.ValidateDay(day); err != nil {
		return domain.QuestionView{}, err
	}
	q, err := s.questions.GetQuestion(ctx, day)
	if err != nil {
		return domain.QuestionView{}, err
	}
	return q.View(), nil
}

// Check grades an answer for day without recording anything.
func (s *QuizService) Check(ctx context.Context, day int, answer string) (validation.Verdict, error) {
	if err := domain.ValidateDay(day); err != nil {
		return validation.Verdict{}, err
	}
	q, err := s.questions.GetQuestion(ctx, day)
	if err != nil {
		return validation.Verdict{}, err
	}
	return s.checker.Check(ctx, answer, q.CorrectAnswer, day), nil
}

// SubmitAnswer grades, records and scores an answer, then updates the leaderboard.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, userID string, submission domain.AnswerSubmission) (domain.Leaderboard, domain.AnswerResult, error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return domain.Leaderboard{}, domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	if !session.has(userID) {
		return domain.Leaderboard{}, domain.AnswerResult{}, domain.ErrParticipantNotFound
	}
	if err := domain.ValidateDay(submission.DayNumber); err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	question, err := s.questions.GetQuestion(ctx, submission.DayNumber)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	// Cheap pre-check so a repeated submission never reaches the oracle; Record enforces it atomically.
	answered, err := s.answers.HasAnswered(ctx, quizID, userID, submission.DayNumber)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}
	if answered {
		return domain.Leaderboard{}, domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	verdict := s.checker.Check(ctx, submission.Answer, question.CorrectAnswer, submission.DayNumber)
	awarded := 0
	if verdict.IsCorrect {
		awarded = s.points
	}

	err = s.answers.Record(ctx, domain.PlayerAnswer{
		QuizID:     quizID,
		PlayerID:   userID,
		DayNumber:  submission.DayNumber,
		Answer:     submission.Answer,
		IsCorrect:  verdict.IsCorrect,
		Points:     awarded,
		AnsweredAt: s.now(),
	})
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	total, err := s.answers.TotalScore(ctx, quizID, userID)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}
	lb, err := session.setScore(userID, total)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	result := domain.AnswerResult{
		DayNumber:  submission.DayNumber,
		Correct:    verdict.IsCorrect,
		Awarded:    awarded,
		TotalScore: total,
		Confidence: verdict.Confidence,
		Reasoning:  verdict.Reasoning,
		Method:     string(verdict.Method),
	}
	if !verdict.IsCorrect {
		result.CorrectAnswer = question.CorrectAnswer
	}
	return lb, result, nil
}

// Answered lists the days a player already answered in a quiz.
func (s *QuizService) Answered(ctx context.Context, quizID, userID string) ([]domain.AnsweredDay, error) {
	days, err := s.answers.Answered(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days, nil
}

// Subscribe returns a channel that receives leaderboard updates for a quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave removes a participant from the session and drops the session if empty.
func (s *QuizService) Leave(_ context.Context, quizID, userID string) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return
	}
	session.leave(userID)
	if session.isEmpty() {
		s.sessions.DeleteIfEmpty(quizID)
	}
}

// IsNotFound reports whether err means the requested quiz content does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrQuestionNotFound) || errors.Is(err, domain.ErrInvalidDay)
}

// Session is an in-memory representation of a running quiz.
type Session struct {
	id           string
	now          func() time.Time
	mu           sync.RWMutex
	participants map[string]*domain.Participant
	subscribers  map[chan domain.Leaderboard]struct{}
}

func newSession(id string) *Session {
	return newSessionWithClock(id, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:           id,
		now:          now,
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[chan domain.Leaderboard]struct{}),
	}
}

func (s *Session) join(userID, displayName string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if participant, ok := s.participants[userID]; ok {
		participant.DisplayName = displayName
		participant.LastUpdated = now
	} else {
		s.participants[userID] = &domain.Participant{
			UserID:      userID,
			DisplayName: displayName,
			Score:       0,
			LastUpdated: now,
		}
	}
	return s.broadcastLocked()
}

func (s *Session) has(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[userID]
	return ok
}

// setScore stores the recomputed total of a participant. The timestamp only moves when the
// score changes so that ties are broken by who reached the score first.
func (s *Session) setScore(userID string, total int) (domain.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[userID]
	if !ok {
		return domain.Leaderboard{}, domain.ErrParticipantNotFound
	}
	if participant.Score != total {
		participant.Score = total
		participant.LastUpdated = s.now()
	}
	return s.broadcastLocked(), nil
}

func (s *Session) leave(userID string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, userID)
	return s.broadcastLocked()
}

func (s *Session) isEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants) == 0
}

// IsEmpty reports whether the session has no participants.
func (s *Session) IsEmpty() bool {
	return s.isEmpty()
}

func (s *Session) subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Leaderboard {
	lb := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: drop its oldest update
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return lb
}

func (s *Session) snapshotLocked() domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(s.participants))
	for _, participant := range s.participants {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      participant.UserID,
			DisplayName: participant.DisplayName,
			Score:       participant.Score,
		})
	}

	// score desc, then who reached it first, then name
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		pi := s.participants[entries[i].UserID]
		pj := s.participants[entries[j].UserID]
		if pi != nil && pj != nil && !pi.LastUpdated.Equal(pj.LastUpdated) {
			return pi.LastUpdated.Before(pj.LastUpdated)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	return domain.Leaderboard{
		QuizID:    s.id,
		Entries:   entries,
		UpdatedAt: s.now(),
	}
}
