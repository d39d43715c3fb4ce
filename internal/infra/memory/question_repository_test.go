package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"advent-quiz-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)

	q, err := repo.GetQuestion(context.Background(), 9)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.CorrectAnswer != "110 km/h" {
		t.Fatalf("unexpected question %+v", q)
	}
	if _, err := repo.GetQuestion(context.Background(), 9); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Date(2025, 12, 9, 8, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestion(context.Background(), 9)
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestion(context.Background(), 9)
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}

	repo.Invalidate(9)
	_, _ = repo.GetQuestion(context.Background(), 9)
	if loader.calls.Load() != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls.Load())
	}
}

func TestQuestionRepositoryDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuestion(context.Background(), 5); !errors.Is(err, domain.ErrQuestionNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected misses to hit the loader, calls %d", loader.calls.Load())
	}
}

func TestQuestionRepositoryCollapsesConcurrentLoads(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions()), gate: release}
	repo := NewQuestionRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuestion(context.Background(), 9); err != nil {
				t.Errorf("get question: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loader.calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", loader.calls.Load())
	}
}

type countingLoader struct {
	QuestionLoader
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) LoadQuestion(ctx context.Context, day int) (domain.Question, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.QuestionLoader.LoadQuestion(ctx, day)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{DayNumber: 9, Text: "How fast can a reindeer run?", CorrectAnswer: "110 km/h"},
		{DayNumber: 13, Text: "Which saint is celebrated on 13 December?", CorrectAnswer: "Lucia"},
	}
}
