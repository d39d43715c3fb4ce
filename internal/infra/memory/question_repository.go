package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"advent-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a day's question from a backing store (Postgres, Redis, a seed file).
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, day int) (domain.Question, error)
}

// QuestionRepository caches questions per day with TTL to avoid repeated store hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int]cachedQuestion
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedQuestion),
	}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, day int) (domain.Question, error) {
	if q, ok := r.cached(day); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(day), func() (interface{}, error) {
		if q, ok := r.cached(day); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuestion(ctx, day)
		if err != nil {
			return domain.Question{}, err
		}

		r.mu.Lock()
		r.cache[day] = cachedQuestion{
			question:  q,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// Invalidate drops a cached day, e.g. after reseeding.
func (r *QuestionRepository) Invalidate(day int) {
	r.mu.Lock()
	delete(r.cache, day)
	r.mu.Unlock()
}

func (r *QuestionRepository) cached(day int) (domain.Question, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[day]; ok && entry.expiresAt.After(now) {
		return entry.question, true
	}
	return domain.Question{}, false
}

func (r *QuestionRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a loader backed by an in-memory map (seed files, tests, demos).
type StaticQuestionLoader struct {
	questions map[int]domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	byDay := make(map[int]domain.Question, len(questions))
	for _, q := range questions {
		byDay[q.DayNumber] = q
	}
	return &StaticQuestionLoader{questions: byDay}
}

func (l *StaticQuestionLoader) LoadQuestion(_ context.Context, day int) (domain.Question, error) {
	if q, ok := l.questions[day]; ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
