package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"advent-quiz-service/internal/domain"
	"advent-quiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionRepository caches questions in Redis (one JSON string per day) and falls back to a loader on miss.
// Questions are stored as: SET advent:question:{day} {json} EX ttl
type QuestionRepository struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, day int) (domain.Question, error) {
	if q, ok := r.cached(ctx, day); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(day), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := r.cached(ctx, day); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuestion(ctx, day)
		if err != nil {
			return domain.Question{}, err
		}

		payload, err := json.Marshal(q)
		if err != nil {
			return domain.Question{}, err
		}
		if err := r.client.Set(ctx, questionKey(day), payload, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache question day %d: %v", day, err)
		}
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// LoadQuestion lets the Redis cache sit behind the in-process cache.
func (r *QuestionRepository) LoadQuestion(ctx context.Context, day int) (domain.Question, error) {
	return r.GetQuestion(ctx, day)
}

// Invalidate drops a cached day, e.g. after reseeding.
func (r *QuestionRepository) Invalidate(ctx context.Context, day int) error {
	return r.client.Del(ctx, questionKey(day)).Err()
}

func (r *QuestionRepository) cached(ctx context.Context, day int) (domain.Question, bool) {
	raw, err := r.client.Get(ctx, questionKey(day)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached question day %d: %v", day, err)
		}
		return domain.Question{}, false
	}
	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		log.Printf("decode cached question day %d: %v", day, err)
		return domain.Question{}, false
	}
	return q, true
}

func questionKey(day int) string {
	return "advent:question:" + strconv.Itoa(day)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
