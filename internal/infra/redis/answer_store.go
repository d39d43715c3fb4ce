package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"advent-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// recordScript stores the answer only if the day is still free and adds its points in the same step.
var recordScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('HINCRBY', KEYS[2], ARGV[3], ARGV[4])
return 1
`)

// AnswerStore keeps answers and running scores in Redis; it implements app.AnswerRepository.
// Answers are stored as: HSET quiz:{quizID}:player:{playerID}:answers {day} {json}
// Scores are stored as:  HINCRBY quiz:{quizID}:scores {playerID} {points}
type AnswerStore struct {
	client *redis.Client
}

func NewAnswerStore(client *redis.Client) *AnswerStore {
	return &AnswerStore{client: client}
}

type storedAnswer struct {
	Answer     string    `json:"answer"`
	Correct    bool      `json:"correct"`
	Points     int       `json:"points"`
	AnsweredAt time.Time `json:"answered_at"`
}

func (s *AnswerStore) Record(ctx context.Context, answer domain.PlayerAnswer) error {
	payload, err := json.Marshal(storedAnswer{
		Answer:     answer.Answer,
		Correct:    answer.IsCorrect,
		Points:     answer.Points,
		AnsweredAt: answer.AnsweredAt,
	})
	if err != nil {
		return err
	}
	keys := []string{answersKey(answer.QuizID, answer.PlayerID), scoresKey(answer.QuizID)}
	stored, err := recordScript.Run(ctx, s.client, keys, answer.DayNumber, payload, answer.PlayerID, answer.Points).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (s *AnswerStore) HasAnswered(ctx context.Context, quizID, playerID string, day int) (bool, error) {
	return s.client.HExists(ctx, answersKey(quizID, playerID), strconv.Itoa(day)).Result()
}

func (s *AnswerStore) Answered(ctx context.Context, quizID, playerID string) ([]domain.AnsweredDay, error) {
	raw, err := s.client.HGetAll(ctx, answersKey(quizID, playerID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.AnsweredDay, 0, len(raw))
	for field, value := range raw {
		day, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		var a storedAnswer
		if err := json.Unmarshal([]byte(value), &a); err != nil {
			return nil, err
		}
		out = append(out, domain.AnsweredDay{Day: day, Correct: a.Correct, Points: a.Points})
	}
	return out, nil
}

func (s *AnswerStore) TotalScore(ctx context.Context, quizID, playerID string) (int, error) {
	total, err := s.client.HGet(ctx, scoresKey(quizID), playerID).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return total, err
}

func answersKey(quizID, playerID string) string {
	return "quiz:" + quizID + ":player:" + playerID + ":answers"
}

func scoresKey(quizID string) string {
	return "quiz:" + quizID + ":scores"
}
