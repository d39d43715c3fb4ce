package postgres

import (
	"context"
	"fmt"

	"advent-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerStore persists player answers; the table's unique key makes Record first-write-wins.
type AnswerStore struct {
	pool *pgxpool.Pool
}

func NewAnswerStore(pool *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{pool: pool}
}

func (s *AnswerStore) Record(ctx context.Context, a domain.PlayerAnswer) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO player_answers (quiz_id, player_id, day_number, answer, is_correct, points, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (quiz_id, player_id, day_number) DO NOTHING`,
		a.QuizID, a.PlayerID, a.DayNumber, a.Answer, a.IsCorrect, a.Points, a.AnsweredAt)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (s *AnswerStore) HasAnswered(ctx context.Context, quizID, playerID string, day int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM player_answers WHERE quiz_id=$1 AND player_id=$2 AND day_number=$3)`,
		quizID, playerID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check answered: %w", err)
	}
	return exists, nil
}

func (s *AnswerStore) Answered(ctx context.Context, quizID, playerID string) ([]domain.AnsweredDay, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT day_number, is_correct, points FROM player_answers WHERE quiz_id=$1 AND player_id=$2 ORDER BY day_number`,
		quizID, playerID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := []domain.AnsweredDay{}
	for rows.Next() {
		var d domain.AnsweredDay
		if err := rows.Scan(&d.Day, &d.Correct, &d.Points); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *AnswerStore) TotalScore(ctx context.Context, quizID, playerID string) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM player_answers WHERE quiz_id=$1 AND player_id=$2`,
		quizID, playerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total score: %w", err)
	}
	return total, nil
}
