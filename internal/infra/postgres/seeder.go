package postgres

import (
	"context"
	"time"

	"advent-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	DayNumber int             `bun:"day_number,pk"`
	Data      domain.Question `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// SeedQuestions upserts questions by day and returns how many rows were written.
func SeedQuestions(ctx context.Context, db bun.IDB, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow{DayNumber: q.DayNumber, Data: q, UpdatedAt: now})
	}
	res, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (day_number) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
