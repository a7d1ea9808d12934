package postgres

import (
	"context"
	"fmt"
	"time"

	"celebrity-trivia/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore appends score records to Postgres.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) AddScore(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trivia_scores (created_at, num_correct, num_incorrect, num_answers)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, rec.CreatedAt, rec.NumCorrect, rec.NumIncorrect, rec.NumAnswers).Scan(&rec.ID)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("insert score: %w", err)
	}
	return rec, nil
}

func (s *ScoreStore) Scores(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, num_correct, num_incorrect, num_answers
		FROM trivia_scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	scores := make([]domain.ScoreRecord, 0)
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.NumCorrect, &rec.NumIncorrect, &rec.NumAnswers); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, rec)
	}
	return scores, rows.Err()
}
