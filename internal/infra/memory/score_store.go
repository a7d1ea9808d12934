package memory

import (
	"context"
	"sync"
	"time"

	"celebrity-trivia/internal/domain"
)

// ScoreStore is an append-only in-memory score history.
type ScoreStore struct {
	clock func() time.Time

	mu     sync.RWMutex
	nextID int64
	scores []domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{clock: time.Now}
}

func (s *ScoreStore) AddScore(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock()
	}
	s.scores = append(s.scores, rec)
	return rec, nil
}

func (s *ScoreStore) Scores(_ context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreRecord, len(s.scores))
	copy(out, s.scores)
	return out, nil
}
