package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"celebrity-trivia/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RoundStore keeps issued rounds in Redis so any instance can score them.
// Rounds are stored as JSON under trivia:round:{id} and consumed with GETDEL.
type RoundStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoundStore(client *redis.Client, ttl time.Duration) *RoundStore {
	return &RoundStore{client: client, ttl: ttl}
}

func (s *RoundStore) Save(ctx context.Context, round domain.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	return s.client.Set(ctx, s.key(round.ID), data, s.ttl).Err()
}

func (s *RoundStore) Take(ctx context.Context, roundID string) (domain.Round, error) {
	data, err := s.client.GetDel(ctx, s.key(roundID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	if err != nil {
		return domain.Round{}, err
	}
	var round domain.Round
	if err := json.Unmarshal(data, &round); err != nil {
		return domain.Round{}, fmt.Errorf("unmarshal round: %w", err)
	}
	return round, nil
}

func (s *RoundStore) key(roundID string) string {
	return "trivia:round:" + roundID
}
