package memory

import (
	"context"
	"sync"
	"time"

	"celebrity-trivia/internal/domain"
)

// RoundStore is an in-memory implementation of app.RoundRepository.
type RoundStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu     sync.Mutex
	rounds map[string]storedRound
}

type storedRound struct {
	round     domain.Round
	expiresAt time.Time
}

// NewRoundStore keeps rounds for ttl; a non-positive ttl keeps them until taken.
func NewRoundStore(ttl time.Duration) *RoundStore {
	return &RoundStore{
		ttl:    ttl,
		clock:  time.Now,
		rounds: make(map[string]storedRound),
	}
}

func (s *RoundStore) Save(_ context.Context, round domain.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.evictLocked(now)
	entry := storedRound{round: round}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.rounds[round.ID] = entry
	return nil
}

func (s *RoundStore) Take(_ context.Context, roundID string) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rounds[roundID]
	if !ok {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	delete(s.rounds, roundID)
	if s.expired(entry, s.clock()) {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	return entry.round, nil
}

func (s *RoundStore) evictLocked(now time.Time) {
	for id, entry := range s.rounds {
		if s.expired(entry, now) {
			delete(s.rounds, id)
		}
	}
}

func (s *RoundStore) expired(entry storedRound, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !entry.expiresAt.After(now)
}
