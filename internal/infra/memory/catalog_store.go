package memory

import (
	"context"
	"sync"

	"celebrity-trivia/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogRepository.
// A single lock makes every get-or-create atomic per id.
type CatalogStore struct {
	mu     sync.RWMutex
	movies map[int]domain.Movie
	people map[int]domain.Person
	cast   map[int][]int
	linked map[int]map[int]struct{}
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		movies: make(map[int]domain.Movie),
		people: make(map[int]domain.Person),
		cast:   make(map[int][]int),
		linked: make(map[int]map[int]struct{}),
	}
}

func (s *CatalogStore) GetOrCreateMovie(_ context.Context, movie domain.Movie) (domain.Movie, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.movies[movie.ID]; ok {
		return existing, false, nil
	}
	s.movies[movie.ID] = movie
	return movie, true, nil
}

func (s *CatalogStore) GetOrCreatePerson(_ context.Context, person domain.Person) (domain.Person, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.people[person.ID]; ok {
		return existing, false, nil
	}
	person.Character = ""
	s.people[person.ID] = person
	return person, true, nil
}

func (s *CatalogStore) Movie(_ context.Context, movieID int) (domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movie, ok := s.movies[movieID]
	if !ok {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	return movie, nil
}

func (s *CatalogStore) AddCastMember(_ context.Context, movieID, personID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[movieID]; !ok {
		return domain.ErrMovieNotFound
	}
	if _, ok := s.people[personID]; !ok {
		return domain.ErrPersonNotFound
	}
	set, ok := s.linked[movieID]
	if !ok {
		set = make(map[int]struct{})
		s.linked[movieID] = set
	}
	if _, dup := set[personID]; dup {
		return nil
	}
	set[personID] = struct{}{}
	s.cast[movieID] = append(s.cast[movieID], personID)
	return nil
}

func (s *CatalogStore) Cast(_ context.Context, movieID int) ([]domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.cast[movieID]
	out := make([]domain.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.people[id])
	}
	return out, nil
}

func (s *CatalogStore) People(_ context.Context, ids []int) ([]domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int]struct{}, len(ids))
	out := make([]domain.Person, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.people[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogStore) SetProfileImage(_ context.Context, personID int, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[personID]
	if !ok {
		return domain.ErrPersonNotFound
	}
	p.ProfileImage = location
	s.people[personID] = p
	return nil
}
