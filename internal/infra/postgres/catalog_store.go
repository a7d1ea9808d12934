package postgres

import (
	"context"
	"errors"
	"fmt"

	"celebrity-trivia/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogStore keeps movies, people and cast links in Postgres.
// Creation relies on ON CONFLICT DO NOTHING, so concurrent callers create a row at most once.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

func (s *CatalogStore) GetOrCreateMovie(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error) {
	var created domain.Movie
	err := s.pool.QueryRow(ctx, `
		INSERT INTO movies (id, title) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING id, title`, movie.ID, movie.Title).Scan(&created.ID, &created.Title)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, false, fmt.Errorf("insert movie %d: %w", movie.ID, err)
	}
	existing, err := s.Movie(ctx, movie.ID)
	return existing, false, err
}

func (s *CatalogStore) GetOrCreatePerson(ctx context.Context, person domain.Person) (domain.Person, bool, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO people (id, name, profile_path) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING id, name, profile_path, profile_image`, person.ID, person.Name, nullable(person.ProfilePath))
	created, err := scanPerson(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Person{}, false, fmt.Errorf("insert person %d: %w", person.ID, err)
	}

	row = s.pool.QueryRow(ctx, `SELECT id, name, profile_path, profile_image FROM people WHERE id = $1`, person.ID)
	existing, err := scanPerson(row)
	if err != nil {
		return domain.Person{}, false, fmt.Errorf("load person %d: %w", person.ID, err)
	}
	return existing, false, nil
}

func (s *CatalogStore) Movie(ctx context.Context, movieID int) (domain.Movie, error) {
	var movie domain.Movie
	err := s.pool.QueryRow(ctx, `SELECT id, title FROM movies WHERE id = $1`, movieID).Scan(&movie.ID, &movie.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	if err != nil {
		return domain.Movie{}, fmt.Errorf("load movie %d: %w", movieID, err)
	}
	return movie, nil
}

func (s *CatalogStore) AddCastMember(ctx context.Context, movieID, personID int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO movie_cast (movie_id, person_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, movieID, personID)
	if err != nil {
		return fmt.Errorf("link person %d to movie %d: %w", personID, movieID, err)
	}
	return nil
}

func (s *CatalogStore) Cast(ctx context.Context, movieID int) ([]domain.Person, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, p.profile_path, p.profile_image
		FROM movie_cast mc
		INNER JOIN people p ON p.id = mc.person_id
		WHERE mc.movie_id = $1
		ORDER BY mc.position`, movieID)
	if err != nil {
		return nil, fmt.Errorf("query cast of %d: %w", movieID, err)
	}
	defer rows.Close()

	cast := make([]domain.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cast member: %w", err)
		}
		cast = append(cast, p)
	}
	return cast, rows.Err()
}

func (s *CatalogStore) People(ctx context.Context, ids []int) ([]domain.Person, error) {
	if len(ids) == 0 {
		return []domain.Person{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, profile_path, profile_image
		FROM people WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]domain.Person, len(ids))
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Person, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *CatalogStore) SetProfileImage(ctx context.Context, personID int, location string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE people SET profile_image = $1 WHERE id = $2`, location, personID)
	if err != nil {
		return fmt.Errorf("set profile image of %d: %w", personID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func scanPerson(row pgx.Row) (domain.Person, error) {
	var p domain.Person
	var path, image *string
	if err := row.Scan(&p.ID, &p.Name, &path, &image); err != nil {
		return domain.Person{}, err
	}
	if path != nil {
		p.ProfilePath = *path
	}
	if image != nil {
		p.ProfileImage = *image
	}
	return p, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
