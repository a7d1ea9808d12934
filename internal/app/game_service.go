package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"celebrity-trivia/internal/domain"
	"celebrity-trivia/internal/metrics"
	"celebrity-trivia/internal/tmdb"
	"github.com/google/uuid"
)

// CatalogRepository is the local cache of movies, people and cast links.
// GetOrCreate* return the stored record untouched when the id already exists;
// the bool reports whether this call created it.
type CatalogRepository interface {
	GetOrCreateMovie(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error)
	GetOrCreatePerson(ctx context.Context, person domain.Person) (domain.Person, bool, error)
	Movie(ctx context.Context, movieID int) (domain.Movie, error)
	// AddCastMember links a person to a movie; repeated links are no-ops.
	AddCastMember(ctx context.Context, movieID, personID int) error
	// Cast lists a movie's people in link order.
	Cast(ctx context.Context, movieID int) ([]domain.Person, error)
	// People returns the known people among ids, in ids order, without duplicates.
	People(ctx context.Context, ids []int) ([]domain.Person, error)
	SetProfileImage(ctx context.Context, personID int, location string) error
}

// ScoreRepository is the append-only score history.
type ScoreRepository interface {
	AddScore(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error)
	Scores(ctx context.Context) ([]domain.ScoreRecord, error)
}

// RoundRepository keeps issued rounds until they are submitted or expire.
type RoundRepository interface {
	Save(ctx context.Context, round domain.Round) error
	// Take returns and forgets the round, or domain.ErrRoundNotFound.
	Take(ctx context.Context, roundID string) (domain.Round, error)
}

// Metadata is the part of the remote catalog the game reads.
type Metadata interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.MovieResult, error)
	Movie(ctx context.Context, movieID int) (tmdb.MovieResult, error)
	Credits(ctx context.Context, movieID int) ([]tmdb.CastCredit, error)
	Recommendations(ctx context.Context, movieID int) ([]tmdb.MovieResult, error)
}

// GameOptions controls round generation.
type GameOptions struct {
	NumOptions int
	// NumCorrect fixes the number of true cast members shown; 0 draws it per round.
	NumCorrect int
	// Seed returns the seed for each round's random source. Defaults to the clock.
	Seed func() int64
	Now  func() time.Time
}

// GameService runs rounds: movie resolution, option generation and scoring.
type GameService struct {
	catalog CatalogRepository
	scores  ScoreRepository
	rounds  RoundRepository
	meta    Metadata
	decoys  *DecoySelector
	opts    GameOptions
}

func NewGameService(catalog CatalogRepository, scores ScoreRepository, rounds RoundRepository, meta Metadata, opts GameOptions) *GameService {
	if opts.NumOptions <= 0 {
		opts.NumOptions = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &GameService{
		catalog: catalog,
		scores:  scores,
		rounds:  rounds,
		meta:    meta,
		decoys:  NewDecoySelector(catalog, meta),
		opts:    opts,
	}
}

// SearchMovies returns "Title (Year)" suggestions. An empty query makes no request.
func (s *GameService) SearchMovies(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchHit{}, nil
	}
	results, err := s.meta.SearchMovies(ctx, query)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, domain.SearchHit{ID: r.ID, Text: r.SearchText()})
	}
	return hits, nil
}

// StartRound generates the option set for rawMovieID. A missing or malformed id
// yields a notice and touches nothing.
func (s *GameService) StartRound(ctx context.Context, rawMovieID string) (domain.Result[domain.Round], error) {
	rawMovieID = strings.TrimSpace(rawMovieID)
	if rawMovieID == "" {
		return domain.Notice[domain.Round]("Nothing was submitted."), nil
	}
	movieID, err := strconv.Atoi(rawMovieID)
	if err != nil || movieID <= 0 {
		return domain.Notice[domain.Round](fmt.Sprintf("%q is not a movie id.", rawMovieID)), nil
	}

	rnd := rand.New(rand.NewSource(s.opts.Seed()))
	numCorrect := s.numCorrect(rnd)
	numWrong := s.opts.NumOptions - numCorrect

	movie, err := s.resolveMovie(ctx, movieID)
	if err != nil {
		return domain.Result[domain.Round]{}, err
	}
	slog.Info("generating options", "movie", movie.Title, "correct", numCorrect, "wrong", numWrong)

	cast, err := s.resolveCast(ctx, movie.ID)
	if err != nil {
		return domain.Result[domain.Round]{}, err
	}

	options, err := s.decoys.BuildOptions(ctx, rnd, movie, cast, numCorrect, numWrong)
	if err != nil {
		return domain.Result[domain.Round]{}, err
	}

	round := domain.Round{
		ID:         uuid.NewString(),
		Movie:      movie,
		Options:    options,
		NumCorrect: numCorrect,
		NumWrong:   numWrong,
		CreatedAt:  s.opts.Now(),
	}
	if s.rounds != nil {
		if err := s.rounds.Save(ctx, round); err != nil {
			return domain.Result[domain.Round]{}, fmt.Errorf("save round: %w", err)
		}
	}
	metrics.RoundsStarted.Inc()
	return domain.Ok(round), nil
}

// SubmitRound scores a submission and appends exactly one score record.
func (s *GameService) SubmitRound(ctx context.Context, sub domain.Submission) (domain.Result[domain.Scorecard], error) {
	movieID, optionIDs := sub.MovieID, sub.OptionIDs
	var taken *domain.Round
	if sub.RoundID != "" && s.rounds != nil {
		round, err := s.rounds.Take(ctx, sub.RoundID)
		if errors.Is(err, domain.ErrRoundNotFound) {
			return domain.Notice[domain.Scorecard]("This round has expired, start a new one."), nil
		}
		if err != nil {
			return domain.Result[domain.Scorecard]{}, fmt.Errorf("load round: %w", err)
		}
		taken = &round
		movieID, optionIDs = round.Movie.ID, round.OptionIDs()
	}

	movie, err := s.catalog.Movie(ctx, movieID)
	if errors.Is(err, domain.ErrMovieNotFound) {
		return domain.Notice[domain.Scorecard]("Unknown movie, start a new round."), nil
	}
	if err != nil {
		return domain.Result[domain.Scorecard]{}, err
	}

	cast, err := s.catalog.Cast(ctx, movie.ID)
	if err != nil {
		return domain.Result[domain.Scorecard]{}, err
	}
	all, err := s.catalog.People(ctx, optionIDs)
	if err != nil {
		return domain.Result[domain.Scorecard]{}, err
	}
	picked, err := s.catalog.People(ctx, sub.Selected)
	if err != nil {
		return domain.Result[domain.Scorecard]{}, err
	}

	card := Score(movie, cast, all, picked)
	card.Score.CreatedAt = s.opts.Now()
	rec, err := s.scores.AddScore(ctx, card.Score)
	if err != nil {
		s.restoreRound(ctx, taken)
		return domain.Result[domain.Scorecard]{}, fmt.Errorf("add score: %w", err)
	}
	card.Score = rec
	metrics.RoundsSubmitted.Inc()

	s.annotateCharacters(ctx, &card)
	return domain.Ok(card), nil
}

// restoreRound puts a taken round back so the player can resubmit after a failed
// score write.
func (s *GameService) restoreRound(ctx context.Context, round *domain.Round) {
	if round == nil {
		return
	}
	if err := s.rounds.Save(ctx, *round); err != nil {
		slog.Error("failed to restore round", "round_id", round.ID, "error", err)
	}
}

// ListScores returns the whole score history, oldest first.
func (s *GameService) ListScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.scores.Scores(ctx)
}

func (s *GameService) numCorrect(rnd *rand.Rand) int {
	if s.opts.NumCorrect > 0 {
		return s.opts.NumCorrect
	}
	return rnd.Intn(s.opts.NumOptions) + 1
}

// resolveMovie is cache-first: the catalog is only asked when the id is unknown.
func (s *GameService) resolveMovie(ctx context.Context, movieID int) (domain.Movie, error) {
	movie, err := s.catalog.Movie(ctx, movieID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, domain.ErrMovieNotFound) {
		return domain.Movie{}, err
	}

	detail, err := s.meta.Movie(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	movie, _, err = s.catalog.GetOrCreateMovie(ctx, detail.Movie())
	return movie, err
}

func (s *GameService) resolveCast(ctx context.Context, movieID int) ([]domain.Person, error) {
	credits, err := s.meta.Credits(ctx, movieID)
	if err != nil {
		return nil, err
	}
	for _, c := range credits {
		p, _, err := s.catalog.GetOrCreatePerson(ctx, c.Person())
		if err != nil {
			return nil, err
		}
		if err := s.catalog.AddCastMember(ctx, movieID, p.ID); err != nil {
			return nil, err
		}
	}
	return s.catalog.Cast(ctx, movieID)
}

// annotateCharacters attaches character names for display. Failures only cost
// the annotation; the score is already stored.
func (s *GameService) annotateCharacters(ctx context.Context, card *domain.Scorecard) {
	credits, err := s.meta.Credits(ctx, card.Movie.ID)
	if err != nil {
		slog.Warn("skipping character annotation", "movie_id", card.Movie.ID, "error", err)
		return
	}
	characters := make(map[int]string, len(credits))
	for _, c := range credits {
		if _, ok := characters[c.ID]; !ok && c.Character != "" {
			characters[c.ID] = c.Character
		}
	}
	for _, list := range [][]domain.Person{card.AllChoices, card.RightChoices, card.WrongChoices, card.CorrectAnswers} {
		for i := range list {
			if name, ok := characters[list[i].ID]; ok {
				list[i].Character = name
			}
		}
	}
}
