package app_test

import (
	"context"
	"sync"

	"celebrity-trivia/internal/tmdb"
)

// fakeMetadata serves a canned catalog and counts calls per endpoint.
type fakeMetadata struct {
	mu      sync.Mutex
	movies  map[int]tmdb.MovieResult
	credits map[int][]tmdb.CastCredit
	recs    map[int][]tmdb.MovieResult
	search  []tmdb.MovieResult
	calls   map[string]int
	failOn  string
	// creditsFor counts credits requests per movie id.
	creditsFor map[int]int
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		movies:  map[int]tmdb.MovieResult{},
		credits: map[int][]tmdb.CastCredit{},
		recs:    map[int][]tmdb.MovieResult{},
		calls:   map[string]int{},

		creditsFor: map[int]int{},
	}
}

var errUpstream = &tmdb.UpstreamRequestError{Kind: tmdb.KindCredits, StatusCode: 503, Reason: "unavailable"}

func (f *fakeMetadata) record(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	if f.failOn == kind {
		return errUpstream
	}
	return nil
}

func (f *fakeMetadata) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeMetadata) SearchMovies(_ context.Context, _ string) ([]tmdb.MovieResult, error) {
	if err := f.record("search"); err != nil {
		return nil, err
	}
	return f.search, nil
}

func (f *fakeMetadata) Movie(_ context.Context, movieID int) (tmdb.MovieResult, error) {
	if err := f.record("movie"); err != nil {
		return tmdb.MovieResult{}, err
	}
	m, ok := f.movies[movieID]
	if !ok {
		return tmdb.MovieResult{}, &tmdb.UpstreamRequestError{Kind: tmdb.KindMovie, StatusCode: 404, Reason: "not found"}
	}
	return m, nil
}

func (f *fakeMetadata) Credits(_ context.Context, movieID int) ([]tmdb.CastCredit, error) {
	f.mu.Lock()
	f.creditsFor[movieID]++
	f.mu.Unlock()
	if err := f.record("credits"); err != nil {
		return nil, err
	}
	return f.credits[movieID], nil
}

func (f *fakeMetadata) Recommendations(_ context.Context, movieID int) ([]tmdb.MovieResult, error) {
	if err := f.record("recommendations"); err != nil {
		return nil, err
	}
	return f.recs[movieID], nil
}

// matrixCatalog is The Matrix with a three-person cast and two recommended
// movies whose casts provide decoys. Keanu also appears in John Wick.
func matrixCatalog() *fakeMetadata {
	f := newFakeMetadata()
	f.movies[603] = tmdb.MovieResult{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30"}
	f.credits[603] = []tmdb.CastCredit{
		{ID: 1, Name: "Keanu Reeves", ProfilePath: "/keanu.jpg", Character: "Neo"},
		{ID: 2, Name: "Laurence Fishburne", Character: "Morpheus"},
		{ID: 3, Name: "Carrie-Anne Moss", Character: "Trinity"},
	}
	f.recs[603] = []tmdb.MovieResult{
		{ID: 604, Title: "The Matrix Reloaded"},
		{ID: 245891, Title: "John Wick"},
	}
	f.credits[604] = []tmdb.CastCredit{
		{ID: 2, Name: "Laurence Fishburne"},
		{ID: 10, Name: "Monica Bellucci"},
		{ID: 11, Name: "Jada Pinkett Smith"},
	}
	f.credits[245891] = []tmdb.CastCredit{
		{ID: 1, Name: "Keanu Reeves"},
		{ID: 20, Name: "Ian McShane"},
		{ID: 21, Name: "Willem Dafoe"},
		{ID: 21, Name: "Willem Dafoe"},
		{ID: 22, Name: "Adrianne Palicki"},
	}
	return f
}

