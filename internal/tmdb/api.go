package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"celebrity-trivia/internal/domain"
)

// MovieResult is a movie as returned by search, detail and recommendation endpoints.
type MovieResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Movie converts the payload into a cache record.
func (m MovieResult) Movie() domain.Movie {
	return domain.Movie{ID: m.ID, Title: m.Title}
}

// SearchText renders "Title (YYYY)", omitting the year when unknown.
func (m MovieResult) SearchText() string {
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	if year == "" {
		return m.Title
	}
	return fmt.Sprintf("%s (%s)", m.Title, year)
}

// CastCredit is one entry of a movie's cast listing.
type CastCredit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
	Character   string `json:"character"`
}

// Person converts the credit into a cache record; Character is left out.
func (c CastCredit) Person() domain.Person {
	return domain.Person{ID: c.ID, Name: c.Name, ProfilePath: c.ProfilePath}
}

type pagedMovies struct {
	Results []MovieResult `json:"results"`
}

type credits struct {
	Cast []CastCredit `json:"cast"`
}

// API decodes metadata payloads on top of any Fetcher (raw client or a cache).
type API struct {
	fetcher Fetcher
}

func NewAPI(fetcher Fetcher) *API {
	return &API{fetcher: fetcher}
}

func (a *API) SearchMovies(ctx context.Context, query string) ([]MovieResult, error) {
	var page pagedMovies
	if err := a.decode(ctx, KindSearch, query, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (a *API) Movie(ctx context.Context, movieID int) (MovieResult, error) {
	var movie MovieResult
	err := a.decode(ctx, KindMovie, strconv.Itoa(movieID), &movie)
	return movie, err
}

func (a *API) Credits(ctx context.Context, movieID int) ([]CastCredit, error) {
	var c credits
	if err := a.decode(ctx, KindCredits, strconv.Itoa(movieID), &c); err != nil {
		return nil, err
	}
	return c.Cast, nil
}

func (a *API) Recommendations(ctx context.Context, movieID int) ([]MovieResult, error) {
	var page pagedMovies
	if err := a.decode(ctx, KindRecommendations, strconv.Itoa(movieID), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Image returns the raw bytes behind a profile image path.
func (a *API) Image(ctx context.Context, path string) ([]byte, error) {
	return a.fetcher.Fetch(ctx, KindImage, path)
}

func (a *API) decode(ctx context.Context, kind Kind, param string, v any) error {
	body, err := a.fetcher.Fetch(ctx, kind, param)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", kind, err)
	}
	return nil
}
