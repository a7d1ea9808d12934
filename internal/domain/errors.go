package domain

import "errors"

var (
	// ErrMovieNotFound is returned when a movie id is not in the local cache.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrPersonNotFound is returned when a person id is not in the local cache.
	ErrPersonNotFound = errors.New("person not found")
	// ErrRoundNotFound indicates a round id that was never issued or has expired.
	ErrRoundNotFound = errors.New("round not found")
	// ErrInvalidOptionCount rejects a correct/wrong split outside [1, options].
	ErrInvalidOptionCount = errors.New("invalid option count")
)
