package http

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"celebrity-trivia/internal/domain"
)

// ParseSubmission reads a round-submit form. Keys that are numeric are the
// option ids the player checked; other keys carry a shown option id as their value.
// The Submit button field is ignored.
func ParseSubmission(form url.Values) (domain.Submission, error) {
	var sub domain.Submission

	rawMovieID := strings.TrimSpace(form.Get("movie_id"))
	if rawMovieID == "" && form.Get("round_id") == "" {
		return sub, fmt.Errorf("movie_id is required")
	}
	if rawMovieID != "" {
		movieID, err := strconv.Atoi(rawMovieID)
		if err != nil {
			return sub, fmt.Errorf("movie_id %q is not a number", rawMovieID)
		}
		sub.MovieID = movieID
	}
	sub.RoundID = strings.TrimSpace(form.Get("round_id"))

	for key, values := range form {
		switch key {
		case "Submit", "movie_id", "round_id":
			continue
		}
		if id, err := strconv.Atoi(key); err == nil && isDigits(key) {
			sub.Selected = append(sub.Selected, id)
			continue
		}
		for _, v := range values {
			if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				sub.OptionIDs = append(sub.OptionIDs, id)
			}
		}
	}
	sort.Ints(sub.Selected)
	sort.Ints(sub.OptionIDs)
	return sub, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
