package domain

import "time"

// Movie is a cached catalog movie keyed by its external id.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Person is a cached cast member keyed by its external id.
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// ProfilePath is the remote image path reference, empty when the catalog has none.
	ProfilePath string `json:"profilePath,omitempty"`
	// ProfileImage is the local file location, filled lazily on first display.
	ProfileImage string `json:"profileImage,omitempty"`
	// Character is a display-only annotation for one movie and is never persisted.
	Character string `json:"character,omitempty"`
}

// ScoreRecord is one immutable entry of the score history.
type ScoreRecord struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	NumCorrect   int       `json:"numCorrect"`
	NumIncorrect int       `json:"numIncorrect"`
	NumAnswers   int       `json:"numAnswers"`
}

// Round is a generated option set for one movie.
type Round struct {
	ID         string    `json:"id"`
	Movie      Movie     `json:"movie"`
	Options    []Person  `json:"options"`
	NumCorrect int       `json:"numCorrect"`
	NumWrong   int       `json:"numWrong"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OptionIDs returns the ids of the round's options in display order.
func (r Round) OptionIDs() []int {
	ids := make([]int, 0, len(r.Options))
	for _, p := range r.Options {
		ids = append(ids, p.ID)
	}
	return ids
}

// Submission is a user's answer to a round.
type Submission struct {
	// RoundID is optional; when set the stored option set is authoritative.
	RoundID   string
	MovieID   int
	OptionIDs []int
	Selected  []int
}

// Scorecard is the outcome of scoring a submission.
type Scorecard struct {
	Movie          Movie       `json:"movie"`
	Score          ScoreRecord `json:"score"`
	RightChoices   []Person    `json:"rightChoices"`
	WrongChoices   []Person    `json:"wrongChoices"`
	AllChoices     []Person    `json:"allChoices"`
	CorrectAnswers []Person    `json:"correctAnswers"`
}

// SearchHit is one movie search suggestion.
type SearchHit struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Result carries a user-facing outcome to the presentation layer.
// A false OK with a Notice means the request was rejected without state change.
type Result[T any] struct {
	OK      bool   `json:"ok"`
	Notice  string `json:"notice,omitempty"`
	Payload T      `json:"payload,omitempty"`
}

// Ok wraps a successful payload.
func Ok[T any](payload T) Result[T] {
	return Result[T]{OK: true, Payload: payload}
}

// Notice builds a rejected result with a user-visible message.
func Notice[T any](msg string) Result[T] {
	return Result[T]{Notice: msg}
}
