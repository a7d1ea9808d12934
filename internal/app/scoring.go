package app

import "celebrity-trivia/internal/domain"

// Score partitions a submission against the movie's current cast.
//
// allChoices are the options that were shown, userChoices the ones the player
// marked. The returned record has no id or timestamp yet. Score reads only its
// arguments.
func Score(movie domain.Movie, cast, allChoices, userChoices []domain.Person) domain.Scorecard {
	inCast := make(map[int]struct{}, len(cast))
	for _, p := range cast {
		inCast[p.ID] = struct{}{}
	}

	correctIDs := make(map[int]struct{})
	correctAnswers := make([]domain.Person, 0, len(allChoices))
	for _, p := range allChoices {
		if _, ok := inCast[p.ID]; !ok {
			continue
		}
		if _, dup := correctIDs[p.ID]; dup {
			continue
		}
		correctIDs[p.ID] = struct{}{}
		correctAnswers = append(correctAnswers, p)
	}

	picked := make(map[int]struct{}, len(userChoices))
	right := make([]domain.Person, 0, len(userChoices))
	wrong := make([]domain.Person, 0, len(userChoices))
	for _, p := range userChoices {
		if _, dup := picked[p.ID]; dup {
			continue
		}
		picked[p.ID] = struct{}{}
		if _, ok := correctIDs[p.ID]; ok {
			right = append(right, p)
		} else {
			wrong = append(wrong, p)
		}
	}

	return domain.Scorecard{
		Movie: movie,
		Score: domain.ScoreRecord{
			NumCorrect:   len(right),
			NumIncorrect: len(wrong),
			NumAnswers:   len(correctAnswers),
		},
		RightChoices:   right,
		WrongChoices:   wrong,
		AllChoices:     allChoices,
		CorrectAnswers: correctAnswers,
	}
}
