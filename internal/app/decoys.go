package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"celebrity-trivia/internal/domain"
	"celebrity-trivia/internal/metrics"
)

// DecoySelector builds option sets that mix true cast members with people
// drawn from recommended movies.
type DecoySelector struct {
	catalog CatalogRepository
	meta    Metadata
}

func NewDecoySelector(catalog CatalogRepository, meta Metadata) *DecoySelector {
	return &DecoySelector{catalog: catalog, meta: meta}
}

// BuildOptions returns numCorrect members of cast plus numWrong decoys in random order.
// cast must be the movie's full cast. The result is short only when the
// recommendation pool runs out of decoys.
func (d *DecoySelector) BuildOptions(ctx context.Context, rnd *rand.Rand, movie domain.Movie, cast []domain.Person, numCorrect, numWrong int) ([]domain.Person, error) {
	shown := make([]domain.Person, len(cast))
	copy(shown, cast)
	rnd.Shuffle(len(shown), func(i, j int) { shown[i], shown[j] = shown[j], shown[i] })
	if numCorrect < len(shown) {
		shown = shown[:numCorrect]
	}

	decoys, err := d.Decoys(ctx, rnd, movie.ID, cast, numWrong)
	if err != nil {
		return nil, err
	}

	options := make([]domain.Person, 0, len(shown)+len(decoys))
	options = append(options, shown...)
	options = append(options, decoys...)
	rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options, nil
}

// Decoys collects up to num people from the casts of movieID's recommendations,
// none of whom appear in cast. Every recommended movie and every collected person
// is upserted into the catalog along the way.
func (d *DecoySelector) Decoys(ctx context.Context, rnd *rand.Rand, movieID int, cast []domain.Person, num int) ([]domain.Person, error) {
	if num <= 0 {
		return nil, nil
	}

	correct := make(map[int]struct{}, len(cast))
	for _, p := range cast {
		correct[p.ID] = struct{}{}
	}

	recs, err := d.meta.Recommendations(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("recommendations for %d: %w", movieID, err)
	}
	movies := make([]domain.Movie, 0, len(recs))
	for _, r := range recs {
		if r.ID == movieID {
			continue
		}
		m, _, err := d.catalog.GetOrCreateMovie(ctx, r.Movie())
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	rnd.Shuffle(len(movies), func(i, j int) { movies[i], movies[j] = movies[j], movies[i] })

	seen := make(map[int]struct{}, num)
	decoys := make([]domain.Person, 0, num)
	var leftover []domain.Person
	remaining := num
	for _, rec := range movies {
		if remaining <= 0 {
			break
		}
		candidates, err := d.candidates(ctx, rec, correct)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}

		rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		take := rnd.Intn(remaining) + 1
		if take > len(candidates) {
			take = len(candidates)
		}
		for _, p := range candidates[:take] {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			decoys = append(decoys, p)
		}
		leftover = append(leftover, candidates[take:]...)
		remaining = num - len(decoys)
	}

	// The random slices can leave the quota short while unused candidates remain.
	if remaining > 0 && len(leftover) > 0 {
		rnd.Shuffle(len(leftover), func(i, j int) { leftover[i], leftover[j] = leftover[j], leftover[i] })
		for _, p := range leftover {
			if len(decoys) >= num {
				break
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			decoys = append(decoys, p)
		}
	}

	if len(decoys) > num {
		decoys = decoys[:num]
	}
	if len(decoys) < num {
		metrics.DecoyShortfall.Inc()
		slog.Warn("recommendation pool exhausted", "movie_id", movieID, "wanted", num, "got", len(decoys))
	}
	return decoys, nil
}

// candidates loads rec's cast, links it in the catalog and returns the members
// that are not in correct.
func (d *DecoySelector) candidates(ctx context.Context, rec domain.Movie, correct map[int]struct{}) ([]domain.Person, error) {
	credits, err := d.meta.Credits(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("credits for %d: %w", rec.ID, err)
	}

	listed := make(map[int]struct{}, len(credits))
	out := make([]domain.Person, 0, len(credits))
	for _, c := range credits {
		if _, ok := correct[c.ID]; ok {
			continue
		}
		if _, ok := listed[c.ID]; ok {
			continue
		}
		listed[c.ID] = struct{}{}

		p, _, err := d.catalog.GetOrCreatePerson(ctx, c.Person())
		if err != nil {
			return nil, err
		}
		if err := d.catalog.AddCastMember(ctx, rec.ID, p.ID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
