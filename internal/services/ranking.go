package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/pkg/models"
)

// resolveMovieIndices maps favorite ids to dense indices, deduplicating and
// silently dropping ids the catalog does not know. Unknown ids contribute
// no signal but never fail a request on their own.
func resolveMovieIndices(snapshot *artifacts.Snapshot, movieIDs []int, logger *logrus.Logger) map[int]bool {
	resolved := make(map[int]bool, len(movieIDs))
	for _, id := range movieIDs {
		idx, ok := snapshot.MovieIndex(id)
		if !ok {
			logger.WithField("movie_id", id).Debug("Unknown movie id excluded from scoring context")
			continue
		}
		resolved[idx] = true
	}
	return resolved
}

// rankCandidates orders every non-excluded catalog index by descending
// score, ties broken by ascending dense index so identical inputs always
// produce identical rankings, and truncates to limit. Indices that do not
// resolve back to an external id are dropped rather than surfaced.
func rankCandidates(snapshot *artifacts.Snapshot, scores []float64, exclude map[int]bool, limit int) []models.ScoredMovie {
	order := make([]int, 0, len(scores))
	for idx := range scores {
		if !exclude[idx] {
			order = append(order, idx)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})

	results := make([]models.ScoredMovie, 0, limit)
	for _, idx := range order {
		if len(results) == limit {
			break
		}
		movieID, ok := snapshot.MovieID(idx)
		if !ok {
			continue
		}
		results = append(results, models.ScoredMovie{MovieID: movieID, Score: scores[idx]})
	}
	return results
}
