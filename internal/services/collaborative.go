package services

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/pkg/models"
)

const AlgorithmCollaborative = "collaborative_filtering"

// CollaborativeScorer scores the catalog against the trained embedding
// model. For a favorite list it builds a synthetic user vector by averaging
// the latent vectors of the resolvable favorites; for an enrolled user it
// uses the user's own learned latent vector. Affinity is the dot product of
// that vector with every item's latent vector plus bias terms.
type CollaborativeScorer struct {
	logger *logrus.Logger
}

func NewCollaborativeScorer(logger *logrus.Logger) *CollaborativeScorer {
	return &CollaborativeScorer{logger: logger}
}

// ScoreFavorites ranks the catalog for a synthetic user aggregated from
// favoriteIDs. Unresolvable ids are excluded from the aggregation; if none
// resolve, the latent average is undefined and ErrEmptyProfile is returned.
func (s *CollaborativeScorer) ScoreFavorites(snapshot *artifacts.Snapshot, favoriteIDs []int, limit int) ([]models.ScoredMovie, error) {
	resolved := resolveMovieIndices(snapshot, favoriteIDs, s.logger)
	if len(resolved) == 0 {
		return nil, ErrEmptyProfile
	}

	profile := make([]float64, snapshot.LatentDim())
	for idx := range resolved {
		floats.Add(profile, snapshot.ItemFactor(idx))
	}
	floats.Scale(1/float64(len(resolved)), profile)

	s.logger.WithFields(logrus.Fields{
		"favorites": len(favoriteIDs),
		"resolved":  len(resolved),
	}).Debug("Scoring synthetic user from favorite latents")

	return s.scoreProfile(snapshot, profile, resolved, limit), nil
}

// ScoreUser ranks the catalog for an enrolled user, skipping the synthetic
// aggregation in favor of the user's learned latent row.
func (s *CollaborativeScorer) ScoreUser(snapshot *artifacts.Snapshot, userID int, limit int) ([]models.ScoredMovie, error) {
	userIdx, ok := snapshot.UserIndex(userID)
	if !ok {
		return nil, ErrUnknownUser
	}
	return s.scoreProfile(snapshot, snapshot.UserFactor(userIdx), nil, limit), nil
}

func (s *CollaborativeScorer) scoreProfile(snapshot *artifacts.Snapshot, profile []float64, exclude map[int]bool, limit int) []models.ScoredMovie {
	var affinities mat.VecDense
	affinities.MulVec(snapshot.ItemFactors(), mat.NewVecDense(len(profile), profile))

	bias := snapshot.ItemBias()
	global := snapshot.GlobalBias()

	scores := make([]float64, snapshot.MovieCount())
	for idx := range scores {
		scores[idx] = affinities.AtVec(idx) + bias[idx] + global
	}

	return rankCandidates(snapshot, scores, exclude, limit)
}
