package services

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/pkg/models"
)

const AlgorithmContentBased = "content_based"

// ContentScorer ranks the catalog by cosine similarity between each item's
// feature vector and a profile vector averaged from the favorites' feature
// vectors. It works from a single favorite, which is what makes it the
// cold-start path.
type ContentScorer struct {
	logger *logrus.Logger
}

func NewContentScorer(logger *logrus.Logger) *ContentScorer {
	return &ContentScorer{logger: logger}
}

// Score ranks the catalog against a profile built from favoriteIDs.
// Unresolvable ids are skipped; if none resolve there is no signal to work
// from and ErrEmptyProfile is returned rather than an empty success.
func (s *ContentScorer) Score(snapshot *artifacts.Snapshot, favoriteIDs []int, limit int) ([]models.ScoredMovie, error) {
	resolved := resolveMovieIndices(snapshot, favoriteIDs, s.logger)
	if len(resolved) == 0 {
		return nil, ErrEmptyProfile
	}

	// Entries are weighted equally: the profile is the element-wise mean.
	profile := make([]float64, snapshot.FeatureDim())
	for idx := range resolved {
		floats.Add(profile, snapshot.FeatureVector(idx))
	}
	floats.Scale(1/float64(len(resolved)), profile)
	profileNorm := floats.Norm(profile, 2)

	scores := make([]float64, snapshot.MovieCount())
	for idx := range scores {
		scores[idx] = cosineSimilarity(profile, profileNorm, snapshot.FeatureVector(idx))
	}

	s.logger.WithFields(logrus.Fields{
		"favorites": len(favoriteIDs),
		"resolved":  len(resolved),
	}).Debug("Scored catalog against content profile")

	return rankCandidates(snapshot, scores, resolved, limit), nil
}

func cosineSimilarity(profile []float64, profileNorm float64, features []float64) float64 {
	if profileNorm == 0 {
		return 0
	}
	featureNorm := floats.Norm(features, 2)
	if featureNorm == 0 {
		return 0
	}
	return floats.Dot(profile, features) / (profileNorm * featureNorm)
}
