package artifacts

import (
	"gonum.org/v1/gonum/mat"
)

// Snapshot is the immutable artifact bundle both scorers read from. It is
// built once by Load at process start and never mutated afterwards, so a
// single instance is safe to share across concurrent requests.
type Snapshot struct {
	userIndex  map[int]int
	movieIndex map[int]int

	// movieByIndex is the reverse of movieIndex, keyed by dense index.
	movieByIndex []int

	titles map[int]string

	// features is nMovies x featureDim.
	features *mat.Dense

	// userFactors is nUsers x latentDim, itemFactors nMovies x latentDim.
	userFactors *mat.Dense
	itemFactors *mat.Dense
	itemBias    []float64
	globalBias  float64
}

func (s *Snapshot) UserCount() int  { return len(s.userIndex) }
func (s *Snapshot) MovieCount() int { return len(s.movieIndex) }
func (s *Snapshot) TitleCount() int { return len(s.titles) }

func (s *Snapshot) FeatureDim() int {
	_, c := s.features.Dims()
	return c
}

func (s *Snapshot) LatentDim() int {
	_, c := s.itemFactors.Dims()
	return c
}

// UserIndex resolves an external user id to its dense training index.
func (s *Snapshot) UserIndex(userID int) (int, bool) {
	idx, ok := s.userIndex[userID]
	return idx, ok
}

// MovieIndex resolves an external movie id to its dense index.
func (s *Snapshot) MovieIndex(movieID int) (int, bool) {
	idx, ok := s.movieIndex[movieID]
	return idx, ok
}

// MovieID resolves a dense index back to its external movie id.
func (s *Snapshot) MovieID(idx int) (int, bool) {
	if idx < 0 || idx >= len(s.movieByIndex) {
		return 0, false
	}
	return s.movieByIndex[idx], true
}

// Title returns the display title for a movie id, empty when unknown.
// Title enrichment is best-effort; callers must not treat a miss as an error.
func (s *Snapshot) Title(movieID int) string {
	return s.titles[movieID]
}

// FeatureVector returns the feature row for a dense index. The returned
// slice aliases snapshot memory and must not be modified.
func (s *Snapshot) FeatureVector(idx int) []float64 {
	return s.features.RawRowView(idx)
}

// ItemFactor returns the latent row for a dense item index. The returned
// slice aliases snapshot memory and must not be modified.
func (s *Snapshot) ItemFactor(idx int) []float64 {
	return s.itemFactors.RawRowView(idx)
}

// UserFactor returns the learned latent row for a dense user index.
func (s *Snapshot) UserFactor(idx int) []float64 {
	return s.userFactors.RawRowView(idx)
}

// ItemFactors exposes the full item latent matrix for bulk scoring.
func (s *Snapshot) ItemFactors() *mat.Dense { return s.itemFactors }

// ItemBias returns the per-item bias terms, indexed densely.
func (s *Snapshot) ItemBias() []float64 { return s.itemBias }

func (s *Snapshot) GlobalBias() float64 { return s.globalBias }
