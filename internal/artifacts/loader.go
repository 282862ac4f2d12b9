package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/mat"
)

// Bundle file names expected inside the artifacts directory. All files are
// produced offline by the training pipeline; titles are the only optional
// piece.
const (
	userIndexFile   = "user_index.json"
	movieIndexFile  = "movie_index.json"
	titlesFile      = "movie_titles.json"
	featuresFile    = "movie_features.json"
	collabModelFile = "collab_model.json"
)

// LoadError signals an inconsistent or incomplete artifact bundle. It is
// fatal: the process must not begin serving without a valid snapshot.
type LoadError struct {
	Artifact string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Artifact, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type featureTable struct {
	Dimensions int         `json:"dimensions"`
	Vectors    [][]float64 `json:"vectors"`
}

type collabModel struct {
	LatentDim   int         `json:"latent_dim"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
	ItemBias    []float64   `json:"item_bias"`
	GlobalBias  float64     `json:"global_bias"`
}

// Load reads the full artifact bundle from dir and validates that every
// piece is shape-consistent with the index maps. There is no partial-load
// mode: any missing file or shape mismatch fails the whole load.
func Load(dir string, logger *logrus.Logger) (*Snapshot, error) {
	userIndex, err := loadIndexMap(filepath.Join(dir, userIndexFile))
	if err != nil {
		return nil, &LoadError{Artifact: userIndexFile, Err: err}
	}

	movieIndex, err := loadIndexMap(filepath.Join(dir, movieIndexFile))
	if err != nil {
		return nil, &LoadError{Artifact: movieIndexFile, Err: err}
	}

	movieByIndex, err := reverseIndex(movieIndex)
	if err != nil {
		return nil, &LoadError{Artifact: movieIndexFile, Err: err}
	}
	if _, err := reverseIndex(userIndex); err != nil {
		return nil, &LoadError{Artifact: userIndexFile, Err: err}
	}

	titles, err := loadTitles(filepath.Join(dir, titlesFile))
	if err != nil {
		return nil, &LoadError{Artifact: titlesFile, Err: err}
	}

	var ft featureTable
	if err := readJSON(filepath.Join(dir, featuresFile), &ft); err != nil {
		return nil, &LoadError{Artifact: featuresFile, Err: err}
	}
	features, err := buildMatrix(ft.Vectors, len(movieIndex), ft.Dimensions)
	if err != nil {
		return nil, &LoadError{Artifact: featuresFile, Err: err}
	}

	var cm collabModel
	if err := readJSON(filepath.Join(dir, collabModelFile), &cm); err != nil {
		return nil, &LoadError{Artifact: collabModelFile, Err: err}
	}

	// The scoring dot-product is only defined when user and item latent
	// vectors share one dimensionality.
	userFactors, err := buildMatrix(cm.UserFactors, len(userIndex), cm.LatentDim)
	if err != nil {
		return nil, &LoadError{Artifact: collabModelFile, Err: fmt.Errorf("user factors: %w", err)}
	}
	itemFactors, err := buildMatrix(cm.ItemFactors, len(movieIndex), cm.LatentDim)
	if err != nil {
		return nil, &LoadError{Artifact: collabModelFile, Err: fmt.Errorf("item factors: %w", err)}
	}
	if len(cm.ItemBias) != 0 && len(cm.ItemBias) != len(movieIndex) {
		return nil, &LoadError{
			Artifact: collabModelFile,
			Err:      fmt.Errorf("item bias has %d entries, catalog has %d movies", len(cm.ItemBias), len(movieIndex)),
		}
	}
	itemBias := cm.ItemBias
	if itemBias == nil {
		itemBias = make([]float64, len(movieIndex))
	}

	snapshot := &Snapshot{
		userIndex:    userIndex,
		movieIndex:   movieIndex,
		movieByIndex: movieByIndex,
		titles:       titles,
		features:     features,
		userFactors:  userFactors,
		itemFactors:  itemFactors,
		itemBias:     itemBias,
		globalBias:   cm.GlobalBias,
	}

	logger.WithFields(logrus.Fields{
		"users":       snapshot.UserCount(),
		"movies":      snapshot.MovieCount(),
		"titles":      snapshot.TitleCount(),
		"feature_dim": snapshot.FeatureDim(),
		"latent_dim":  snapshot.LatentDim(),
	}).Info("Artifact bundle loaded")

	return snapshot, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// loadIndexMap reads a JSON object of external id -> dense index. JSON keys
// are strings; ids are parsed back to integers here.
func loadIndexMap(path string) (map[int]int, error) {
	var raw map[string]int
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("index map is empty")
	}

	index := make(map[int]int, len(raw))
	for key, idx := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("non-integer id %q", key)
		}
		index[id] = idx
	}
	return index, nil
}

// reverseIndex inverts an id -> index map, verifying the indices form a
// dense, collision-free range so every scored index resolves back to an id.
func reverseIndex(index map[int]int) ([]int, error) {
	reverse := make([]int, len(index))
	seen := make([]bool, len(index))

	for id, idx := range index {
		if idx < 0 || idx >= len(index) {
			return nil, fmt.Errorf("index %d for id %d out of range [0,%d)", idx, id, len(index))
		}
		if seen[idx] {
			return nil, fmt.Errorf("duplicate index %d", idx)
		}
		seen[idx] = true
		reverse[idx] = id
	}
	return reverse, nil
}

// loadTitles reads the optional title map. A missing file is not an error;
// the engine then serves recommendations with empty titles.
func loadTitles(path string) (map[int]string, error) {
	var raw map[string]string
	if err := readJSON(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return map[int]string{}, nil
		}
		return nil, err
	}

	titles := make(map[int]string, len(raw))
	for key, title := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("non-integer movie id %q", key)
		}
		titles[id] = norm.NFC.String(title)
	}
	return titles, nil
}

func buildMatrix(rows [][]float64, wantRows, wantCols int) (*mat.Dense, error) {
	if wantCols <= 0 {
		return nil, fmt.Errorf("declared dimensionality must be positive, got %d", wantCols)
	}
	if len(rows) != wantRows {
		return nil, fmt.Errorf("have %d rows, index map has %d entries", len(rows), wantRows)
	}

	data := make([]float64, 0, wantRows*wantCols)
	for i, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), wantCols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(wantRows, wantCols, data), nil
}
