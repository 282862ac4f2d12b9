package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/pkg/models"
)

// testSnapshot builds a small but fully consistent artifact bundle and
// loads it through the real loader.
//
// Catalog: ids 101..106 at dense indices 0..5.
// Features (3-dim): 101 and 102 identical, 103 orthogonal to both.
// Latent factors (2-dim) are asymmetric so collaborative rankings have a
// unique deterministic order.
func testSnapshot(t *testing.T) *artifacts.Snapshot {
	t.Helper()

	dir := t.TempDir()

	write := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	write("user_index.json", map[string]int{"1": 0, "2": 1})
	write("movie_index.json", map[string]int{
		"101": 0, "102": 1, "103": 2, "104": 3, "105": 4, "106": 5,
	})
	write("movie_titles.json", map[string]string{
		"101": "Alpha", "102": "Beta", "103": "Gamma",
	})
	write("movie_features.json", map[string]interface{}{
		"dimensions": 3,
		"vectors": [][]float64{
			{1, 0, 0}, // 101
			{1, 0, 0}, // 102
			{0, 0, 1}, // 103
			{0, 1, 0}, // 104
			{1, 1, 0}, // 105
			{0, 1, 1}, // 106
		},
	})
	write("collab_model.json", map[string]interface{}{
		"latent_dim": 2,
		"user_factors": [][]float64{
			{1, 0}, // user 1
			{0, 1}, // user 2
		},
		"item_factors": [][]float64{
			{1, 0},     // 101
			{0.8, 0.1}, // 102
			{0, 1},     // 103
			{0.4, 0.4}, // 104
			{0.9, 0.3}, // 105
			{0.1, 0.8}, // 106
		},
		"item_bias":   []float64{0, 0, 0, 0, 0, 0},
		"global_bias": 0.0,
	})

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	snapshot, err := artifacts.Load(dir, logger)
	require.NoError(t, err)
	return snapshot
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func scoredIDs(results []models.ScoredMovie) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.MovieID
	}
	return ids
}

func recommendedIDs(results []models.Recommendation) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.MovieID
	}
	return ids
}
