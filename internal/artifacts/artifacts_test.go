package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// writeValidBundle lays down a minimal consistent bundle: two users, three
// movies, 3-dim features, 2-dim latent factors.
func writeValidBundle(t *testing.T, dir string) {
	t.Helper()

	writeArtifact(t, dir, userIndexFile, map[string]int{"1": 0, "2": 1})
	writeArtifact(t, dir, movieIndexFile, map[string]int{"101": 0, "102": 1, "103": 2})
	writeArtifact(t, dir, titlesFile, map[string]string{"101": "First", "102": "Second"})
	writeArtifact(t, dir, featuresFile, featureTable{
		Dimensions: 3,
		Vectors:    [][]float64{{1, 0, 0}, {1, 0, 0}, {0, 0, 1}},
	})
	writeArtifact(t, dir, collabModelFile, collabModel{
		LatentDim:   2,
		UserFactors: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}},
		ItemBias:    []float64{0.1, 0.2, 0.3},
		GlobalBias:  0.05,
	})
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestLoad(t *testing.T) {
	t.Run("consistent bundle", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)

		snapshot, err := Load(dir, testLogger())
		require.NoError(t, err)

		assert.Equal(t, 2, snapshot.UserCount())
		assert.Equal(t, 3, snapshot.MovieCount())
		assert.Equal(t, 3, snapshot.FeatureDim())
		assert.Equal(t, 2, snapshot.LatentDim())

		idx, ok := snapshot.MovieIndex(103)
		require.True(t, ok)
		assert.Equal(t, 2, idx)

		id, ok := snapshot.MovieID(2)
		require.True(t, ok)
		assert.Equal(t, 103, id)

		_, ok = snapshot.MovieIndex(999)
		assert.False(t, ok)

		assert.Equal(t, "First", snapshot.Title(101))
		assert.Empty(t, snapshot.Title(103))

		assert.Equal(t, []float64{0, 0, 1}, snapshot.FeatureVector(2))
		assert.Equal(t, []float64{0.5, 0.5}, snapshot.ItemFactor(1))
		assert.Equal(t, []float64{0.3, 0.4}, snapshot.UserFactor(1))
		assert.InDelta(t, 0.05, snapshot.GlobalBias(), 1e-12)
	})

	t.Run("titles are optional", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		require.NoError(t, os.Remove(filepath.Join(dir, titlesFile)))

		snapshot, err := Load(dir, testLogger())
		require.NoError(t, err)
		assert.Zero(t, snapshot.TitleCount())
		assert.Empty(t, snapshot.Title(101))
	})

	t.Run("missing required file fails", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		require.NoError(t, os.Remove(filepath.Join(dir, collabModelFile)))

		_, err := Load(dir, testLogger())
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, collabModelFile, loadErr.Artifact)
	})

	t.Run("item factor row count must match catalog", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, collabModelFile, collabModel{
			LatentDim:   2,
			UserFactors: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
			ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}},
		})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})

	t.Run("ragged latent rows fail", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, collabModelFile, collabModel{
			LatentDim:   2,
			UserFactors: [][]float64{{0.1, 0.2}, {0.3}},
			ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}},
		})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})

	t.Run("feature row count must match catalog", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, featuresFile, featureTable{
			Dimensions: 3,
			Vectors:    [][]float64{{1, 0, 0}},
		})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})

	t.Run("duplicate dense index fails", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, movieIndexFile, map[string]int{"101": 0, "102": 0, "103": 2})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})

	t.Run("out of range dense index fails", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, userIndexFile, map[string]int{"1": 0, "2": 7})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})

	t.Run("item bias length must match catalog", func(t *testing.T) {
		dir := t.TempDir()
		writeValidBundle(t, dir)
		writeArtifact(t, dir, collabModelFile, collabModel{
			LatentDim:   2,
			UserFactors: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
			ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}},
			ItemBias:    []float64{0.1},
		})

		_, err := Load(dir, testLogger())
		assert.Error(t, err)
	})
}
