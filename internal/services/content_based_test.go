package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentScorer_Score(t *testing.T) {
	snapshot := testSnapshot(t)
	scorer := NewContentScorer(quietLogger())

	t.Run("single favorite ranks identical item first and excludes itself", func(t *testing.T) {
		// 102 has the same feature vector as 101 (cosine 1.0); 103 is
		// orthogonal (cosine 0) and must still rank behind 102.
		results, err := scorer.Score(snapshot, []int{101}, 5)
		require.NoError(t, err)

		ids := scoredIDs(results)
		assert.NotContains(t, ids, 101)
		assert.Equal(t, 102, ids[0])
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)

		// 105 = [1,1,0] has cosine 1/sqrt(2) against the profile; the
		// three zero-similarity items tie and fall back to index order.
		assert.Equal(t, []int{102, 105, 103, 104, 106}, ids)
	})

	t.Run("unknown ids contribute no signal", func(t *testing.T) {
		withUnknown, err := scorer.Score(snapshot, []int{101, 999}, 5)
		require.NoError(t, err)

		onlyKnown, err := scorer.Score(snapshot, []int{101}, 5)
		require.NoError(t, err)

		assert.Equal(t, onlyKnown, withUnknown)
	})

	t.Run("duplicates are treated as a set", func(t *testing.T) {
		deduped, err := scorer.Score(snapshot, []int{101}, 5)
		require.NoError(t, err)

		duplicated, err := scorer.Score(snapshot, []int{101, 101, 101}, 5)
		require.NoError(t, err)

		assert.Equal(t, deduped, duplicated)
	})

	t.Run("profile is the mean of resolved favorites", func(t *testing.T) {
		// Favorites 101 and 104 give profile [0.5, 0.5, 0]; 105 = [1,1,0]
		// matches it exactly.
		results, err := scorer.Score(snapshot, []int{101, 104}, 3)
		require.NoError(t, err)

		assert.Equal(t, 105, results[0].MovieID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	})

	t.Run("no resolvable favorites is an empty profile", func(t *testing.T) {
		_, err := scorer.Score(snapshot, []int{997, 998, 999}, 5)
		assert.ErrorIs(t, err, ErrEmptyProfile)

		_, err = scorer.Score(snapshot, nil, 5)
		assert.ErrorIs(t, err, ErrEmptyProfile)
	})

	t.Run("limit bounds the result", func(t *testing.T) {
		results, err := scorer.Score(snapshot, []int{101}, 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("scores are monotonically non-increasing", func(t *testing.T) {
		results, err := scorer.Score(snapshot, []int{101, 103}, 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})
}
