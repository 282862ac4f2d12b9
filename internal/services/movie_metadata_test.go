package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/pkg/models"
)

func newUpstream(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}

		if r.URL.Query().Get("api_key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		parts := strings.Split(r.URL.Path, "/")
		id, err := strconv.Atoi(parts[len(parts)-1])
		require.NoError(t, err)

		// Ids above 500 simulate upstream failures.
		if id > 500 {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_ = json.NewEncoder(w).Encode(models.MovieDetails{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			VoteAverage: 7.5,
		})
	}))
}

func metadataService(upstream string) *MovieMetadataService {
	return NewMovieMetadataService(&config.TMDBConfig{
		BaseURL:       upstream,
		APIKey:        "test-key",
		Timeout:       2 * time.Second,
		MaxBatchSize:  20,
		MaxConcurrent: 4,
	}, quietLogger())
}

func TestMovieMetadataService_FetchBatch(t *testing.T) {
	t.Run("fetches all ids preserving order", func(t *testing.T) {
		upstream := newUpstream(t, nil)
		defer upstream.Close()

		results, err := metadataService(upstream.URL).FetchBatch(context.Background(), []int{7, 3, 12})
		require.NoError(t, err)

		ids := make([]int, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		assert.Equal(t, []int{7, 3, 12}, ids)
		assert.Equal(t, "Movie 7", results[0].Title)
	})

	t.Run("individual failures are omitted, not fatal", func(t *testing.T) {
		upstream := newUpstream(t, nil)
		defer upstream.Close()

		results, err := metadataService(upstream.URL).FetchBatch(context.Background(), []int{7, 999, 12})
		require.NoError(t, err)

		ids := make([]int, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		assert.Equal(t, []int{7, 12}, ids)
	})

	t.Run("oversized batches are truncated", func(t *testing.T) {
		var requests atomic.Int64
		upstream := newUpstream(t, &requests)
		defer upstream.Close()

		movieIDs := make([]int, 30)
		for i := range movieIDs {
			movieIDs[i] = i + 1
		}

		results, err := metadataService(upstream.URL).FetchBatch(context.Background(), movieIDs)
		require.NoError(t, err)

		assert.Len(t, results, 20)
		assert.EqualValues(t, 20, requests.Load())
	})

	t.Run("missing api key refuses to serve", func(t *testing.T) {
		service := NewMovieMetadataService(&config.TMDBConfig{
			BaseURL: "http://localhost:0",
		}, quietLogger())

		_, err := service.FetchBatch(context.Background(), []int{7})
		assert.ErrorIs(t, err, ErrMetadataNotConfigured)
	})
}
