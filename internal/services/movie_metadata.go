package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/pkg/models"
)

// ErrMetadataNotConfigured means the upstream movie-database API key is
// missing, so the metadata proxy cannot serve.
var ErrMetadataNotConfigured = errors.New("movie metadata API key is not configured")

// MovieMetadataService proxies batch metadata lookups to the external movie
// database. Individual lookup failures are tolerated by omitting that movie
// from the response; only a missing API key fails the whole call.
type MovieMetadataService struct {
	config *config.TMDBConfig
	client *http.Client
	logger *logrus.Logger
}

func NewMovieMetadataService(cfg *config.TMDBConfig, logger *logrus.Logger) *MovieMetadataService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &MovieMetadataService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchBatch fetches metadata for up to MaxBatchSize movie ids with bounded
// concurrency, preserving the order of the input ids in the result.
func (s *MovieMetadataService) FetchBatch(ctx context.Context, movieIDs []int) ([]models.MovieDetails, error) {
	if s.config.APIKey == "" {
		return nil, ErrMetadataNotConfigured
	}

	maxBatch := s.config.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 20
	}
	if len(movieIDs) > maxBatch {
		s.logger.WithFields(logrus.Fields{
			"requested": len(movieIDs),
			"max":       maxBatch,
		}).Warn("Truncating oversized metadata batch")
		movieIDs = movieIDs[:maxBatch]
	}

	maxConcurrent := s.config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	slots := make([]*models.MovieDetails, len(movieIDs))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrent)

	for i, movieID := range movieIDs {
		i, movieID := i, movieID
		group.Go(func() error {
			details, err := s.fetchMovie(ctx, movieID)
			if err != nil {
				// Per-id tolerance: log and omit from the response.
				s.logger.WithError(err).WithField("movie_id", movieID).Warn("Failed to fetch movie metadata")
				return nil
			}
			slots[i] = details
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]models.MovieDetails, 0, len(slots))
	for _, details := range slots {
		if details != nil {
			results = append(results, *details)
		}
	}
	return results, nil
}

func (s *MovieMetadataService) fetchMovie(ctx context.Context, movieID int) (*models.MovieDetails, error) {
	endpoint := fmt.Sprintf("%s/movie/%d", s.config.BaseURL, movieID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("api_key", s.config.APIKey)
	query.Set("language", "en-US")
	req.URL.RawQuery = query.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var details models.MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to decode movie payload: %w", err)
	}
	return &details, nil
}
