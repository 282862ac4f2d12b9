package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/pkg/models"
)

// Fixed contract values. The cold-start threshold is where the latent
// aggregation of the collaborative scorer stops being statistically
// reliable; below it requests route to the content-based scorer.
const (
	ColdStartThreshold = 5
	DefaultLimit       = 15
	MaxLimit           = 50
)

// Recommender is the hybrid decision layer: it picks exactly one scorer per
// request, post-processes the raw ranking (title enrichment, shape
// normalization) and optionally memoizes responses in Redis. The snapshot
// is read-only after load, so Recommend is safe to call concurrently.
type Recommender struct {
	snapshot      *artifacts.Snapshot
	collaborative *CollaborativeScorer
	content       *ContentScorer
	cache         *redis.Client // nil when caching is disabled
	cacheTTL      time.Duration
	logger        *logrus.Logger

	served        *prometheus.CounterVec
	emptyProfiles prometheus.Counter
	duration      prometheus.Histogram
}

func NewRecommender(
	snapshot *artifacts.Snapshot,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *Recommender {
	r := &Recommender{
		snapshot:      snapshot,
		collaborative: NewCollaborativeScorer(logger),
		content:       NewContentScorer(logger),
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}

	r.served = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendations_served_total",
		Help: "Recommendation responses served, labeled by scoring algorithm",
	}, []string{"algorithm"})

	r.emptyProfiles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_empty_profiles_total",
		Help: "Requests rejected because no favorite id resolved to the catalog",
	})

	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_duration_seconds",
		Help:    "Time spent scoring and ranking a recommendation request",
		Buckets: prometheus.DefBuckets,
	})

	// Ignore duplicate registration so tests can build multiple engines.
	for _, c := range []prometheus.Collector{r.served, r.emptyProfiles, r.duration} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register recommendation metric")
			}
		}
	}

	return r
}

// Snapshot exposes the loaded artifact bundle for operator inspection.
func (r *Recommender) Snapshot() *artifacts.Snapshot { return r.snapshot }

// NormalizeLimit maps a missing or unusable limit to the documented default
// and clamps anything above the hard ceiling. Callers pass 0 for a missing
// or non-numeric limit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Recommend serves the favorite-list entry point. Lists below the
// cold-start threshold route to the content-based scorer, everything else
// to the collaborative scorer; the branch looks at raw list length, not at
// how many ids resolve.
func (r *Recommender) Recommend(ctx context.Context, favoriteIDs []int, limit int) (*models.RecommendationResponse, error) {
	limit = NormalizeLimit(limit)

	algorithm := AlgorithmCollaborative
	if len(favoriteIDs) < ColdStartThreshold {
		algorithm = AlgorithmContentBased
	}

	cacheKey := favoritesCacheKey(favoriteIDs, limit)
	if cached := r.cachedResponse(ctx, cacheKey); cached != nil {
		r.logger.WithField("algorithm", cached.Algorithm).Debug("Recommendation cache hit")
		return cached, nil
	}

	start := time.Now()
	var (
		scored []models.ScoredMovie
		err    error
	)
	if algorithm == AlgorithmContentBased {
		scored, err = r.content.Score(r.snapshot, favoriteIDs, limit)
	} else {
		scored, err = r.collaborative.ScoreFavorites(r.snapshot, favoriteIDs, limit)
	}
	r.duration.Observe(time.Since(start).Seconds())

	if err != nil {
		if err == ErrEmptyProfile {
			r.emptyProfiles.Inc()
		}
		return nil, err
	}

	response := &models.RecommendationResponse{
		Recommendations: r.enrichTitles(scored),
		Algorithm:       algorithm,
	}
	r.cacheResponse(ctx, cacheKey, response)

	r.served.WithLabelValues(algorithm).Inc()
	r.logger.WithFields(logrus.Fields{
		"algorithm": algorithm,
		"favorites": len(favoriteIDs),
		"results":   len(response.Recommendations),
		"limit":     limit,
	}).Info("Recommendations generated")

	return response, nil
}

// RecommendForUser serves an enrolled user from their learned latent
// vector, skipping the favorite-list aggregation entirely.
func (r *Recommender) RecommendForUser(ctx context.Context, userID int, limit int) (*models.RecommendationResponse, error) {
	limit = NormalizeLimit(limit)

	cacheKey := fmt.Sprintf("recommendations:user:%d:%d", userID, limit)
	if cached := r.cachedResponse(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	start := time.Now()
	scored, err := r.collaborative.ScoreUser(r.snapshot, userID, limit)
	r.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	response := &models.RecommendationResponse{
		Recommendations: r.enrichTitles(scored),
		Algorithm:       AlgorithmCollaborative,
	}
	r.cacheResponse(ctx, cacheKey, response)

	r.served.WithLabelValues(AlgorithmCollaborative).Inc()
	return response, nil
}

// enrichTitles attaches display titles where the catalog has them. Movies
// without a title keep an empty string rather than being dropped.
func (r *Recommender) enrichTitles(scored []models.ScoredMovie) []models.Recommendation {
	recommendations := make([]models.Recommendation, len(scored))
	for i, item := range scored {
		recommendations[i] = models.Recommendation{
			MovieID: item.MovieID,
			Score:   item.Score,
			Title:   r.snapshot.Title(item.MovieID),
		}
	}
	return recommendations
}

// favoritesCacheKey is order-insensitive: the favorite list is a set for
// scoring purposes, so permutations share a cache entry.
func favoritesCacheKey(favoriteIDs []int, limit int) string {
	unique := make(map[int]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		unique[id] = true
	}
	ids := make([]int, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("recommendations:favorites:%s:%d:%d", strings.Join(parts, ","), len(favoriteIDs), limit)
}

func (r *Recommender) cachedResponse(ctx context.Context, key string) *models.RecommendationResponse {
	if r.cache == nil {
		return nil
	}

	cached, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.WithError(err).Warn("Recommendation cache read failed")
		}
		return nil
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		r.logger.WithError(err).Warn("Dropping undecodable recommendation cache entry")
		return nil
	}
	response.CacheHit = true
	return &response
}

func (r *Recommender) cacheResponse(ctx context.Context, key string, response *models.RecommendationResponse) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL).Err(); err != nil {
		r.logger.WithError(err).Warn("Failed to cache recommendation response")
	}
}
