package services

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/internal/config"
)

type Services struct {
	Auth          *AuthService
	Health        *HealthService
	Recommender   *Recommender
	MovieMetadata *MovieMetadataService
}

func New(cfg *config.Config, logger *logrus.Logger, snapshot *artifacts.Snapshot, cache *redis.Client) *Services {
	return &Services{
		Auth:          NewAuthService(cfg, logger),
		Health:        NewHealthService(snapshot, logger),
		Recommender:   NewRecommender(snapshot, cache, cfg.Recommendation.CacheTTL, logger),
		MovieMetadata: NewMovieMetadataService(&cfg.TMDB, logger),
	}
}
