package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Movies         *MoviesHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommender, logger),
		Movies:         NewMoviesHandler(services.MovieMetadata, logger),
		Admin:          NewAdminHandler(logger, services.Recommender),
	}
}
