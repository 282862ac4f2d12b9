package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
)

// AdminHandler exposes operator-facing views of the loaded artifact bundle.
type AdminHandler struct {
	logger      *logrus.Logger
	recommender *services.Recommender
}

func NewAdminHandler(logger *logrus.Logger, recommender *services.Recommender) *AdminHandler {
	return &AdminHandler{
		logger:      logger,
		recommender: recommender,
	}
}

// GetArtifacts serves GET /api/admin/artifacts with snapshot shape stats.
func (h *AdminHandler) GetArtifacts(c *gin.Context) {
	snapshot := h.recommender.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"known_users":        snapshot.UserCount(),
		"known_movies":       snapshot.MovieCount(),
		"titles":             snapshot.TitleCount(),
		"feature_dimensions": snapshot.FeatureDim(),
		"latent_dimensions":  snapshot.LatentDim(),
	})
}
