package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/pkg/models"
)

// MovieMetadataInterface is the metadata proxy surface the handler uses.
type MovieMetadataInterface interface {
	FetchBatch(ctx context.Context, movieIDs []int) ([]models.MovieDetails, error)
}

type MoviesHandler struct {
	metadata  MovieMetadataInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewMoviesHandler(metadata MovieMetadataInterface, logger *logrus.Logger) *MoviesHandler {
	return &MoviesHandler{
		metadata:  metadata,
		validator: validator.New(),
		logger:    logger,
	}
}

// PostBatch serves POST /api/movies/batch. Movies whose upstream lookup
// fails are omitted from the response; the batch never fails as a whole.
func (h *MoviesHandler) PostBatch(c *gin.Context) {
	var request models.MovieBatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Request must include a non-empty 'movie_ids' list",
			},
		})
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Movie ids must be positive integers",
				"details": err.Error(),
			},
		})
		return
	}

	results, err := h.metadata.FetchBatch(c.Request.Context(), request.MovieIDs)
	if err != nil {
		if errors.Is(err, services.ErrMetadataNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "METADATA_NOT_CONFIGURED",
					"message": "Server configuration error: API key missing",
				},
			})
			return
		}

		h.logger.WithError(err).Error("Batch metadata fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "METADATA_FETCH_FAILED",
				"message": "Failed to fetch movie metadata",
			},
		})
		return
	}

	c.JSON(http.StatusOK, results)
}
