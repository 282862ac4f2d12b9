package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/pkg/models"
)

// RecommenderInterface is the engine surface the handler depends on.
type RecommenderInterface interface {
	Recommend(ctx context.Context, favoriteIDs []int, limit int) (*models.RecommendationResponse, error)
	RecommendForUser(ctx context.Context, userID int, limit int) (*models.RecommendationResponse, error)
}

type RecommendationHandler struct {
	recommender RecommenderInterface
	logger      *logrus.Logger
}

func NewRecommendationHandler(recommender RecommenderInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// Post serves POST /api/recommendations. The limit query parameter is
// optional; a missing or non-numeric value falls back to the engine's
// documented default, and out-of-range values are clamped by the engine.
func (h *RecommendationHandler) Post(c *gin.Context) {
	var request models.RecommendationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Request must include 'favorite_movie_ids'",
			},
		})
		return
	}

	limit := parseLimit(c)

	response, err := h.recommender.Recommend(c.Request.Context(), request.FavoriteMovieIDs, limit)
	if err != nil {
		if errors.Is(err, services.ErrEmptyProfile) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": gin.H{
					"code":    "EMPTY_PROFILE",
					"message": "None of the favorite movie ids are known to the catalog",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("request_id", c.GetString("request_id")).
			Error("Failed to generate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetForUser serves GET /api/recommendations/users/:userId for enrolled
// users with a learned latent vector.
func (h *RecommendationHandler) GetForUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "User id must be an integer",
			},
		})
		return
	}

	limit := parseLimit(c)

	response, err := h.recommender.RecommendForUser(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "UNKNOWN_USER",
					"message": "User is not present in the trained model",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to generate user recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// parseLimit returns 0 for a missing or non-numeric limit; the engine
// substitutes its default in that case.
func parseLimit(c *gin.Context) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0
	}
	return limit
}
