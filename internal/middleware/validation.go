package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinerec/cinerec/internal/validation"
)

// ValidationMiddleware validates POST bodies against JSON schemas before
// they reach the handlers, so handlers can assume structurally sound input.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: validator}
}

// ValidateRecommendationRequest validates the favorite-list request body.
func (vm *ValidationMiddleware) ValidateRecommendationRequest() gin.HandlerFunc {
	return vm.validateRequestBody("recommendation-request")
}

// ValidateMovieBatchRequest validates the batch metadata request body.
func (vm *ValidationMiddleware) ValidateMovieBatchRequest() gin.HandlerFunc {
	return vm.validateRequestBody("movie-batch-request")
}

func (vm *ValidationMiddleware) validateRequestBody(schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "UNREADABLE_BODY",
					"message": "Failed to read request body",
				},
			})
			c.Abort()
			return
		}

		// Restore the body so handlers can bind it again.
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		result := vm.validator.ValidateBody(schemaName, bodyBytes)
		if !result.Valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_REQUEST_BODY",
					"message": "Request body failed schema validation",
					"details": result.Errors,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
