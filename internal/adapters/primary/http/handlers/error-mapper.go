package handlers

import (
	"errors"
	"net/http"

	"churn-prediction-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidTopN),
		errors.Is(err, domain.ErrInvalidCustomerID),
		errors.Is(err, domain.ErrUnsupportedEncoding):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Load errors: the cache has nothing to serve
	case domain.IsLoadError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
