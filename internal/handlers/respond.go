package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks-app/openbooks/internal/apperrors"
)

// actorHeader carries the identity recorded in audit fields. Authentication
// is handled upstream of this service; an absent header falls back to "api".
const actorHeader = "X-Actor-ID"

func actorID(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return "api"
}

// respondError maps service errors to HTTP responses. Posting rejections get
// a 422 carrying the stable rejection name so producers can branch on it.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientLines),
		errors.Is(err, apperrors.ErrInvalidLineAmount),
		errors.Is(err, apperrors.ErrUnknownOrInactiveAccount),
		errors.Is(err, apperrors.ErrUnbalancedTransaction):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"rejection": apperrors.RejectionKind(err),
		})
	case errors.Is(err, apperrors.ErrImmutablePostedTransaction):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"rejection": apperrors.RejectionKind(err),
		})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrLedgerIntegrity):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     err.Error(),
			"rejection": apperrors.RejectionKind(err),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
