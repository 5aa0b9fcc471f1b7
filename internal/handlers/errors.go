package handlers

import (
	"errors"
	"net/http"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError maps the application error taxonomy to HTTP statuses.
// Validation and lock errors are user-visible rejections; everything
// unexpected collapses to a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrEditLimitExceeded),
		errors.Is(err, apperrors.ErrMovementLocked),
		errors.Is(err, apperrors.ErrAdjustmentImmutable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
