package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closingHandler handles HTTP requests related to daily closings.
type closingHandler struct {
	closingSvc portssvc.ClosingSvcFacade
}

func newClosingHandler(closingSvc portssvc.ClosingSvcFacade) *closingHandler {
	return &closingHandler{closingSvc: closingSvc}
}

// listClosings godoc
// @Summary List daily closings
// @Description Lists the company's daily closing records, oldest first
// @Tags closings
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {array} dto.ClosingResponse
// @Router /ledger/{companyID}/closings [get]
func (h *closingHandler) listClosings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	closings, err := h.closingSvc.ListClosings(c.Request.Context(), companyID)
	if err != nil {
		logger.Error("Failed to list closings", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClosingResponses(closings))
}

// recordClosing godoc
// @Summary Record a daily closing
// @Description Reconciles a physical cash count against the ledger and books any adjustments
// @Tags closings
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param closing body dto.RecordClosingRequest true "Closing"
// @Success 201 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "A closing for that date already exists"
// @Router /ledger/{companyID}/closings [post]
func (h *closingHandler) recordClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	req := dto.RecordClosingRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RecordClosing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	closing, err := h.closingSvc.RecordClosing(c.Request.Context(), companyID, req, actorID)
	if err != nil {
		logger.Warn("Failed to record closing", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToClosingResponse(closing))
}

// updateClosing godoc
// @Summary Edit a daily closing
// @Description Re-runs the reconciliation with updated counts, replacing the linked adjustments
// @Tags closings
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param closingID path string true "Closing ID"
// @Param closing body dto.RecordClosingRequest true "Closing"
// @Success 200 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Closing not found"
// @Router /ledger/{companyID}/closings/{closingID} [put]
func (h *closingHandler) updateClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	closingID := c.Param("closingID")

	req := dto.RecordClosingRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateClosing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	closing, err := h.closingSvc.UpdateClosing(c.Request.Context(), companyID, closingID, req, actorID)
	if err != nil {
		logger.Warn("Failed to update closing", slog.String("closing_id", closingID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClosingResponse(closing))
}
