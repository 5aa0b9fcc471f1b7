package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// movementHandler handles HTTP requests related to ledger movements.
type movementHandler struct {
	movementSvc portssvc.MovementSvcFacade
	ledgerSvc   portssvc.LedgerSvcFacade
}

func newMovementHandler(movementSvc portssvc.MovementSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) *movementHandler {
	return &movementHandler{movementSvc: movementSvc, ledgerSvc: ledgerSvc}
}

// listMovements godoc
// @Summary List ledger movements
// @Description Lists movements in display order, optionally filtered by account and currency
// @Tags movements
// @Produce json
// @Param companyID path string true "Company ID"
// @Param accountID query string false "Account filter"
// @Param currency query string false "Currency filter"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMovementsResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /ledger/{companyID}/movements [get]
func (h *movementHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	filter := dto.ListMovementsFilter{}
	if err := c.ShouldBindQuery(&filter); err != nil {
		logger.Error("Failed to bind query for ListMovements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}

	movements, nextToken, err := h.movementSvc.ListMovements(c.Request.Context(), companyID, filter)
	if err != nil {
		logger.Error("Failed to list movements", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	boundaries := h.lockBoundaries(c, companyID)
	resp := dto.ListMovementsResponse{NextToken: nextToken}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, dto.ToMovementResponse(m, boundaries[domain.LedgerKey{Account: m.AccountID, Currency: m.Currency}]))
	}
	c.JSON(http.StatusOK, resp)
}

// createMovement godoc
// @Summary Register a new movement
// @Description Validates and appends a movement to the company ledger
// @Tags movements
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param movement body dto.CreateMovementRequest true "Movement"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /ledger/{companyID}/movements [post]
func (h *movementHandler) createMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	req := dto.CreateMovementRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Actor user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.movementSvc.CreateMovement(c.Request.Context(), companyID, req, actorID)
	if err != nil {
		logger.Warn("Failed to create movement", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement, nil))
}

// updateMovement godoc
// @Summary Edit a movement
// @Description Applies a patch to an unlocked movement, accreting an audit record
// @Tags movements
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param movementID path string true "Movement ID"
// @Param patch body dto.UpdateMovementRequest true "Patch"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 409 {object} map[string]string "Movement locked or edit limit reached"
// @Router /ledger/{companyID}/movements/{movementID} [put]
func (h *movementHandler) updateMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	movementID := c.Param("movementID")

	req := dto.UpdateMovementRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.movementSvc.UpdateMovement(c.Request.Context(), companyID, movementID, req, actorID)
	if err != nil {
		logger.Warn("Failed to update movement", slog.String("movement_id", movementID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement, nil))
}

// deleteMovement godoc
// @Summary Delete a movement
// @Description Removes an unlocked, non-adjustment movement; principal administrator only
// @Tags movements
// @Produce json
// @Param companyID path string true "Company ID"
// @Param movementID path string true "Movement ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Not the principal administrator"
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 409 {object} map[string]string "Movement locked"
// @Router /ledger/{companyID}/movements/{movementID} [delete]
func (h *movementHandler) deleteMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	movementID := c.Param("movementID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.movementSvc.DeleteMovement(c.Request.Context(), companyID, movementID, actorID); err != nil {
		logger.Warn("Failed to delete movement", slog.String("movement_id", movementID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// lockBoundaries fetches the current lock boundary per account-currency so
// listings can flag locked movements. Failure degrades to no flags.
func (h *movementHandler) lockBoundaries(c *gin.Context, companyID string) map[domain.LedgerKey]*time.Time {
	boundaries := make(map[domain.LedgerKey]*time.Time)
	balances, err := h.ledgerSvc.GetBalances(c.Request.Context(), companyID)
	if err != nil {
		return boundaries
	}
	for key, b := range balances {
		boundaries[key] = b.LockedUntil
	}
	return boundaries
}
