package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/core/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler exposes the computed ledger balances.
type ledgerHandler struct {
	ledgerSvc portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerSvc portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerSvc: ledgerSvc}
}

// getBalances godoc
// @Summary Get account balances
// @Description Recomputes and returns the balance of every account-currency pair
// @Tags ledger
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} dto.BalancesResponse
// @Router /ledger/{companyID}/balances [get]
func (h *ledgerHandler) getBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	balances, err := h.ledgerSvc.GetBalances(c.Request.Context(), companyID)
	if err != nil {
		logger.Error("Failed to compute balances", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalancesResponse{
		CompanyID: companyID,
		Balances:  services.SortedBalanceResponses(balances),
	})
}
