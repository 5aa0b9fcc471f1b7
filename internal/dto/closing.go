package dto

import (
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordClosingRequest is the payload for registering or editing a daily
// closing of the FondoGeneral account.
type RecordClosingRequest struct {
	ClosingDate      time.Time       `json:"closingDate" binding:"required" time_format:"2006-01-02"`
	Manager          string          `json:"manager" binding:"required,max=100"`
	Notes            string          `json:"notes" binding:"omitempty,max=500"`
	CountedCRC       decimal.Decimal `json:"countedCRC"`
	CountedUSD       decimal.Decimal `json:"countedUSD"`
	DenominationsCRC map[string]int  `json:"denominationsCRC"`
	DenominationsUSD map[string]int  `json:"denominationsUSD"`
}

// RemovedAdjustmentResponse mirrors one retracted adjustment.
type RemovedAdjustmentResponse struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Manager  string          `json:"manager"`
	At       time.Time       `json:"at"`
}

// ClosingResolutionResponse mirrors a closing's resolution, when present.
type ClosingResolutionResponse struct {
	RemovedAdjustments []RemovedAdjustmentResponse `json:"removedAdjustments"`
	BalanceCRC         decimal.Decimal             `json:"balanceCRC"`
	BalanceUSD         decimal.Decimal             `json:"balanceUSD"`
	ResolvedAt         time.Time                   `json:"resolvedAt"`
}

// ClosingResponse defines the data returned for a closing record.
type ClosingResponse struct {
	ClosingID          string                     `json:"closingID"`
	CreatedAt          time.Time                  `json:"createdAt"`
	ClosingDate        time.Time                  `json:"closingDate"`
	Manager            string                     `json:"manager"`
	Notes              string                     `json:"notes,omitempty"`
	CountedCRC         decimal.Decimal            `json:"countedCRC"`
	CountedUSD         decimal.Decimal            `json:"countedUSD"`
	DenominationsCRC   map[string]int             `json:"denominationsCRC,omitempty"`
	DenominationsUSD   map[string]int             `json:"denominationsUSD,omitempty"`
	RecordedBalanceCRC decimal.Decimal            `json:"recordedBalanceCRC"`
	RecordedBalanceUSD decimal.Decimal            `json:"recordedBalanceUSD"`
	DiffCRC            decimal.Decimal            `json:"diffCRC"`
	DiffUSD            decimal.Decimal            `json:"diffUSD"`
	Resolution         *ClosingResolutionResponse `json:"resolution,omitempty"`
}

// ToClosingResponse converts a domain.ClosingRecord to its response DTO.
func ToClosingResponse(c domain.ClosingRecord) ClosingResponse {
	resp := ClosingResponse{
		ClosingID:          c.ClosingID,
		CreatedAt:          c.CreatedAt,
		ClosingDate:        c.ClosingDate,
		Manager:            c.Manager,
		Notes:              c.Notes,
		CountedCRC:         c.CountedCRC,
		CountedUSD:         c.CountedUSD,
		DenominationsCRC:   c.DenominationsCRC,
		DenominationsUSD:   c.DenominationsUSD,
		RecordedBalanceCRC: c.RecordedBalanceCRC,
		RecordedBalanceUSD: c.RecordedBalanceUSD,
		DiffCRC:            c.DiffCRC,
		DiffUSD:            c.DiffUSD,
	}
	if c.Resolution != nil {
		res := &ClosingResolutionResponse{
			BalanceCRC: c.Resolution.BalanceCRC,
			BalanceUSD: c.Resolution.BalanceUSD,
			ResolvedAt: c.Resolution.ResolvedAt,
		}
		for _, removed := range c.Resolution.RemovedAdjustments {
			res.RemovedAdjustments = append(res.RemovedAdjustments, RemovedAdjustmentResponse{
				Currency: string(removed.Currency),
				Amount:   removed.Amount,
				Manager:  removed.Manager,
				At:       removed.At,
			})
		}
		resp.Resolution = res
	}
	return resp
}

// ToClosingResponses converts a slice of closings.
func ToClosingResponses(closings []domain.ClosingRecord) []ClosingResponse {
	responses := make([]ClosingResponse, len(closings))
	for i, c := range closings {
		responses[i] = ToClosingResponse(c)
	}
	return responses
}
