package dto

import (
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateMovementRequest is the payload for registering a new movement.
type CreateMovementRequest struct {
	AccountID        string          `json:"accountID" binding:"required"`
	Currency         string          `json:"currency" binding:"required,oneof=CRC USD"`
	Category         string          `json:"category" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	CounterpartyCode string          `json:"counterpartyCode" binding:"omitempty,max=30"`
	InvoiceRef       string          `json:"invoiceRef" binding:"omitempty,max=20"`
	ManagerName      string          `json:"managerName" binding:"required,max=100"`
	Notes            string          `json:"notes" binding:"omitempty,max=500"`
}

// ToInput converts the request to the domain constructor input.
func (r CreateMovementRequest) ToInput(createdAt time.Time) domain.NewMovementInput {
	return domain.NewMovementInput{
		AccountID:        domain.AccountID(r.AccountID),
		Currency:         domain.Currency(r.Currency),
		Category:         domain.Category(r.Category),
		Amount:           r.Amount,
		CounterpartyCode: r.CounterpartyCode,
		InvoiceRef:       r.InvoiceRef,
		ManagerName:      r.ManagerName,
		Notes:            r.Notes,
		CreatedAt:        createdAt,
	}
}

// UpdateMovementRequest is the patch payload for editing a movement. Nil
// fields are left unchanged; CreatedAt is not editable.
type UpdateMovementRequest struct {
	CounterpartyCode *string          `json:"counterpartyCode" binding:"omitempty,max=30"`
	InvoiceRef       *string          `json:"invoiceRef" binding:"omitempty,max=20"`
	Category         *string          `json:"category"`
	Amount           *decimal.Decimal `json:"amount"`
	ManagerName      *string          `json:"managerName" binding:"omitempty,max=100"`
	Notes            *string          `json:"notes" binding:"omitempty,max=500"`
	Currency         *string          `json:"currency" binding:"omitempty,oneof=CRC USD"`
}

// ToPatch converts the request to a domain movement patch.
func (r UpdateMovementRequest) ToPatch() domain.MovementPatch {
	patch := domain.MovementPatch{
		CounterpartyCode: r.CounterpartyCode,
		InvoiceRef:       r.InvoiceRef,
		Amount:           r.Amount,
		ManagerName:      r.ManagerName,
		Notes:            r.Notes,
	}
	if r.Category != nil {
		category := domain.Category(*r.Category)
		patch.Category = &category
	}
	if r.Currency != nil {
		currency := domain.Currency(*r.Currency)
		patch.Currency = &currency
	}
	return patch
}

// ListMovementsFilter narrows and pages a movement listing.
type ListMovementsFilter struct {
	AccountID string `form:"accountID"`
	Currency  string `form:"currency"`
	Limit     int    `form:"limit"`
	NextToken string `form:"nextToken"`
}

// AuditRecordResponse mirrors one audit record.
type AuditRecordResponse struct {
	At     time.Time         `json:"at"`
	Before map[string]string `json:"before"`
	After  map[string]string `json:"after"`
}

// MovementResponse defines the data returned for a movement.
type MovementResponse struct {
	MovementID       string                `json:"movementID"`
	AccountID        string                `json:"accountID"`
	Currency         string                `json:"currency"`
	Category         string                `json:"category"`
	AmountIn         decimal.Decimal       `json:"amountIn"`
	AmountOut        decimal.Decimal       `json:"amountOut"`
	CounterpartyCode string                `json:"counterpartyCode,omitempty"`
	InvoiceRef       string                `json:"invoiceRef,omitempty"`
	ManagerName      string                `json:"managerName"`
	Notes            string                `json:"notes,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	IsEdited         bool                  `json:"isEdited"`
	EditHistory      []AuditRecordResponse `json:"editHistory,omitempty"`
	LinkedClosingID  string                `json:"linkedClosingID,omitempty"`
	Locked           bool                  `json:"locked"`
}

// ToMovementResponse converts a domain.Movement to its response DTO. The
// locked flag is evaluated against the lock boundary of the movement's
// account-currency pair.
func ToMovementResponse(m domain.Movement, lockedUntil *time.Time) MovementResponse {
	resp := MovementResponse{
		MovementID:       m.MovementID,
		AccountID:        string(m.AccountID),
		Currency:         string(m.Currency),
		Category:         string(m.Category),
		AmountIn:         m.AmountIn,
		AmountOut:        m.AmountOut,
		CounterpartyCode: m.CounterpartyCode,
		InvoiceRef:       m.InvoiceRef,
		ManagerName:      m.ManagerName,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		IsEdited:         m.IsEdited,
		LinkedClosingID:  m.LinkedClosingID,
		Locked:           m.IsLockedAt(lockedUntil),
	}
	for _, rec := range m.EditHistory {
		resp.EditHistory = append(resp.EditHistory, toAuditRecordResponse(rec))
	}
	return resp
}

func toAuditRecordResponse(rec domain.AuditRecord) AuditRecordResponse {
	out := AuditRecordResponse{
		At:     rec.At,
		Before: make(map[string]string, len(rec.Before)),
		After:  make(map[string]string, len(rec.After)),
	}
	for field, value := range rec.Before {
		out.Before[string(field)] = value
	}
	for field, value := range rec.After {
		out.After[string(field)] = value
	}
	return out
}

// ListMovementsResponse pages a movement listing.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}
