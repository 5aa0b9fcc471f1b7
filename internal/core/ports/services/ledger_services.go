package services

import (
	"context"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
)

// LedgerSvcFacade exposes read access to a company's ledger snapshot and its
// computed balances.
type LedgerSvcFacade interface {
	// GetBalances recomputes and returns the per-(account,currency) balances.
	GetBalances(ctx context.Context, companyID string) (map[domain.LedgerKey]dto.AccountBalanceResponse, error)
	// GetSnapshot returns the current ledger document snapshot. Callers must
	// treat it as read-only.
	GetSnapshot(ctx context.Context, companyID string) (*domain.LedgerDocument, error)
}

// MovementSvcFacade covers user-facing movement operations.
type MovementSvcFacade interface {
	ListMovements(ctx context.Context, companyID string, filter dto.ListMovementsFilter) ([]domain.Movement, *string, error)
	CreateMovement(ctx context.Context, companyID string, req dto.CreateMovementRequest, actorID string) (domain.Movement, error)
	UpdateMovement(ctx context.Context, companyID string, movementID string, req dto.UpdateMovementRequest, actorID string) (domain.Movement, error)
	DeleteMovement(ctx context.Context, companyID string, movementID string, actorID string) error
}

// ClosingSvcFacade covers the daily-closing reconciliation operations.
// Closings are recorded once per business date and afterwards only edited,
// never deleted.
type ClosingSvcFacade interface {
	ListClosings(ctx context.Context, companyID string) ([]domain.ClosingRecord, error)
	RecordClosing(ctx context.Context, companyID string, req dto.RecordClosingRequest, actorID string) (domain.ClosingRecord, error)
	UpdateClosing(ctx context.Context, companyID string, closingID string, req dto.RecordClosingRequest, actorID string) (domain.ClosingRecord, error)
}
