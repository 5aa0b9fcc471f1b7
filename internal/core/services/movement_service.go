package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/accounting"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/audit"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/pagination"
)

const defaultListLimit = 50

// movementService provides user-facing movement operations on top of the
// ledger snapshot holder.
type movementService struct {
	ledger   *LedgerService
	userSvc  portssvc.UserSvcFacade
	maxEdits int
}

// NewMovementService creates a new MovementService.
func NewMovementService(ledger *LedgerService, userSvc portssvc.UserSvcFacade, maxEdits int) portssvc.MovementSvcFacade {
	if maxEdits <= 0 {
		maxEdits = audit.DefaultMaxEdits
	}
	return &movementService{
		ledger:   ledger,
		userSvc:  userSvc,
		maxEdits: maxEdits,
	}
}

// Ensure movementService implements the portssvc.MovementSvcFacade interface
var _ portssvc.MovementSvcFacade = (*movementService)(nil)

// CreateMovement validates and registers a new movement. The movement's
// CreatedAt is the registration instant and becomes its immutable position
// key.
func (s *movementService) CreateMovement(ctx context.Context, companyID string, req dto.CreateMovementRequest, actorID string) (domain.Movement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	movement, err := domain.NewMovement(req.ToInput(time.Now().UTC()))
	if err != nil {
		return domain.Movement{}, err
	}
	movement.MovementID = uuid.NewString()

	var created domain.Movement
	_, err = s.ledger.Mutate(ctx, companyID, func(doc *domain.LedgerDocument) error {
		created = doc.AppendMovement(movement)
		return nil
	})
	if err != nil {
		return domain.Movement{}, err
	}

	logger.Info("Movement created",
		slog.String("movement_id", created.MovementID),
		slog.String("account_id", string(created.AccountID)),
		slog.String("category", string(created.Category)),
		slog.String("actor_id", actorID))
	return created, nil
}

// UpdateMovement edits a movement in place, accreting an audit record. The
// lock evaluator rejects edits to adjustments and to movements at or before
// the closing lock boundary.
func (s *movementService) UpdateMovement(ctx context.Context, companyID string, movementID string, req dto.UpdateMovementRequest, actorID string) (domain.Movement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var updated domain.Movement
	_, err := s.ledger.Mutate(ctx, companyID, func(doc *domain.LedgerDocument) error {
		idx, ok := doc.FindMovement(movementID)
		if !ok {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		current := doc.Movements[idx]

		if err := checkMutable(doc, current); err != nil {
			return err
		}

		next, err := current.ApplyEdit(req.ToPatch())
		if err != nil {
			return err
		}
		next, err = audit.RecordEdit(current, next, time.Now().UTC(), s.maxEdits)
		if err != nil {
			return err
		}

		doc.Movements[idx] = next
		updated = next
		return nil
	})
	if err != nil {
		return domain.Movement{}, err
	}

	logger.Info("Movement updated",
		slog.String("movement_id", movementID),
		slog.Int("edit_count", len(updated.EditHistory)),
		slog.String("actor_id", actorID))
	return updated, nil
}

// DeleteMovement removes an unlocked, non-adjustment movement. Only the
// account's principal administrator may delete.
func (s *movementService) DeleteMovement(ctx context.Context, companyID string, movementID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	isAdmin, err := s.userSvc.IsPrincipalAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: movement deletion requires the principal administrator", apperrors.ErrForbidden)
	}

	_, err = s.ledger.Mutate(ctx, companyID, func(doc *domain.LedgerDocument) error {
		idx, ok := doc.FindMovement(movementID)
		if !ok {
			return fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
		}
		if err := checkMutable(doc, doc.Movements[idx]); err != nil {
			return err
		}
		doc.RemoveMovementAt(idx)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Movement deleted",
		slog.String("movement_id", movementID),
		slog.String("actor_id", actorID))
	return nil
}

// ListMovements returns movements in display order (CreatedAt ascending),
// optionally filtered by account and currency, paged with an opaque token.
func (s *movementService) ListMovements(ctx context.Context, companyID string, filter dto.ListMovementsFilter) ([]domain.Movement, *string, error) {
	doc, err := s.ledger.Snapshot(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var afterCreatedAt time.Time
	var afterSeq int64
	hasToken := false
	if filter.NextToken != "" {
		afterCreatedAt, afterSeq, err = pagination.DecodeMovementToken(filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		hasToken = true
	}

	var matched []domain.Movement
	for _, m := range accounting.SortMovements(doc.Movements) {
		if filter.AccountID != "" && string(m.AccountID) != filter.AccountID {
			continue
		}
		if filter.Currency != "" && string(m.Currency) != filter.Currency {
			continue
		}
		if hasToken && !isAfterPosition(m, afterCreatedAt, afterSeq) {
			continue
		}
		matched = append(matched, m)
		if len(matched) > limit {
			break
		}
	}

	var nextToken *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		token := pagination.EncodeMovementToken(last.CreatedAt, last.Seq)
		nextToken = &token
	}
	return matched, nextToken, nil
}

func isAfterPosition(m domain.Movement, createdAt time.Time, seq int64) bool {
	if m.CreatedAt.After(createdAt) {
		return true
	}
	return m.CreatedAt.Equal(createdAt) && m.Seq > seq
}

// checkMutable applies the lock evaluator to a mutation attempt: adjustments
// are always immutable, everything else is governed by the lock boundary of
// its account-currency pair.
func checkMutable(doc *domain.LedgerDocument, m domain.Movement) error {
	if m.Category.IsAdjustment() {
		return fmt.Errorf("%w: movement %s", apperrors.ErrAdjustmentImmutable, m.MovementID)
	}
	boundary := doc.LockBoundary(domain.LedgerKey{Account: m.AccountID, Currency: m.Currency})
	if m.IsLockedAt(boundary) {
		return fmt.Errorf("%w: movement %s predates the closing of %s", apperrors.ErrMovementLocked, m.MovementID, boundary.Format(time.RFC3339))
	}
	return nil
}
