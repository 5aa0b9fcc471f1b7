package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/accounting"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/audit"
)

// closingService implements the daily-closing reconciler for the
// FondoGeneral account. The physical cash count is ground truth: the ledger
// is adjusted toward the count through visible, attributable, immutable
// adjustment movements, never through silent balance corrections.
type closingService struct {
	ledger   *LedgerService
	notifier portssvc.ClosingNotifier
	maxEdits int
}

// NewClosingService creates a new ClosingService.
func NewClosingService(ledger *LedgerService, notifier portssvc.ClosingNotifier, maxEdits int) portssvc.ClosingSvcFacade {
	if maxEdits <= 0 {
		maxEdits = audit.DefaultMaxEdits
	}
	return &closingService{
		ledger:   ledger,
		notifier: notifier,
		maxEdits: maxEdits,
	}
}

// Ensure closingService implements the portssvc.ClosingSvcFacade interface
var _ portssvc.ClosingSvcFacade = (*closingService)(nil)

func validateClosingRequest(req dto.RecordClosingRequest) error {
	if req.ClosingDate.IsZero() {
		return fmt.Errorf("%w: closing date is required", apperrors.ErrValidation)
	}
	if req.CountedCRC.IsNegative() || req.CountedUSD.IsNegative() {
		return fmt.Errorf("%w: counted totals must be non-negative", apperrors.ErrValidation)
	}
	return nil
}

// RecordClosing registers a new daily closing: it captures the recorded
// balances, books the per-currency adjustments for any count/ledger diff,
// and advances the lock boundary to the closing's registration time.
func (s *closingService) RecordClosing(ctx context.Context, companyID string, req dto.RecordClosingRequest, actorID string) (domain.ClosingRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateClosingRequest(req); err != nil {
		return domain.ClosingRecord{}, err
	}

	var result domain.ClosingRecord
	_, err := s.ledger.Mutate(ctx, companyID, func(doc *domain.LedgerDocument) error {
		for _, existing := range doc.Closings {
			if existing.SameBusinessDate(req.ClosingDate) {
				return fmt.Errorf("%w: a closing for %s is already recorded", apperrors.ErrDuplicate, req.ClosingDate.Format("2006-01-02"))
			}
		}

		now := time.Now().UTC()
		closing := domain.ClosingRecord{
			ClosingID:        uuid.NewString(),
			CreatedAt:        now,
			ClosingDate:      req.ClosingDate,
			Manager:          req.Manager,
			Notes:            req.Notes,
			CountedCRC:       req.CountedCRC.Truncate(0),
			CountedUSD:       req.CountedUSD.Truncate(0),
			DenominationsCRC: req.DenominationsCRC,
			DenominationsUSD: req.DenominationsUSD,
		}

		if err := s.reconcile(doc, &closing, now); err != nil {
			return err
		}

		doc.Closings = append(doc.Closings, closing)
		result = closing
		return nil
	})
	if err != nil {
		return domain.ClosingRecord{}, err
	}

	logger.Info("Daily closing recorded",
		slog.String("closing_id", result.ClosingID),
		slog.String("closing_date", result.ClosingDate.Format("2006-01-02")),
		slog.String("diff_crc", result.DiffCRC.String()),
		slog.String("diff_usd", result.DiffUSD.String()),
		slog.String("actor_id", actorID))

	s.notifyAsync(ctx, companyID, result)
	return result, nil
}

// UpdateClosing edits an existing closing. The registration time (the lock
// boundary value) is immutable; counts, manager, notes and denominations are
// replaced, and the linked adjustments are recomputed against a ledger
// valued without them.
func (s *closingService) UpdateClosing(ctx context.Context, companyID string, closingID string, req dto.RecordClosingRequest, actorID string) (domain.ClosingRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateClosingRequest(req); err != nil {
		return domain.ClosingRecord{}, err
	}

	var result domain.ClosingRecord
	_, err := s.ledger.Mutate(ctx, companyID, func(doc *domain.LedgerDocument) error {
		idx, ok := doc.FindClosing(closingID)
		if !ok {
			return fmt.Errorf("%w: closing %s", apperrors.ErrNotFound, closingID)
		}
		for _, existing := range doc.Closings {
			if existing.ClosingID != closingID && existing.SameBusinessDate(req.ClosingDate) {
				return fmt.Errorf("%w: a closing for %s is already recorded", apperrors.ErrDuplicate, req.ClosingDate.Format("2006-01-02"))
			}
		}

		closing := doc.Closings[idx].Clone()
		closing.ClosingDate = req.ClosingDate
		closing.Manager = req.Manager
		closing.Notes = req.Notes
		closing.CountedCRC = req.CountedCRC.Truncate(0)
		closing.CountedUSD = req.CountedUSD.Truncate(0)
		closing.DenominationsCRC = req.DenominationsCRC
		closing.DenominationsUSD = req.DenominationsUSD

		if err := s.reconcile(doc, &closing, time.Now().UTC()); err != nil {
			return err
		}

		doc.Closings[idx] = closing
		result = closing
		return nil
	})
	if err != nil {
		return domain.ClosingRecord{}, err
	}

	logger.Info("Daily closing updated",
		slog.String("closing_id", result.ClosingID),
		slog.String("diff_crc", result.DiffCRC.String()),
		slog.String("diff_usd", result.DiffUSD.String()),
		slog.String("actor_id", actorID))

	s.notifyAsync(ctx, companyID, result)
	return result, nil
}

// ListClosings returns the company's closings, oldest first.
func (s *closingService) ListClosings(ctx context.Context, companyID string) ([]domain.ClosingRecord, error) {
	doc, err := s.ledger.Snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	closings := make([]domain.ClosingRecord, len(doc.Closings))
	for i, c := range doc.Closings {
		closings[i] = c.Clone()
	}
	return closings, nil
}

// reconcile compares the counted totals against the ledger balance valued
// without this closing's own adjustments, then adds, updates or removes the
// per-currency adjustment movement so that at most one active adjustment
// exists per (closing, currency). The lock boundary advances only after the
// adjustments are written.
func (s *closingService) reconcile(doc *domain.LedgerDocument, closing *domain.ClosingRecord, editedAt time.Time) error {
	var removed []domain.RemovedAdjustment

	for _, currency := range domain.AllCurrencies {
		key := domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: currency}
		recorded := accounting.CurrentBalanceExcluding(doc, key, func(m domain.Movement) bool {
			return m.Category.IsAdjustment() && m.LinkedClosingID == closing.ClosingID
		})
		diff := closing.Counted(currency).Sub(recorded).Truncate(0)

		switch currency {
		case domain.USD:
			closing.RecordedBalanceUSD = recorded
			closing.DiffUSD = diff
		default:
			closing.RecordedBalanceCRC = recorded
			closing.DiffCRC = diff
		}

		existingIdx := findLinkedAdjustment(doc, closing.ClosingID, currency)

		if diff.IsZero() {
			if existingIdx >= 0 {
				prior := doc.Movements[existingIdx]
				removed = append(removed, domain.RemovedAdjustment{
					Currency: currency,
					Amount:   prior.SignedAmount(),
					Manager:  prior.ManagerName,
					At:       prior.CreatedAt,
				})
				doc.RemoveMovementAt(existingIdx)
			}
			continue
		}

		category := domain.AdjustmentCategoryForDiff(diff)
		if existingIdx >= 0 {
			current := doc.Movements[existingIdx]
			next := current.Clone()
			applyAdjustmentAmount(&next, category, diff.Abs())
			next.Denominations = cloneDenominations(closing.DenominationsFor(currency))
			next, err := audit.RecordEdit(current, next, editedAt, s.maxEdits)
			if err != nil {
				return err
			}
			doc.Movements[existingIdx] = next
		} else {
			adjustment := domain.Movement{
				MovementID:      uuid.NewString(),
				AccountID:       domain.AccountFondoGeneral,
				Currency:        currency,
				ManagerName:     domain.SystemManager,
				CreatedAt:       closing.CreatedAt,
				LinkedClosingID: closing.ClosingID,
				Denominations:   cloneDenominations(closing.DenominationsFor(currency)),
			}
			applyAdjustmentAmount(&adjustment, category, diff.Abs())
			doc.AppendMovement(adjustment)
		}
	}

	if len(removed) > 0 {
		closing.Resolution = &domain.ClosingResolution{
			RemovedAdjustments: removed,
			BalanceCRC:         accounting.CurrentBalanceExcluding(doc, domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: domain.CRC}, nil),
			BalanceUSD:         accounting.CurrentBalanceExcluding(doc, domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: domain.USD}, nil),
			ResolvedAt:         editedAt,
		}
	} else {
		closing.Resolution = nil
	}

	for _, currency := range domain.AllCurrencies {
		doc.AdvanceLock(domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: currency}, closing.CreatedAt)
	}
	return nil
}

func (s *closingService) notifyAsync(ctx context.Context, companyID string, closing domain.ClosingRecord) {
	if s.notifier == nil {
		return
	}
	go s.notifier.NotifyClosingRecorded(context.WithoutCancel(ctx), companyID, closing)
}

// findLinkedAdjustment returns the index of the active adjustment movement
// for (closingID, currency), or -1.
func findLinkedAdjustment(doc *domain.LedgerDocument, closingID string, currency domain.Currency) int {
	for i, m := range doc.Movements {
		if m.Category.IsAdjustment() && m.LinkedClosingID == closingID && m.Currency == currency {
			return i
		}
	}
	return -1
}

func applyAdjustmentAmount(m *domain.Movement, category domain.Category, amount decimal.Decimal) {
	m.Category = category
	if category == domain.CategoryAjusteCierreIngreso {
		m.AmountIn = amount
		m.AmountOut = decimal.Zero
	} else {
		m.AmountOut = amount
		m.AmountIn = decimal.Zero
	}
}

func cloneDenominations(src domain.DenominationCount) domain.DenominationCount {
	if src == nil {
		return nil
	}
	out := make(domain.DenominationCount, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
