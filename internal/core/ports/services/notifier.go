package services

import (
	"context"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
)

// ClosingNotifier is the notification collaborator for closing events.
// Implementations build a subject/text/html triple from the closing summary
// and deliver it to the configured recipients. Delivery failure is logged
// and never blocks the closing itself.
type ClosingNotifier interface {
	NotifyClosingRecorded(ctx context.Context, companyID string, closing domain.ClosingRecord)
}
