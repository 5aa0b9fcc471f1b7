package audit

import (
	"fmt"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
)

// DefaultMaxEdits caps how many audit records a movement may accrete.
const DefaultMaxEdits = 5

// maxStoredHistory is the bound CompressHistory enforces on loaded
// documents. It matches DefaultMaxEdits: histories written under the edit
// cap pass through untouched.
const maxStoredHistory = 5

// Diff compares two movement values over the closed audit field set and
// returns before/after maps holding only the fields whose values differ.
func Diff(before, after domain.Movement) (map[domain.AuditField]string, map[domain.AuditField]string) {
	changedBefore := make(map[domain.AuditField]string)
	changedAfter := make(map[domain.AuditField]string)
	for _, field := range domain.AuditFields {
		b := before.AuditValue(field)
		a := after.AuditValue(field)
		if b != a {
			changedBefore[field] = b
			changedAfter[field] = a
		}
	}
	return changedBefore, changedAfter
}

// RecordEdit appends the changed-field diff between before and after to
// after's history and marks it edited. It rejects with ErrEditLimitExceeded
// once the history holds maxEdits records (maxEdits <= 0 uses the default).
// If nothing changed, after is returned untouched and no record is appended.
func RecordEdit(before, after domain.Movement, at time.Time, maxEdits int) (domain.Movement, error) {
	if maxEdits <= 0 {
		maxEdits = DefaultMaxEdits
	}
	if len(before.EditHistory) >= maxEdits {
		return domain.Movement{}, fmt.Errorf("%w: movement %s already has %d edits", apperrors.ErrEditLimitExceeded, before.MovementID, len(before.EditHistory))
	}

	changedBefore, changedAfter := Diff(before, after)
	if len(changedAfter) == 0 {
		return after, nil
	}

	result := after.Clone()
	result.IsEdited = true
	result.EditHistory = append(result.EditHistory, domain.AuditRecord{
		At:     at,
		Before: changedBefore,
		After:  changedAfter,
	})
	return result, nil
}

// CompressHistory bounds an edit history to maxStoredHistory records while
// preserving the first and last record and an evenly spaced intermediate
// trail. Histories already within the bound are returned unchanged. With the
// edit cap in place this only fires on documents whose histories predate the
// cap.
func CompressHistory(history []domain.AuditRecord) []domain.AuditRecord {
	n := len(history)
	if n <= maxStoredHistory {
		return history
	}

	step := (n - 2) / 4
	keep := []int{0}
	for _, idx := range []int{step, 2 * step, 3 * step} {
		if idx <= 0 || idx >= n-1 {
			continue
		}
		if keep[len(keep)-1] == idx {
			continue
		}
		keep = append(keep, idx)
	}
	keep = append(keep, n-1)

	compressed := make([]domain.AuditRecord, 0, len(keep))
	for _, idx := range keep {
		compressed = append(compressed, history[idx])
	}
	return compressed
}
