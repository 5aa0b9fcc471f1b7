package audit

import (
	"testing"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseMovement() domain.Movement {
	return domain.Movement{
		MovementID:  "m-1",
		AccountID:   domain.AccountFondoGeneral,
		Currency:    domain.CRC,
		Category:    domain.CategoryVentaContado,
		AmountIn:    decimal.NewFromInt(1000),
		ManagerName: "Ana",
		Notes:       "venta mostrador",
		CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Seq:         1,
	}
}

func TestDiffOnlyChangedFields(t *testing.T) {
	before := baseMovement()
	after := before.Clone()
	after.Notes = "venta corregida"
	after.AmountIn = decimal.NewFromInt(1200)

	changedBefore, changedAfter := Diff(before, after)

	require.Len(t, changedAfter, 2, "only the two touched fields should appear")
	assert.Equal(t, "venta mostrador", changedBefore[domain.FieldNotes])
	assert.Equal(t, "venta corregida", changedAfter[domain.FieldNotes])
	assert.Equal(t, "1000", changedBefore[domain.FieldAmountIn])
	assert.Equal(t, "1200", changedAfter[domain.FieldAmountIn])
	assert.NotContains(t, changedAfter, domain.FieldManagerName)
	assert.NotContains(t, changedAfter, domain.FieldCategory)
}

func TestRecordEditAccretesHistory(t *testing.T) {
	before := baseMovement()
	after := before.Clone()
	after.Notes = "venta corregida"
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	result, err := RecordEdit(before, after, at, DefaultMaxEdits)
	require.NoError(t, err)

	assert.True(t, result.IsEdited)
	require.Len(t, result.EditHistory, 1)
	assert.Equal(t, at, result.EditHistory[0].At)
	assert.Equal(t, "venta mostrador", result.EditHistory[0].Before[domain.FieldNotes])
	assert.Equal(t, "venta corregida", result.EditHistory[0].After[domain.FieldNotes])
	// The input movement stays untouched.
	assert.False(t, before.IsEdited)
	assert.Empty(t, before.EditHistory)
}

func TestRecordEditNoopWhenNothingChanged(t *testing.T) {
	before := baseMovement()
	after := before.Clone()

	result, err := RecordEdit(before, after, time.Now().UTC(), DefaultMaxEdits)
	require.NoError(t, err)
	assert.False(t, result.IsEdited)
	assert.Empty(t, result.EditHistory, "an empty diff must not append a record")
}

func TestRecordEditRejectsBeyondCap(t *testing.T) {
	before := baseMovement()
	before.IsEdited = true
	for i := 0; i < DefaultMaxEdits; i++ {
		before.EditHistory = append(before.EditHistory, domain.AuditRecord{
			At: before.CreatedAt.Add(time.Duration(i) * time.Hour),
		})
	}

	after := before.Clone()
	after.Notes = "una vez mas"

	_, err := RecordEdit(before, after, time.Now().UTC(), DefaultMaxEdits)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEditLimitExceeded)
}

func historyOf(n int) []domain.AuditRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make([]domain.AuditRecord, n)
	for i := range history {
		history[i] = domain.AuditRecord{At: base.Add(time.Duration(i) * time.Hour)}
	}
	return history
}

func TestCompressHistoryWithinBoundUnchanged(t *testing.T) {
	for n := 0; n <= 5; n++ {
		history := historyOf(n)
		compressed := CompressHistory(history)
		assert.Len(t, compressed, n, "history of %d records should pass through", n)
	}
}

func TestCompressHistoryPreservesFirstAndLast(t *testing.T) {
	for _, n := range []int{6, 9, 20, 100} {
		history := historyOf(n)
		compressed := CompressHistory(history)

		require.LessOrEqual(t, len(compressed), 5, "n=%d", n)
		require.GreaterOrEqual(t, len(compressed), 2, "n=%d", n)
		assert.Equal(t, history[0].At, compressed[0].At, "first record must survive, n=%d", n)
		assert.Equal(t, history[n-1].At, compressed[len(compressed)-1].At, "last record must survive, n=%d", n)

		// The kept trail stays in chronological order.
		for i := 1; i < len(compressed); i++ {
			assert.True(t, compressed[i].At.After(compressed[i-1].At), "records out of order, n=%d", n)
		}
	}
}

func TestCompressHistoryEvenSpacing(t *testing.T) {
	// n=10: step=(10-2)/4=2, kept indices 0, 2, 4, 6, 9.
	history := historyOf(10)
	compressed := CompressHistory(history)
	require.Len(t, compressed, 5)
	wantIdx := []int{0, 2, 4, 6, 9}
	for i, idx := range wantIdx {
		assert.Equal(t, history[idx].At, compressed[i].At, "position %d", i)
	}
}
