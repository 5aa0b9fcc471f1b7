package domain

import (
	"testing"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() NewMovementInput {
	return NewMovementInput{
		AccountID:   AccountFondoGeneral,
		Currency:    CRC,
		Category:    CategoryVentaContado,
		Amount:      decimal.NewFromInt(1000),
		ManagerName: "Ana",
		CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewMovementSetsAmountSideByClass(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantIn   bool
	}{
		{"income uses amountIn", CategoryVentaContado, true},
		{"expense uses amountOut", CategoryPagoProveedor, false},
		{"outflow uses amountOut", CategoryDepositoBanco, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			input.Category = tc.category
			m, err := NewMovement(input)
			require.NoError(t, err)

			if tc.wantIn {
				assert.True(t, m.AmountIn.Equal(decimal.NewFromInt(1000)))
				assert.True(t, m.AmountOut.IsZero())
			} else {
				assert.True(t, m.AmountOut.Equal(decimal.NewFromInt(1000)))
				assert.True(t, m.AmountIn.IsZero())
			}
			assert.NoError(t, m.Validate())
		})
	}
}

func TestNewMovementTruncatesAmount(t *testing.T) {
	input := validInput()
	input.Amount = decimal.RequireFromString("1000.75")
	m, err := NewMovement(input)
	require.NoError(t, err)
	assert.True(t, m.AmountIn.Equal(decimal.NewFromInt(1000)), "amount should truncate to whole units, got %s", m.AmountIn)
}

func TestNewMovementValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewMovementInput)
	}{
		{"unknown account", func(in *NewMovementInput) { in.AccountID = "CAJA_CHICA" }},
		{"unknown currency", func(in *NewMovementInput) { in.Currency = "EUR" }},
		{"unknown category", func(in *NewMovementInput) { in.Category = "PROPINA" }},
		{"reserved adjustment category", func(in *NewMovementInput) { in.Category = CategoryAjusteCierreIngreso }},
		{"zero amount", func(in *NewMovementInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *NewMovementInput) { in.Amount = decimal.NewFromInt(-5) }},
		{"sub-unit amount truncates to zero", func(in *NewMovementInput) { in.Amount = decimal.RequireFromString("0.99") }},
		{"blank manager", func(in *NewMovementInput) { in.ManagerName = "   " }},
		{"invoice ref with letters", func(in *NewMovementInput) { in.InvoiceRef = "FAC-123" }},
		{"invoice ref too long", func(in *NewMovementInput) { in.InvoiceRef = "123456789012345678901" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := NewMovement(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestNewMovementAcceptsInvoiceRefVariants(t *testing.T) {
	for _, ref := range []string{"123", "0", "12 34-56/78", "1-2-3-4"} {
		input := validInput()
		input.InvoiceRef = ref
		_, err := NewMovement(input)
		assert.NoError(t, err, "invoice ref %q should be accepted", ref)
	}
}

func TestValidateXORInvariant(t *testing.T) {
	m, err := NewMovement(validInput())
	require.NoError(t, err)

	// Both sides positive.
	both := m.Clone()
	both.AmountOut = decimal.NewFromInt(1)
	assert.ErrorIs(t, both.Validate(), apperrors.ErrValidation)

	// Both sides zero.
	neither := m.Clone()
	neither.AmountIn = decimal.Zero
	assert.ErrorIs(t, neither.Validate(), apperrors.ErrValidation)
}

func TestApplyEditRederivesAmountSide(t *testing.T) {
	m, err := NewMovement(validInput())
	require.NoError(t, err)
	m.Seq = 7

	// Switching an income movement to an expense category moves the amount
	// to the out side.
	category := CategoryPagoServicios
	next, err := m.ApplyEdit(MovementPatch{Category: &category})
	require.NoError(t, err)

	assert.True(t, next.AmountOut.Equal(decimal.NewFromInt(1000)))
	assert.True(t, next.AmountIn.IsZero())
	assert.Equal(t, m.CreatedAt, next.CreatedAt, "CreatedAt is immutable under edit")
	assert.Equal(t, m.Seq, next.Seq, "Seq is immutable under edit")
	// Original untouched.
	assert.True(t, m.AmountIn.Equal(decimal.NewFromInt(1000)))
}

func TestApplyEditRejectsAdjustmentCategory(t *testing.T) {
	m, err := NewMovement(validInput())
	require.NoError(t, err)

	category := CategoryAjusteCierreGasto
	_, err = m.ApplyEdit(MovementPatch{Category: &category})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIsLockedAt(t *testing.T) {
	m, err := NewMovement(validInput())
	require.NoError(t, err)

	assert.False(t, m.IsLockedAt(nil), "no boundary means unlocked")

	before := m.CreatedAt.Add(-time.Hour)
	assert.False(t, m.IsLockedAt(&before), "boundary before the movement leaves it unlocked")

	exact := m.CreatedAt
	assert.True(t, m.IsLockedAt(&exact), "boundary at the movement's instant locks it")

	after := m.CreatedAt.Add(time.Hour)
	assert.True(t, m.IsLockedAt(&after))

	adjustment := m.Clone()
	adjustment.Category = CategoryAjusteCierreIngreso
	assert.True(t, adjustment.IsLockedAt(nil), "adjustments are locked regardless of boundary")
}

func TestMovementCloneIsDeep(t *testing.T) {
	m, err := NewMovement(validInput())
	require.NoError(t, err)
	m.EditHistory = []AuditRecord{{
		At:     time.Now().UTC(),
		Before: map[AuditField]string{FieldNotes: "a"},
		After:  map[AuditField]string{FieldNotes: "b"},
	}}
	m.Denominations = DenominationCount{"10000": 2}

	clone := m.Clone()
	clone.EditHistory[0].After[FieldNotes] = "mutated"
	clone.Denominations["10000"] = 99

	assert.Equal(t, "b", m.EditHistory[0].After[FieldNotes])
	assert.Equal(t, 2, m.Denominations["10000"])
}
