package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountID identifies one of the four tracked cash pools.
type AccountID string

const (
	AccountFondoGeneral AccountID = "FONDO_GENERAL"
	AccountBCR          AccountID = "BCR"
	AccountBN           AccountID = "BN"
	AccountBAC          AccountID = "BAC"
)

// AllAccounts lists every tracked account, FondoGeneral first.
var AllAccounts = []AccountID{AccountFondoGeneral, AccountBCR, AccountBN, AccountBAC}

// IsValid reports whether a is a tracked account.
func (a AccountID) IsValid() bool {
	switch a {
	case AccountFondoGeneral, AccountBCR, AccountBN, AccountBAC:
		return true
	}
	return false
}

// Currency is one of the two handled currencies.
type Currency string

const (
	CRC Currency = "CRC"
	USD Currency = "USD"
)

// AllCurrencies lists the handled currencies.
var AllCurrencies = []Currency{CRC, USD}

// IsValid reports whether c is a handled currency.
func (c Currency) IsValid() bool {
	return c == CRC || c == USD
}

// SystemManager is the manager name recorded on reconciler-generated movements.
const SystemManager = "SYSTEM"

const (
	maxNotesLength            = 500
	maxCounterpartyCodeLength = 30
	maxManagerNameLength      = 100
)

// invoiceRefPattern bounds the invoice reference to a numeric-ish identifier:
// leading digit, then digits, spaces, dashes or slashes, 20 chars max.
var invoiceRefPattern = regexp.MustCompile(`^[0-9][0-9 \-/]{0,19}$`)

// Movement is a single monetary ledger entry. Exactly one of AmountIn and
// AmountOut is positive; which one is fixed by the category's class.
// CreatedAt is immutable once set: it is the entry's position key for
// ordering and for the closing lock boundary. Seq breaks CreatedAt ties so
// balance recomputation stays deterministic.
type Movement struct {
	MovementID       string            `json:"movementID"`
	AccountID        AccountID         `json:"accountID"`
	Currency         Currency          `json:"currency"`
	Category         Category          `json:"category"`
	AmountIn         decimal.Decimal   `json:"amountIn"`
	AmountOut        decimal.Decimal   `json:"amountOut"`
	CounterpartyCode string            `json:"counterpartyCode,omitempty"`
	InvoiceRef       string            `json:"invoiceRef,omitempty"`
	ManagerName      string            `json:"managerName"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	Seq              int64             `json:"seq"`
	IsEdited         bool              `json:"isEdited,omitempty"`
	EditHistory      []AuditRecord     `json:"editHistory,omitempty"`
	LinkedClosingID  string            `json:"linkedClosingID,omitempty"`
	Denominations    DenominationCount `json:"denominations,omitempty"`
}

// NewMovementInput carries the user-supplied fields for a new movement.
type NewMovementInput struct {
	AccountID        AccountID
	Currency         Currency
	Category         Category
	Amount           decimal.Decimal
	CounterpartyCode string
	InvoiceRef       string
	ManagerName      string
	Notes            string
	CreatedAt        time.Time
}

// NewMovement validates input and constructs a movement with the amount on
// the side dictated by the category class. The amount is truncated to whole
// currency units. Pure: no ID or sequence is assigned here.
func NewMovement(input NewMovementInput) (Movement, error) {
	if !input.AccountID.IsValid() {
		return Movement{}, fmt.Errorf("%w: unknown account %q", apperrors.ErrValidation, input.AccountID)
	}
	if !input.Currency.IsValid() {
		return Movement{}, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, input.Currency)
	}
	class, ok := input.Category.Class()
	if !ok {
		return Movement{}, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, input.Category)
	}
	if !input.Category.IsUserAssignable() {
		return Movement{}, fmt.Errorf("%w: category %q is reserved for closing adjustments", apperrors.ErrValidation, input.Category)
	}
	amount := input.Amount.Truncate(0)
	if !amount.IsPositive() {
		return Movement{}, fmt.Errorf("%w: amount must be a positive integer", apperrors.ErrValidation)
	}
	if strings.TrimSpace(input.ManagerName) == "" {
		return Movement{}, fmt.Errorf("%w: manager name is required", apperrors.ErrValidation)
	}
	if len(input.ManagerName) > maxManagerNameLength {
		return Movement{}, fmt.Errorf("%w: manager name exceeds %d characters", apperrors.ErrValidation, maxManagerNameLength)
	}
	if input.InvoiceRef != "" && !invoiceRefPattern.MatchString(input.InvoiceRef) {
		return Movement{}, fmt.Errorf("%w: invoice reference %q is not a valid identifier", apperrors.ErrValidation, input.InvoiceRef)
	}
	if len(input.CounterpartyCode) > maxCounterpartyCodeLength {
		return Movement{}, fmt.Errorf("%w: counterparty code exceeds %d characters", apperrors.ErrValidation, maxCounterpartyCodeLength)
	}
	if len(input.Notes) > maxNotesLength {
		return Movement{}, fmt.Errorf("%w: notes exceed %d characters", apperrors.ErrValidation, maxNotesLength)
	}

	m := Movement{
		AccountID:        input.AccountID,
		Currency:         input.Currency,
		Category:         input.Category,
		CounterpartyCode: input.CounterpartyCode,
		InvoiceRef:       input.InvoiceRef,
		ManagerName:      input.ManagerName,
		Notes:            input.Notes,
		CreatedAt:        input.CreatedAt,
	}
	if class.UsesAmountIn() {
		m.AmountIn = amount
	} else {
		m.AmountOut = amount
	}
	return m, nil
}

// MovementPatch carries the editable fields of a movement. Nil fields are
// left unchanged. CreatedAt and Seq are not patchable.
type MovementPatch struct {
	CounterpartyCode *string
	InvoiceRef       *string
	Category         *Category
	Amount           *decimal.Decimal
	ManagerName      *string
	Notes            *string
	Currency         *Currency
}

// ApplyEdit returns a copy of m with the patch applied. If the category's
// class changed (or the amount changed), the active amount side is
// re-derived from the effective category. Pure: m is not mutated, CreatedAt
// and Seq are preserved, and no audit record is appended here.
func (m Movement) ApplyEdit(patch MovementPatch) (Movement, error) {
	next := m.Clone()

	if patch.Category != nil {
		if !patch.Category.IsUserAssignable() {
			return Movement{}, fmt.Errorf("%w: category %q is not assignable", apperrors.ErrValidation, *patch.Category)
		}
		next.Category = *patch.Category
	}
	if patch.Currency != nil {
		if !patch.Currency.IsValid() {
			return Movement{}, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, *patch.Currency)
		}
		next.Currency = *patch.Currency
	}
	if patch.CounterpartyCode != nil {
		if len(*patch.CounterpartyCode) > maxCounterpartyCodeLength {
			return Movement{}, fmt.Errorf("%w: counterparty code exceeds %d characters", apperrors.ErrValidation, maxCounterpartyCodeLength)
		}
		next.CounterpartyCode = *patch.CounterpartyCode
	}
	if patch.InvoiceRef != nil {
		if *patch.InvoiceRef != "" && !invoiceRefPattern.MatchString(*patch.InvoiceRef) {
			return Movement{}, fmt.Errorf("%w: invoice reference %q is not a valid identifier", apperrors.ErrValidation, *patch.InvoiceRef)
		}
		next.InvoiceRef = *patch.InvoiceRef
	}
	if patch.ManagerName != nil {
		if strings.TrimSpace(*patch.ManagerName) == "" {
			return Movement{}, fmt.Errorf("%w: manager name is required", apperrors.ErrValidation)
		}
		next.ManagerName = *patch.ManagerName
	}
	if patch.Notes != nil {
		if len(*patch.Notes) > maxNotesLength {
			return Movement{}, fmt.Errorf("%w: notes exceed %d characters", apperrors.ErrValidation, maxNotesLength)
		}
		next.Notes = *patch.Notes
	}

	// Re-derive the active amount side from the effective category class.
	amount := next.ActiveAmount()
	if patch.Amount != nil {
		amount = patch.Amount.Truncate(0)
		if !amount.IsPositive() {
			return Movement{}, fmt.Errorf("%w: amount must be a positive integer", apperrors.ErrValidation)
		}
	}
	class, ok := next.Category.Class()
	if !ok {
		return Movement{}, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, next.Category)
	}
	if class.UsesAmountIn() {
		next.AmountIn = amount
		next.AmountOut = decimal.Zero
	} else {
		next.AmountOut = amount
		next.AmountIn = decimal.Zero
	}

	return next, nil
}

// ActiveAmount returns whichever of AmountIn/AmountOut is in use.
func (m Movement) ActiveAmount() decimal.Decimal {
	if m.AmountIn.IsPositive() {
		return m.AmountIn
	}
	return m.AmountOut
}

// SignedAmount is AmountIn − AmountOut.
func (m Movement) SignedAmount() decimal.Decimal {
	return m.AmountIn.Sub(m.AmountOut)
}

// Validate checks the XOR amount invariant and the taxonomy membership.
func (m Movement) Validate() error {
	if !m.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, m.Category)
	}
	in := m.AmountIn.IsPositive()
	out := m.AmountOut.IsPositive()
	if in == out {
		return fmt.Errorf("%w: exactly one of amountIn and amountOut must be positive", apperrors.ErrValidation)
	}
	if m.AmountIn.IsNegative() || m.AmountOut.IsNegative() {
		return fmt.Errorf("%w: amounts must be non-negative", apperrors.ErrValidation)
	}
	return nil
}

// IsLockedAt implements the lock evaluator: adjustments are always locked;
// any other movement is locked when a boundary exists and the movement's
// CreatedAt is at or before it.
func (m Movement) IsLockedAt(lockedUntil *time.Time) bool {
	if m.Category.IsAdjustment() {
		return true
	}
	if lockedUntil == nil {
		return false
	}
	return !m.CreatedAt.After(*lockedUntil)
}

// Clone returns a deep copy of m (history and denominations included).
func (m Movement) Clone() Movement {
	next := m
	if m.EditHistory != nil {
		next.EditHistory = make([]AuditRecord, len(m.EditHistory))
		for i, rec := range m.EditHistory {
			next.EditHistory[i] = rec.Clone()
		}
	}
	if m.Denominations != nil {
		next.Denominations = make(DenominationCount, len(m.Denominations))
		for k, v := range m.Denominations {
			next.Denominations[k] = v
		}
	}
	return next
}
