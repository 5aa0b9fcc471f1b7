package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrentSchemaVersion is the ledger document shape written by this code.
// Version 1 lacked sequence numbers and per-state lock boundaries; version 0
// denotes the deprecated flat movement array.
const CurrentSchemaVersion = 2

// LedgerKey addresses one (account, currency) pair.
type LedgerKey struct {
	Account  AccountID
	Currency Currency
}

// String renders the key as "ACCOUNT:CURRENCY".
func (k LedgerKey) String() string {
	return string(k.Account) + ":" + string(k.Currency)
}

// MarshalText lets LedgerKey serve as a JSON map key.
func (k LedgerKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "ACCOUNT:CURRENCY".
func (k *LedgerKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid ledger key %q", text)
	}
	k.Account = AccountID(parts[0])
	k.Currency = Currency(parts[1])
	return nil
}

// AccountCurrencyState holds the per-(account,currency) denormalized state.
// CurrentBalance is derived: it is recomputed as a fold over the movement
// list on every persist and must never be hand-edited.
type AccountCurrencyState struct {
	Enabled        bool            `json:"enabled"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	// LockedUntil is the closing lock boundary. It only moves forward; there
	// is no unlock operation.
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

// ScopeKey identifies the owner of one ledger document: a company, with an
// optional legacy per-owner identifier kept for document migration.
type ScopeKey struct {
	CompanyID     string
	LegacyOwnerID string
}

const movementsKeyPrefix = "movements_"

// CurrentKey is the store key for the current scope.
func (s ScopeKey) CurrentKey() string {
	return movementsKeyPrefix + s.CompanyID
}

// LegacyKey is the deprecated per-owner store key, or "" when no legacy
// owner is configured.
func (s ScopeKey) LegacyKey() string {
	if s.LegacyOwnerID == "" {
		return ""
	}
	return movementsKeyPrefix + s.LegacyOwnerID
}

// LedgerDocument is the whole persisted ledger for one company scope: all
// movements, all closings, and the per-(account,currency) states. Consumers
// treat a document as an owned, swappable snapshot and replace it wholesale
// on each mutation.
type LedgerDocument struct {
	SchemaVersion int                               `json:"schemaVersion"`
	CompanyID     string                            `json:"companyID"`
	Movements     []Movement                        `json:"movements"`
	Closings      []ClosingRecord                   `json:"closings"`
	States        map[LedgerKey]AccountCurrencyState `json:"states"`
	// NextSeq is the movement sequence counter, the CreatedAt tie-breaker.
	NextSeq int64 `json:"nextSeq"`
}

// NewLedgerDocument returns an empty, well-formed document with default
// states for every account-currency pair. Only FondoGeneral starts enabled.
func NewLedgerDocument(companyID string) *LedgerDocument {
	states := make(map[LedgerKey]AccountCurrencyState, len(AllAccounts)*len(AllCurrencies))
	for _, account := range AllAccounts {
		for _, currency := range AllCurrencies {
			states[LedgerKey{Account: account, Currency: currency}] = AccountCurrencyState{
				Enabled:        account == AccountFondoGeneral,
				InitialBalance: decimal.Zero,
				CurrentBalance: decimal.Zero,
			}
		}
	}
	return &LedgerDocument{
		SchemaVersion: CurrentSchemaVersion,
		CompanyID:     companyID,
		Movements:     []Movement{},
		Closings:      []ClosingRecord{},
		States:        states,
		NextSeq:       1,
	}
}

// Clone returns a deep copy of the document.
func (d *LedgerDocument) Clone() *LedgerDocument {
	next := &LedgerDocument{
		SchemaVersion: d.SchemaVersion,
		CompanyID:     d.CompanyID,
		Movements:     make([]Movement, len(d.Movements)),
		Closings:      make([]ClosingRecord, len(d.Closings)),
		States:        make(map[LedgerKey]AccountCurrencyState, len(d.States)),
		NextSeq:       d.NextSeq,
	}
	for i, m := range d.Movements {
		next.Movements[i] = m.Clone()
	}
	for i, c := range d.Closings {
		next.Closings[i] = c.Clone()
	}
	for k, st := range d.States {
		if st.LockedUntil != nil {
			until := *st.LockedUntil
			st.LockedUntil = &until
		}
		next.States[k] = st
	}
	return next
}

// FindMovement returns the index of the movement with the given ID.
func (d *LedgerDocument) FindMovement(movementID string) (int, bool) {
	for i, m := range d.Movements {
		if m.MovementID == movementID {
			return i, true
		}
	}
	return 0, false
}

// FindClosing returns the index of the closing with the given ID.
func (d *LedgerDocument) FindClosing(closingID string) (int, bool) {
	for i, c := range d.Closings {
		if c.ClosingID == closingID {
			return i, true
		}
	}
	return 0, false
}

// AppendMovement assigns the next sequence number and adds the movement.
func (d *LedgerDocument) AppendMovement(m Movement) Movement {
	m.Seq = d.NextSeq
	d.NextSeq++
	d.Movements = append(d.Movements, m)
	return m
}

// RemoveMovementAt deletes the movement at index i, preserving order.
func (d *LedgerDocument) RemoveMovementAt(i int) {
	d.Movements = append(d.Movements[:i], d.Movements[i+1:]...)
}

// LockBoundary returns the lock boundary for the given key, nil when unset.
func (d *LedgerDocument) LockBoundary(key LedgerKey) *time.Time {
	st, ok := d.States[key]
	if !ok {
		return nil
	}
	return st.LockedUntil
}

// AdvanceLock moves the lock boundary for key forward to at. The boundary is
// monotonic: an earlier timestamp never rewinds it.
func (d *LedgerDocument) AdvanceLock(key LedgerKey, at time.Time) {
	st := d.States[key]
	if st.LockedUntil == nil || at.After(*st.LockedUntil) {
		until := at
		st.LockedUntil = &until
		d.States[key] = st
	}
}
