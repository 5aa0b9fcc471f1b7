package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DenominationCount maps a denomination label (e.g. "10000", "coin_500") to
// how many pieces were counted.
type DenominationCount map[string]int

// RemovedAdjustment records one adjustment movement retracted by a closing
// edit, for audit traceability.
type RemovedAdjustment struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"` // signed: positive for auto-income, negative for auto-expense
	Manager  string          `json:"manager"`
	At       time.Time       `json:"at"`
}

// ClosingResolution is set when a closing edit removes previously generated
// adjustments without replacing them (diff returned to zero). It records
// what was removed and the resulting post-adjustment balances.
type ClosingResolution struct {
	RemovedAdjustments []RemovedAdjustment `json:"removedAdjustments"`
	BalanceCRC         decimal.Decimal     `json:"balanceCRC"`
	BalanceUSD         decimal.Decimal     `json:"balanceUSD"`
	ResolvedAt         time.Time           `json:"resolvedAt"`
}

// ClosingRecord is one daily reconciliation event for the FondoGeneral
// account. CreatedAt is the registration time and the lock boundary value;
// ClosingDate is the business date being closed.
type ClosingRecord struct {
	ClosingID   string    `json:"closingID"`
	CreatedAt   time.Time `json:"createdAt"`
	ClosingDate time.Time `json:"closingDate"`
	Manager     string    `json:"manager"`
	Notes       string    `json:"notes,omitempty"`

	CountedCRC       decimal.Decimal   `json:"countedCRC"`
	CountedUSD       decimal.Decimal   `json:"countedUSD"`
	DenominationsCRC DenominationCount `json:"denominationsCRC,omitempty"`
	DenominationsUSD DenominationCount `json:"denominationsUSD,omitempty"`

	// Ledger balances excluding this closing's own adjustments, captured at
	// the moment of recording (or re-captured on edit).
	RecordedBalanceCRC decimal.Decimal `json:"recordedBalanceCRC"`
	RecordedBalanceUSD decimal.Decimal `json:"recordedBalanceUSD"`

	// Diff = counted − recordedBalance, signed, whole units.
	DiffCRC decimal.Decimal `json:"diffCRC"`
	DiffUSD decimal.Decimal `json:"diffUSD"`

	Resolution *ClosingResolution `json:"resolution,omitempty"`
}

// Counted returns the physically counted total for the given currency.
func (c ClosingRecord) Counted(cur Currency) decimal.Decimal {
	if cur == USD {
		return c.CountedUSD
	}
	return c.CountedCRC
}

// DenominationsFor returns the denomination breakdown for the given currency.
func (c ClosingRecord) DenominationsFor(cur Currency) DenominationCount {
	if cur == USD {
		return c.DenominationsUSD
	}
	return c.DenominationsCRC
}

// SameBusinessDate reports whether two closings cover the same business day.
func (c ClosingRecord) SameBusinessDate(date time.Time) bool {
	cy, cm, cd := c.ClosingDate.Date()
	y, m, d := date.Date()
	return cy == y && cm == m && cd == d
}

// Clone returns a deep copy of the closing record.
func (c ClosingRecord) Clone() ClosingRecord {
	next := c
	if c.DenominationsCRC != nil {
		next.DenominationsCRC = make(DenominationCount, len(c.DenominationsCRC))
		for k, v := range c.DenominationsCRC {
			next.DenominationsCRC[k] = v
		}
	}
	if c.DenominationsUSD != nil {
		next.DenominationsUSD = make(DenominationCount, len(c.DenominationsUSD))
		for k, v := range c.DenominationsUSD {
			next.DenominationsUSD[k] = v
		}
	}
	if c.Resolution != nil {
		res := *c.Resolution
		res.RemovedAdjustments = make([]RemovedAdjustment, len(c.Resolution.RemovedAdjustments))
		copy(res.RemovedAdjustments, c.Resolution.RemovedAdjustments)
		next.Resolution = &res
	}
	return next
}
