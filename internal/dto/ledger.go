package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalanceResponse is the computed balance state for one
// (account, currency) pair.
type AccountBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	Currency       string          `json:"currency"`
	Enabled        bool            `json:"enabled"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	LockedUntil    *time.Time      `json:"lockedUntil,omitempty"`
}

// BalancesResponse lists every account-currency balance of a company ledger.
type BalancesResponse struct {
	CompanyID string                   `json:"companyID"`
	Balances  []AccountBalanceResponse `json:"balances"`
}
