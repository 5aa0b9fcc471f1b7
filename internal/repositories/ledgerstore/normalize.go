package ledgerstore

import (
	"encoding/json"
	"fmt"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/audit"
	"github.com/shopspring/decimal"
)

// parseDocument decodes raw bytes into a ledger document, accepting both the
// current document shape and the deprecated flat format (a bare JSON array
// of movements). A decodable payload that fails shape validation is
// malformed: the caller moves on to the next locator.
func parseDocument(raw []byte, companyID string) (*domain.LedgerDocument, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var doc domain.LedgerDocument
	if err := json.Unmarshal(raw, &doc); err == nil && structurallyValid(&doc) {
		return &doc, nil
	}

	// Deprecated flat format: the movement array was stored bare, with no
	// states or closings alongside it.
	var flat []domain.Movement
	if err := json.Unmarshal(raw, &flat); err == nil && flatValid(flat) {
		migrated := domain.NewLedgerDocument(companyID)
		migrated.Movements = flat
		migrated.SchemaVersion = 0
		return migrated, nil
	}

	return nil, fmt.Errorf("payload matches no known ledger shape")
}

// structurallyValid applies the minimal shape checks a document must pass
// before normalization is allowed to repair the rest.
func structurallyValid(doc *domain.LedgerDocument) bool {
	if doc.Movements == nil && doc.States == nil {
		return false
	}
	for _, m := range doc.Movements {
		if m.MovementID == "" || m.CreatedAt.IsZero() {
			return false
		}
	}
	for _, c := range doc.Closings {
		if c.ClosingID == "" || c.CreatedAt.IsZero() {
			return false
		}
	}
	return true
}

func flatValid(movements []domain.Movement) bool {
	if len(movements) == 0 {
		return false
	}
	for _, m := range movements {
		if m.MovementID == "" || m.CreatedAt.IsZero() || !m.Category.IsValid() {
			return false
		}
	}
	return true
}

// normalizeDocument brings any structurally valid document to the current
// shape: schema version, company ownership, complete state map, sequence
// numbers for pre-sequence movements, bounded audit histories, and lock
// boundaries derived from the recorded closings when older shapes lack them.
func normalizeDocument(doc *domain.LedgerDocument, companyID string) {
	doc.CompanyID = companyID

	if doc.States == nil {
		doc.States = map[domain.LedgerKey]domain.AccountCurrencyState{}
	}
	for _, account := range domain.AllAccounts {
		for _, currency := range domain.AllCurrencies {
			key := domain.LedgerKey{Account: account, Currency: currency}
			if _, ok := doc.States[key]; !ok {
				doc.States[key] = domain.AccountCurrencyState{
					Enabled:        account == domain.AccountFondoGeneral,
					InitialBalance: decimal.Zero,
					CurrentBalance: decimal.Zero,
				}
			}
		}
	}

	if doc.Movements == nil {
		doc.Movements = []domain.Movement{}
	}
	if doc.Closings == nil {
		doc.Closings = []domain.ClosingRecord{}
	}

	// Assign sequence numbers in slice order to movements that predate the
	// tie-breaker, and make NextSeq consistent with the maximum in use.
	maxSeq := int64(0)
	for _, m := range doc.Movements {
		if m.Seq > maxSeq {
			maxSeq = m.Seq
		}
	}
	for i := range doc.Movements {
		if doc.Movements[i].Seq == 0 {
			maxSeq++
			doc.Movements[i].Seq = maxSeq
		}
	}
	if doc.NextSeq <= maxSeq {
		doc.NextSeq = maxSeq + 1
	}

	// Bound audit histories written before the edit cap existed.
	for i := range doc.Movements {
		doc.Movements[i].EditHistory = audit.CompressHistory(doc.Movements[i].EditHistory)
	}

	// Older shapes carried no lock boundary; re-derive it from the closings.
	for _, closing := range doc.Closings {
		for _, currency := range domain.AllCurrencies {
			doc.AdvanceLock(domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: currency}, closing.CreatedAt)
		}
	}

	doc.SchemaVersion = domain.CurrentSchemaVersion
}
