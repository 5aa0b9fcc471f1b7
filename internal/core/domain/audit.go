package domain

import "time"

// AuditField names one comparable field of a movement. The set is closed:
// the audit diff never inspects fields outside it.
type AuditField string

const (
	FieldCounterpartyCode AuditField = "counterpartyCode"
	FieldInvoiceRef       AuditField = "invoiceRef"
	FieldCategory         AuditField = "category"
	FieldAmountIn         AuditField = "amountIn"
	FieldAmountOut        AuditField = "amountOut"
	FieldManagerName      AuditField = "managerName"
	FieldNotes            AuditField = "notes"
	FieldCurrency         AuditField = "currency"
)

// AuditFields lists the comparable fields in a stable order.
var AuditFields = []AuditField{
	FieldCounterpartyCode,
	FieldInvoiceRef,
	FieldCategory,
	FieldAmountIn,
	FieldAmountOut,
	FieldManagerName,
	FieldNotes,
	FieldCurrency,
}

// AuditRecord captures one edit to a movement. Before and After hold only
// the fields that changed in that edit, never a full snapshot. A movement's
// EditHistory is an ordered sequence of these, oldest first.
type AuditRecord struct {
	At     time.Time             `json:"at"`
	Before map[AuditField]string `json:"before"`
	After  map[AuditField]string `json:"after"`
}

// Clone returns a deep copy of the record.
func (r AuditRecord) Clone() AuditRecord {
	next := AuditRecord{At: r.At}
	if r.Before != nil {
		next.Before = make(map[AuditField]string, len(r.Before))
		for k, v := range r.Before {
			next.Before[k] = v
		}
	}
	if r.After != nil {
		next.After = make(map[AuditField]string, len(r.After))
		for k, v := range r.After {
			next.After[k] = v
		}
	}
	return next
}

// AuditValue renders one comparable field as its audit string.
func (m Movement) AuditValue(f AuditField) string {
	switch f {
	case FieldCounterpartyCode:
		return m.CounterpartyCode
	case FieldInvoiceRef:
		return m.InvoiceRef
	case FieldCategory:
		return string(m.Category)
	case FieldAmountIn:
		return m.AmountIn.String()
	case FieldAmountOut:
		return m.AmountOut.String()
	case FieldManagerName:
		return m.ManagerName
	case FieldNotes:
		return m.Notes
	case FieldCurrency:
		return string(m.Currency)
	}
	return ""
}
