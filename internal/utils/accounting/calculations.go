package accounting

import (
	"sort"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountBalance is the balance engine result for one (account, currency):
// the final balance plus the running balance after each movement.
type AccountBalance struct {
	Current      decimal.Decimal
	RunningAfter map[string]decimal.Decimal
}

// SortMovements returns a copy of movements in canonical order: CreatedAt
// ascending, with ties broken by the insertion sequence number. Balance
// recomputation over the same set is deterministic regardless of input
// order.
func SortMovements(movements []domain.Movement) []domain.Movement {
	sorted := make([]domain.Movement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// ComputeBalances partitions movements by (account, currency), orders each
// partition canonically and folds running += amountIn − amountOut from the
// initial balance, recording the running balance after every movement.
// Keys present in initialBalances appear in the result even without
// movements.
func ComputeBalances(movements []domain.Movement, initialBalances map[domain.LedgerKey]decimal.Decimal) map[domain.LedgerKey]AccountBalance {
	partitions := make(map[domain.LedgerKey][]domain.Movement)
	for _, m := range movements {
		key := domain.LedgerKey{Account: m.AccountID, Currency: m.Currency}
		partitions[key] = append(partitions[key], m)
	}

	result := make(map[domain.LedgerKey]AccountBalance, len(partitions)+len(initialBalances))
	for key, initial := range initialBalances {
		if _, hasMovements := partitions[key]; !hasMovements {
			result[key] = AccountBalance{Current: initial, RunningAfter: map[string]decimal.Decimal{}}
		}
	}

	for key, partition := range partitions {
		running := initialBalances[key]
		runningAfter := make(map[string]decimal.Decimal, len(partition))
		for _, m := range SortMovements(partition) {
			running = running.Add(m.AmountIn).Sub(m.AmountOut)
			runningAfter[m.MovementID] = running
		}
		result[key] = AccountBalance{Current: running, RunningAfter: runningAfter}
	}
	return result
}

// ComputeDocumentBalances runs the balance engine over a whole document,
// seeding each partition with its state's initial balance.
func ComputeDocumentBalances(doc *domain.LedgerDocument) map[domain.LedgerKey]AccountBalance {
	initial := make(map[domain.LedgerKey]decimal.Decimal, len(doc.States))
	for key, st := range doc.States {
		initial[key] = st.InitialBalance
	}
	return ComputeBalances(doc.Movements, initial)
}

// RefreshDocumentBalances recomputes every state's CurrentBalance from the
// movement list. This is the only code path allowed to write CurrentBalance.
func RefreshDocumentBalances(doc *domain.LedgerDocument) {
	balances := ComputeDocumentBalances(doc)
	for key, balance := range balances {
		st := doc.States[key]
		st.CurrentBalance = balance.Current
		doc.States[key] = st
	}
}

// CurrentBalanceExcluding computes the current balance for one key over all
// movements except those for which exclude returns true. The reconciler uses
// it to value a ledger without a closing's own adjustments.
func CurrentBalanceExcluding(doc *domain.LedgerDocument, key domain.LedgerKey, exclude func(domain.Movement) bool) decimal.Decimal {
	running := doc.States[key].InitialBalance
	for _, m := range doc.Movements {
		if m.AccountID != key.Account || m.Currency != key.Currency {
			continue
		}
		if exclude != nil && exclude(m) {
			continue
		}
		running = running.Add(m.AmountIn).Sub(m.AmountOut)
	}
	return running
}
