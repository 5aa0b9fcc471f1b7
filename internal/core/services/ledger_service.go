package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/accounting"
)

// ledgerState is the single owned holder of a company's current ledger
// snapshot. The mutex serializes mutation within this process; the document
// pointer is replaced wholesale on each mutation, never edited in place.
type ledgerState struct {
	mu  sync.Mutex
	doc *domain.LedgerDocument
}

// LedgerService owns the per-company ledger snapshots and funnels every
// mutation through a copy-on-write cycle: clone snapshot, apply, recompute
// balances, swap, persist. Persistence is best effort: a failed durable
// write is logged and retried on the next mutation, while the in-memory
// snapshot stays authoritative for this process.
type LedgerService struct {
	store         portsrepo.LedgerStoreFacade
	legacyOwnerID string

	mu     sync.Mutex
	scopes map[string]*ledgerState
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store portsrepo.LedgerStoreFacade, legacyOwnerID string) *LedgerService {
	return &LedgerService{
		store:         store,
		legacyOwnerID: legacyOwnerID,
		scopes:        make(map[string]*ledgerState),
	}
}

// Ensure LedgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

func (s *LedgerService) scopeKey(companyID string) domain.ScopeKey {
	return domain.ScopeKey{CompanyID: companyID, LegacyOwnerID: s.legacyOwnerID}
}

func (s *LedgerService) stateFor(companyID string) *ledgerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.scopes[companyID]
	if !ok {
		st = &ledgerState{}
		s.scopes[companyID] = st
	}
	return st
}

// ensureLoaded populates the state's document from the store on first use.
// The store adapter never fails into an unusable state: worst case it hands
// back an empty well-formed document.
func (s *LedgerService) ensureLoaded(ctx context.Context, companyID string, st *ledgerState) error {
	if st.doc != nil {
		return nil
	}
	doc, err := s.store.Load(ctx, s.scopeKey(companyID))
	if err != nil {
		return err
	}
	st.doc = doc
	return nil
}

// Snapshot returns the current ledger document for the company. The caller
// must treat the document as read-only; mutations go through Mutate.
func (s *LedgerService) Snapshot(ctx context.Context, companyID string) (*domain.LedgerDocument, error) {
	st := s.stateFor(companyID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := s.ensureLoaded(ctx, companyID, st); err != nil {
		return nil, err
	}
	return st.doc, nil
}

// Mutate runs fn against a clone of the current snapshot. On success the
// clone has its balances recomputed, becomes the new snapshot, and is
// persisted. Persistence failure does not roll back the swap.
func (s *LedgerService) Mutate(ctx context.Context, companyID string, fn func(doc *domain.LedgerDocument) error) (*domain.LedgerDocument, error) {
	st := s.stateFor(companyID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := s.ensureLoaded(ctx, companyID, st); err != nil {
		return nil, err
	}

	next := st.doc.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	accounting.RefreshDocumentBalances(next)
	st.doc = next

	if err := s.store.Save(ctx, s.scopeKey(companyID), next); err != nil {
		logger := middleware.GetLoggerFromCtx(ctx)
		logger.Error("Failed to persist ledger document, keeping in-memory snapshot",
			slog.String("company_id", companyID), slog.String("error", err.Error()))
	}
	return next, nil
}

// GetSnapshot implements portssvc.LedgerSvcFacade.
func (s *LedgerService) GetSnapshot(ctx context.Context, companyID string) (*domain.LedgerDocument, error) {
	return s.Snapshot(ctx, companyID)
}

// GetBalances recomputes the balances for every account-currency pair from
// the movement list and the states' initial balances.
func (s *LedgerService) GetBalances(ctx context.Context, companyID string) (map[domain.LedgerKey]dto.AccountBalanceResponse, error) {
	doc, err := s.Snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	balances := accounting.ComputeDocumentBalances(doc)
	result := make(map[domain.LedgerKey]dto.AccountBalanceResponse, len(doc.States))
	for key, st := range doc.States {
		current := st.InitialBalance
		if b, ok := balances[key]; ok {
			current = b.Current
		}
		result[key] = dto.AccountBalanceResponse{
			AccountID:      string(key.Account),
			Currency:       string(key.Currency),
			Enabled:        st.Enabled,
			InitialBalance: st.InitialBalance,
			CurrentBalance: current,
			LockedUntil:    st.LockedUntil,
		}
	}
	return result, nil
}

// SortedBalanceResponses flattens a balances map into a stable account-then-
// currency ordering for API responses.
func SortedBalanceResponses(balances map[domain.LedgerKey]dto.AccountBalanceResponse) []dto.AccountBalanceResponse {
	keys := make([]domain.LedgerKey, 0, len(balances))
	for key := range balances {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Account != keys[j].Account {
			return keys[i].Account < keys[j].Account
		}
		return keys[i].Currency < keys[j].Currency
	})
	out := make([]dto.AccountBalanceResponse, 0, len(keys))
	for _, key := range keys {
		out = append(out, balances[key])
	}
	return out
}
