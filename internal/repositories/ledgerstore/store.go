package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	"github.com/fondoapps/fondo_ledger_app/internal/utils/accounting"
)

// DefaultCacheMovementLimit is how many most-recent movements the local
// cache copy retains. The durable store is never capacity-limited.
const DefaultCacheMovementLimit = 500

// Store merges the durable document store and the fast local cache behind
// the ledger load/save contract. Reads walk a prioritized locator chain and
// the first structurally valid hit wins; writes go to both stores and clean
// up legacy keys.
type Store struct {
	durable    portsrepo.DocumentStore
	cache      portsrepo.LedgerCache
	logger     *slog.Logger
	cacheLimit int
}

// New creates a ledger store adapter. cacheLimit <= 0 uses the default.
func New(durable portsrepo.DocumentStore, cache portsrepo.LedgerCache, logger *slog.Logger, cacheLimit int) *Store {
	if cacheLimit <= 0 {
		cacheLimit = DefaultCacheMovementLimit
	}
	return &Store{
		durable:    durable,
		cache:      cache,
		logger:     logger,
		cacheLimit: cacheLimit,
	}
}

// Ensure Store implements the portsrepo.LedgerStoreFacade interface
var _ portsrepo.LedgerStoreFacade = (*Store)(nil)

// locator names one place a ledger document may live.
type locator struct {
	name  string
	fetch func(ctx context.Context) ([]byte, error)
}

func (s *Store) locators(scope domain.ScopeKey) []locator {
	chain := []locator{
		{name: "durable/" + scope.CurrentKey(), fetch: func(ctx context.Context) ([]byte, error) {
			return s.durable.GetDocument(ctx, scope.CurrentKey())
		}},
	}
	if legacy := scope.LegacyKey(); legacy != "" {
		chain = append(chain, locator{name: "durable/" + legacy, fetch: func(ctx context.Context) ([]byte, error) {
			return s.durable.GetDocument(ctx, legacy)
		}})
	}
	chain = append(chain, locator{name: "cache/" + scope.CurrentKey(), fetch: func(ctx context.Context) ([]byte, error) {
		value, err := s.cache.Get(ctx, scope.CurrentKey())
		return []byte(value), err
	}})
	if legacy := scope.LegacyKey(); legacy != "" {
		chain = append(chain, locator{name: "cache/" + legacy, fetch: func(ctx context.Context) ([]byte, error) {
			value, err := s.cache.Get(ctx, legacy)
			return []byte(value), err
		}})
	}
	return chain
}

// Load walks the locator chain and returns the first structurally valid
// document, normalized to the current shape. Every parse failure is logged
// as a malformed document and the chain continues; when nothing valid is
// found anywhere, an empty well-formed document is returned rather than an
// error, so a corrupt store never takes the ledger down.
func (s *Store) Load(ctx context.Context, scope domain.ScopeKey) (*domain.LedgerDocument, error) {
	for _, loc := range s.locators(scope) {
		raw, err := loc.fetch(ctx)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.logger.Warn("Ledger locator read failed",
					slog.String("locator", loc.name), slog.String("error", err.Error()))
			}
			continue
		}

		doc, err := parseDocument(raw, scope.CompanyID)
		if err != nil {
			s.logger.Warn("Ledger locator returned malformed document",
				slog.String("locator", loc.name),
				slog.String("error", fmt.Errorf("%w: %s", apperrors.ErrMalformedDocument, err.Error()).Error()))
			continue
		}

		normalizeDocument(doc, scope.CompanyID)
		return doc, nil
	}

	s.logger.Info("No ledger document found for scope, starting empty",
		slog.String("company_id", scope.CompanyID))
	return domain.NewLedgerDocument(scope.CompanyID), nil
}

// Save normalizes the document and writes it to both stores: the cache copy
// first (optimistically, capacity-evicted), then the durable full copy.
// Legacy keys are removed once the current key holds the document. A durable
// write failure is reported as a persistence error; the caller logs it and
// keeps going, because the cache and the in-memory snapshot stay usable.
func (s *Store) Save(ctx context.Context, scope domain.ScopeKey, doc *domain.LedgerDocument) error {
	normalized := doc.Clone()
	normalizeDocument(normalized, scope.CompanyID)
	accounting.RefreshDocumentBalances(normalized)

	cacheCopy := evictForCache(normalized, s.cacheLimit)
	cacheBytes, err := json.Marshal(cacheCopy)
	if err != nil {
		return fmt.Errorf("%w: encode cache copy: %s", apperrors.ErrPersistence, err.Error())
	}
	if err := s.cache.Set(ctx, scope.CurrentKey(), string(cacheBytes)); err != nil {
		s.logger.Warn("Failed to write ledger cache copy",
			slog.String("key", scope.CurrentKey()), slog.String("error", err.Error()))
	}
	if legacy := scope.LegacyKey(); legacy != "" {
		if err := s.cache.Remove(ctx, legacy); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to remove legacy cache key",
				slog.String("key", legacy), slog.String("error", err.Error()))
		}
	}

	fullBytes, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("%w: encode document: %s", apperrors.ErrPersistence, err.Error())
	}
	if err := s.durable.SaveDocument(ctx, scope.CurrentKey(), fullBytes); err != nil {
		return fmt.Errorf("%w: durable write for %s: %s", apperrors.ErrPersistence, scope.CurrentKey(), err.Error())
	}
	if legacy := scope.LegacyKey(); legacy != "" {
		if err := s.durable.DeleteDocument(ctx, legacy); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to remove legacy durable key",
				slog.String("key", legacy), slog.String("error", err.Error()))
		}
	}
	return nil
}

// evictForCache returns a copy of the document whose movement list is
// trimmed to the most recent limit entries (canonical order). The durable
// copy keeps everything.
func evictForCache(doc *domain.LedgerDocument, limit int) *domain.LedgerDocument {
	if len(doc.Movements) <= limit {
		return doc
	}
	trimmed := doc.Clone()
	sorted := accounting.SortMovements(trimmed.Movements)
	trimmed.Movements = sorted[len(sorted)-limit:]
	return trimmed
}
