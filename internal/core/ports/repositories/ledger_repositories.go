package repositories

import (
	"context"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
)

// DocumentStore is the durable store collaborator: an opaque key/value
// document store with get/put semantics. Implementations return
// apperrors.ErrNotFound for missing keys and wrap transport failures with
// apperrors.ErrPersistence.
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) ([]byte, error)
	SaveDocument(ctx context.Context, key string, doc []byte) error
	DeleteDocument(ctx context.Context, key string) error
}

// LedgerCache is the fast local cache collaborator. Get returns
// apperrors.ErrNotFound on a miss.
type LedgerCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// LedgerStoreFacade merges the durable store and the local cache behind one
// load/save contract. Load never fails on malformed content: it falls back
// through the locator chain and ultimately to an empty well-formed document.
type LedgerStoreFacade interface {
	Load(ctx context.Context, scope domain.ScopeKey) (*domain.LedgerDocument, error)
	Save(ctx context.Context, scope domain.ScopeKey, doc *domain.LedgerDocument) error
}
