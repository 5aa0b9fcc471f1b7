package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDocumentStore is the durable store collaborator: one JSONB row per
// ledger document key.
type PgxDocumentStore struct {
	db *pgxpool.Pool
}

// NewDocumentStore creates a new PgxDocumentStore.
func NewDocumentStore(db *pgxpool.Pool) portsrepo.DocumentStore {
	return &PgxDocumentStore{db: db}
}

// Ensure PgxDocumentStore implements portsrepo.DocumentStore
var _ portsrepo.DocumentStore = (*PgxDocumentStore)(nil)

func (r *PgxDocumentStore) GetDocument(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT doc FROM ledger_documents WHERE doc_key = $1`

	var doc []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: failed to read document %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	return doc, nil
}

func (r *PgxDocumentStore) SaveDocument(ctx context.Context, key string, doc []byte) error {
	query := `
        INSERT INTO ledger_documents (doc_key, doc, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (doc_key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, key, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to save document %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	return nil
}

func (r *PgxDocumentStore) DeleteDocument(ctx context.Context, key string) error {
	query := `DELETE FROM ledger_documents WHERE doc_key = $1`

	tag, err := r.db.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("%w: failed to delete document %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, key)
	}
	return nil
}
