package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
        INSERT INTO users (user_id, username, name, role, is_principal_admin, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            name = EXCLUDED.name,
            role = EXCLUDED.role,
            is_principal_admin = EXCLUDED.is_principal_admin,
            password_hash = EXCLUDED.password_hash`

	_, err := r.db.Exec(ctx, query,
		user.UserID, user.Username, user.Name, user.Role, user.IsPrincipalAdmin, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
        SELECT user_id, username, name, role, is_principal_admin, password_hash, created_at, deleted_at
        FROM users WHERE user_id = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, userID), userID)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
        SELECT user_id, username, name, role, is_principal_admin, password_hash, created_at, deleted_at
        FROM users WHERE username = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, username), username)
}

func (r *PgxUserRepository) scanUser(row pgx.Row, ref string) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID, &user.Username, &user.Name, &user.Role,
		&user.IsPrincipalAdmin, &user.PasswordHash, &user.CreatedAt, &user.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to scan user %s: %w", ref, err)
	}
	return &user, nil
}
