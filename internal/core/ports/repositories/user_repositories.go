package repositories

import (
	"context"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
)

// UserRepository persists back-office users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
