package services

import (
	"context"

	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
)

// UserSvcFacade is the identity/permission collaborator: it supplies the
// acting user and whether they are the account's principal administrator.
type UserSvcFacade interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	// IsPrincipalAdmin reports whether the user may delete movements.
	IsPrincipalAdmin(ctx context.Context, userID string) (bool, error)
}
