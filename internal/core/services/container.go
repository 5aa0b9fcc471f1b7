package services

import (
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
)

// ContainerOptions carries the tunables the services need beyond their
// repositories.
type ContainerOptions struct {
	// MaxMovementEdits caps the audit history per movement (0 = default).
	MaxMovementEdits int
	// LegacyOwnerID enables the deprecated per-owner document key fallback.
	LegacyOwnerID string
	// Notifier receives closing events; nil disables notification.
	Notifier portssvc.ClosingNotifier
}

// NewContainer creates the service container with properly initialized
// dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)

	ledgerSvc := NewLedgerService(repos.LedgerStore, opts.LegacyOwnerID)

	return &portssvc.ServiceContainer{
		Ledger:   ledgerSvc,
		Movement: NewMovementService(ledgerSvc, userSvc, opts.MaxMovementEdits),
		Closing:  NewClosingService(ledgerSvc, opts.Notifier, opts.MaxMovementEdits),
		User:     userSvc,
	}
}
