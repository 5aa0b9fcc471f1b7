package repositories

// RepositoryProvider groups the repository implementations handed to the
// service container.
type RepositoryProvider struct {
	LedgerStore LedgerStoreFacade
	UserRepo    UserRepository
}
