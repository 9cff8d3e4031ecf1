package treasury

import (
	"context"

	"github.com/comercia/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to the treasury
// repositories. Every operation that touches more than one record (a
// movement plus its balance update, or the two legs of a transfer) runs
// inside Execute so the full set of writes commits or none do.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the treasury repositories
// bound to the current transaction.
type TransactionalRepositories interface {
	// Accounts returns the account repository scoped to the transaction
	Accounts() treasury.AccountRepository
	// Movements returns the movement repository scoped to the transaction
	Movements() treasury.MovementRepository
}

// NoOpTransactionScope runs the unit of work without a real transaction.
// Used in tests with in-memory or mock repositories.
type NoOpTransactionScope struct {
	accounts  treasury.AccountRepository
	movements treasury.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(accounts treasury.AccountRepository, movements treasury.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{accounts: accounts, movements: movements}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Accounts returns the wrapped account repository
func (s *NoOpTransactionScope) Accounts() treasury.AccountRepository {
	return s.accounts
}

// Movements returns the wrapped movement repository
func (s *NoOpTransactionScope) Movements() treasury.MovementRepository {
	return s.movements
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
