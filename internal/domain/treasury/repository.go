package treasury

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByMethodKey finds the active account mapped to a payment method name.
	// Returns shared.ErrNotFound if no account is mapped to the method.
	FindByMethodKey(ctx context.Context, methodKey string) (*Account, error)

	// FindAll returns all accounts, active first
	FindAll(ctx context.Context) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// SaveWithLock updates an account with an optimistic version check.
	// Returns shared.ErrConcurrentModification if the stored version does
	// not match the version the aggregate was loaded with.
	SaveWithLock(ctx context.Context, account *Account) error
}

// MovementRepository defines persistence operations for the append-only
// movement ledger. Movements are insert-only.
type MovementRepository interface {
	// Save appends a movement to the ledger
	Save(ctx context.Context, movement *Movement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByAccount returns movements for an account, newest first
	FindByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Movement, error)

	// SumSignedByAccount returns the signed sum of all movement amounts for
	// an account. Used to audit the balance invariant.
	SumSignedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}
