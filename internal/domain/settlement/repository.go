package settlement

import (
	"context"

	"github.com/google/uuid"
)

// ReceivableRepository defines persistence operations for receivables
type ReceivableRepository interface {
	// FindByID finds a receivable by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Receivable, error)

	// FindBySale finds the receivable opened for a sale, if any
	FindBySale(ctx context.Context, saleID uuid.UUID) (*Receivable, error)

	// FindByClient returns a client's receivables, optionally filtered by status
	FindByClient(ctx context.Context, clientID uuid.UUID, status *DebtStatus) ([]Receivable, error)

	// Save creates or updates a receivable
	Save(ctx context.Context, receivable *Receivable) error

	// SaveWithLock updates a receivable with an optimistic version check
	SaveWithLock(ctx context.Context, receivable *Receivable) error
}

// PayableRepository defines persistence operations for payables
type PayableRepository interface {
	// FindByID finds a payable by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payable, error)

	// FindByExpense finds the payable opened for an expense, if any
	FindByExpense(ctx context.Context, expenseID uuid.UUID) (*Payable, error)

	// FindBySupplier returns a supplier's payables, optionally filtered by status
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, status *DebtStatus) ([]Payable, error)

	// Save creates or updates a payable
	Save(ctx context.Context, payable *Payable) error

	// SaveWithLock updates a payable with an optimistic version check
	SaveWithLock(ctx context.Context, payable *Payable) error
}

// PaymentRecordRepository defines persistence operations for the
// append-only payment record log
type PaymentRecordRepository interface {
	// Save appends a payment record
	Save(ctx context.Context, record *PaymentRecord) error

	// FindByReference returns all payment records applied to a receivable
	// or payable, oldest first
	FindByReference(ctx context.Context, settlementType SettlementType, referenceID uuid.UUID) ([]PaymentRecord, error)
}
