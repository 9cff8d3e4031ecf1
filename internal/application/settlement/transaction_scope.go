package settlement

import (
	"context"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to everything a settlement
// unit of work can touch: the debt records, the payment log, the cash
// ledger, and the sale store for cascading status updates. Either the whole
// set of writes commits or none do.
type TransactionScope interface {
	// Execute runs the given function within a database transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the settlement-side
// repositories bound to the current transaction.
type TransactionalRepositories interface {
	// Receivables returns the receivable repository scoped to the transaction
	Receivables() settlement.ReceivableRepository
	// Payables returns the payable repository scoped to the transaction
	Payables() settlement.PayableRepository
	// PaymentRecords returns the payment record repository scoped to the transaction
	PaymentRecords() settlement.PaymentRecordRepository
	// Accounts returns the account repository scoped to the transaction
	Accounts() treasury.AccountRepository
	// Movements returns the movement repository scoped to the transaction
	Movements() treasury.MovementRepository
	// Sales returns the sale store scoped to the transaction
	Sales() SaleStore
}

// NoOpTransactionScope runs the unit of work without a real transaction.
// Used in tests.
type NoOpTransactionScope struct {
	ReceivableRepo    settlement.ReceivableRepository
	PayableRepo       settlement.PayableRepository
	PaymentRecordRepo settlement.PaymentRecordRepository
	AccountRepo       treasury.AccountRepository
	MovementRepo      treasury.MovementRepository
	SaleStoreImpl     SaleStore
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Receivables returns the wrapped receivable repository
func (s *NoOpTransactionScope) Receivables() settlement.ReceivableRepository {
	return s.ReceivableRepo
}

// Payables returns the wrapped payable repository
func (s *NoOpTransactionScope) Payables() settlement.PayableRepository {
	return s.PayableRepo
}

// PaymentRecords returns the wrapped payment record repository
func (s *NoOpTransactionScope) PaymentRecords() settlement.PaymentRecordRepository {
	return s.PaymentRecordRepo
}

// Accounts returns the wrapped account repository
func (s *NoOpTransactionScope) Accounts() treasury.AccountRepository {
	return s.AccountRepo
}

// Movements returns the wrapped movement repository
func (s *NoOpTransactionScope) Movements() treasury.MovementRepository {
	return s.MovementRepo
}

// Sales returns the wrapped sale store
func (s *NoOpTransactionScope) Sales() SaleStore {
	return s.SaleStoreImpl
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
