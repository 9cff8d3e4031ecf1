package persistence

import (
	"context"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormSettlementTransactionScope provides database transactions for
// settlement units of work. A settlement transaction can touch the debt
// records, the payment log, the cash ledger, and the sale store.
type GormSettlementTransactionScope struct {
	db *gorm.DB
}

// NewGormSettlementTransactionScope creates a new GormSettlementTransactionScope
func NewGormSettlementTransactionScope(db *gorm.DB) *GormSettlementTransactionScope {
	return &GormSettlementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormSettlementTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSettlementRepositories{tx: tx})
	})
}

// gormSettlementRepositories provides repositories bound to one transaction
type gormSettlementRepositories struct {
	tx *gorm.DB
}

// Receivables returns the receivable repository scoped to the current transaction
func (r *gormSettlementRepositories) Receivables() settlement.ReceivableRepository {
	return NewGormReceivableRepository(r.tx)
}

// Payables returns the payable repository scoped to the current transaction
func (r *gormSettlementRepositories) Payables() settlement.PayableRepository {
	return NewGormPayableRepository(r.tx)
}

// PaymentRecords returns the payment record repository scoped to the current transaction
func (r *gormSettlementRepositories) PaymentRecords() settlement.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormSettlementRepositories) Accounts() treasury.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Movements returns the movement repository scoped to the current transaction
func (r *gormSettlementRepositories) Movements() treasury.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Sales returns the sale store scoped to the current transaction
func (r *gormSettlementRepositories) Sales() appsettlement.SaleStore {
	return NewGormSaleStore(r.tx)
}

var _ appsettlement.TransactionScope = (*GormSettlementTransactionScope)(nil)
var _ appsettlement.TransactionalRepositories = (*gormSettlementRepositories)(nil)
