package persistence

import (
	"context"

	apptreasury "github.com/comercia/backend/internal/application/treasury"
	"github.com/comercia/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTreasuryTransactionScope provides database transactions for treasury
// units of work
type GormTreasuryTransactionScope struct {
	db *gorm.DB
}

// NewGormTreasuryTransactionScope creates a new GormTreasuryTransactionScope
func NewGormTreasuryTransactionScope(db *gorm.DB) *GormTreasuryTransactionScope {
	return &GormTreasuryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTreasuryTransactionScope) Execute(ctx context.Context, fn func(repos apptreasury.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTreasuryRepositories{tx: tx})
	})
}

// gormTreasuryRepositories provides repositories bound to one transaction
type gormTreasuryRepositories struct {
	tx *gorm.DB
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormTreasuryRepositories) Accounts() treasury.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Movements returns the movement repository scoped to the current transaction
func (r *gormTreasuryRepositories) Movements() treasury.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var _ apptreasury.TransactionScope = (*GormTreasuryTransactionScope)(nil)
var _ apptreasury.TransactionalRepositories = (*gormTreasuryRepositories)(nil)
