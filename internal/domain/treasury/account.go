package treasury

import (
	"time"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
)

// AccountKind represents the kind of money store an account is
type AccountKind string

const (
	AccountKindCash   AccountKind = "CASH"   // Physical cash drawer
	AccountKindBank   AccountKind = "BANK"   // Bank account
	AccountKindWallet AccountKind = "WALLET" // Digital wallet
)

// IsValid checks if the kind is a valid AccountKind
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindCash, AccountKindBank, AccountKindWallet:
		return true
	}
	return false
}

// String returns the string representation of AccountKind
func (k AccountKind) String() string {
	return string(k)
}

// Account represents a named store of money with a running balance.
// The balance always equals the opening balance plus the signed sum of all
// movements posted against the account; it is only ever changed together
// with the movement that explains the change, inside one transaction.
type Account struct {
	shared.BaseAggregateRoot
	Name      string
	Kind      AccountKind
	MethodKey string // Payment method name this account is mapped to, empty if unmapped
	IsActive  bool
	Balance   int64 // Smallest currency unit
}

// NewAccount creates a new account with an opening balance
func NewAccount(name string, kind AccountKind, openingBalance valueobject.Money) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 100 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_KIND", "Account kind is not valid")
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Opening balance cannot be negative")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Kind:              kind,
		IsActive:          true,
		Balance:           openingBalance.MinorUnits(),
	}, nil
}

// GetBalanceMoney returns the current balance as Money
func (a *Account) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoney(a.Balance)
}

// CanDebit returns true if the account can be debited by the given amount
func (a *Account) CanDebit(amount valueobject.Money) bool {
	return a.Balance >= amount.MinorUnits()
}

// Apply moves the balance by the signed effect of a movement kind and
// returns the balance before and after. The account is the only place the
// balance changes; callers never compute balances from separate reads.
func (a *Account) Apply(kind MovementKind, amount valueobject.Money) (previous, next valueobject.Money, err error) {
	if !a.IsActive {
		return valueobject.Zero(), valueobject.Zero(),
			shared.NewDomainError("ACCOUNT_INACTIVE", "Cannot post movements against an inactive account")
	}
	if !amount.IsPositive() {
		return valueobject.Zero(), valueobject.Zero(),
			shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}

	previous = a.GetBalanceMoney()
	if kind.IsDebit() {
		if !a.CanDebit(amount) {
			return valueobject.Zero(), valueobject.Zero(), shared.ErrInsufficientFunds
		}
		next = previous.Sub(amount)
	} else {
		next = previous.Add(amount)
	}

	a.Balance = next.MinorUnits()
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return previous, next, nil
}

// SetMethodKey maps a payment method name to this account
func (a *Account) SetMethodKey(methodKey string) {
	a.MethodKey = methodKey
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Deactivate marks the account inactive. Accounts are never hard-deleted
// once movements exist; deactivation stops further postings.
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already inactive")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
