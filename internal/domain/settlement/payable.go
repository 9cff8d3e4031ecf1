package settlement

import (
	"fmt"
	"time"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Payable represents money the business owes a supplier for a deferred
// expense. It shares the receivable's invariants: remaining = total - paid,
// status PAID exactly when remaining is zero.
type Payable struct {
	shared.BaseAggregateRoot
	SupplierID      uuid.UUID
	ExpenseID       uuid.UUID
	TotalAmount     int64 // Smallest currency unit
	PaidAmount      int64
	RemainingAmount int64
	DueDate         *time.Time
	Status          DebtStatus
	Notes           string
}

// NewPayable opens a payable for a deferred-payment expense
func NewPayable(expenseID, supplierID uuid.UUID, total valueobject.Money, dueDate *time.Time) (*Payable, error) {
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EXPENSE", "Expense ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}

	return &Payable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		ExpenseID:         expenseID,
		TotalAmount:       total.MinorUnits(),
		PaidAmount:        0,
		RemainingAmount:   total.MinorUnits(),
		DueDate:           dueDate,
		Status:            DebtStatusPending,
	}, nil
}

// GetTotalAmountMoney returns the total amount as Money
func (p *Payable) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.TotalAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (p *Payable) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.PaidAmount)
}

// GetRemainingAmountMoney returns the remaining amount as Money
func (p *Payable) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.RemainingAmount)
}

// IsPaid returns true if the payable is fully settled
func (p *Payable) IsPaid() bool {
	return p.Status == DebtStatusPaid
}

// ApplyPayment applies a payment and recomputes remaining amount and status
func (p *Payable) ApplyPayment(amount valueobject.Money) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to a payable in %s status", p.Status))
	}
	if !amount.IsPositive() || amount.GreaterThan(p.GetRemainingAmountMoney()) {
		return shared.NewDomainError(shared.ErrInvalidPaymentAmount.Code,
			fmt.Sprintf("Maximum payable amount is %s", p.GetRemainingAmountMoney()))
	}

	paid := p.GetPaidAmountMoney().Add(amount)
	remaining := p.GetTotalAmountMoney().Sub(paid)

	p.PaidAmount = paid.MinorUnits()
	p.RemainingAmount = remaining.MinorUnits()
	p.Status = statusFor(remaining, paid)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}
