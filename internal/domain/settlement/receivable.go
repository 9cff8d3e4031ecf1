package settlement

import (
	"fmt"
	"time"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DebtStatus represents the status of a receivable or payable
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "PENDING" // No payment applied yet
	DebtStatusPartial DebtStatus = "PARTIAL" // Partially paid, 0 < remaining < total
	DebtStatusPaid    DebtStatus = "PAID"    // Fully paid, remaining = 0
)

// IsValid checks if the status is a valid DebtStatus
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusPending, DebtStatusPartial, DebtStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of DebtStatus
func (s DebtStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the debt is settled
func (s DebtStatus) IsTerminal() bool {
	return s == DebtStatusPaid
}

// statusFor derives the status from the remaining and paid amounts.
// The transition pending -> partial -> paid is driven solely by
// remaining == 0; paid is terminal.
func statusFor(remaining, paid valueobject.Money) DebtStatus {
	switch {
	case remaining.IsZero():
		return DebtStatusPaid
	case paid.IsPositive():
		return DebtStatusPartial
	default:
		return DebtStatusPending
	}
}

// Receivable represents money a client owes the business for a sale.
// Invariant: RemainingAmount = max(0, TotalAmount - PaidAmount), and
// Status is PAID exactly when RemainingAmount is zero. PaidAmount only
// grows, except under an explicit return write-off.
type Receivable struct {
	shared.BaseAggregateRoot
	ClientID        uuid.UUID
	SaleID          uuid.UUID
	TotalAmount     int64 // Smallest currency unit
	PaidAmount      int64
	RemainingAmount int64
	DueDate         *time.Time
	Status          DebtStatus
	Notes           string
	ClosedByReturn  bool
}

// NewReceivable opens a receivable for a credit sale. For credit sales the
// total is the financed total (including the credit fee) and initialPayment
// is the down payment collected at sale time.
func NewReceivable(saleID, clientID uuid.UUID, total, initialPayment valueobject.Money, dueDate *time.Time) (*Receivable, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if initialPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}
	if initialPayment.GreaterThan(total) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot exceed the total amount")
	}

	remaining := total.Sub(initialPayment)
	return &Receivable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		SaleID:            saleID,
		TotalAmount:       total.MinorUnits(),
		PaidAmount:        initialPayment.MinorUnits(),
		RemainingAmount:   remaining.MinorUnits(),
		DueDate:           dueDate,
		Status:            statusFor(remaining, initialPayment),
	}, nil
}

// GetTotalAmountMoney returns the total amount as Money
func (r *Receivable) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoney(r.TotalAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (r *Receivable) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoney(r.PaidAmount)
}

// GetRemainingAmountMoney returns the remaining amount as Money
func (r *Receivable) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoney(r.RemainingAmount)
}

// IsPaid returns true if the receivable is fully settled
func (r *Receivable) IsPaid() bool {
	return r.Status == DebtStatusPaid
}

// ApplyPayment applies a payment and recomputes remaining amount and status.
// The amount must be positive and must not exceed the remaining amount.
func (r *Receivable) ApplyPayment(amount valueobject.Money) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to a receivable in %s status", r.Status))
	}
	if !amount.IsPositive() || amount.GreaterThan(r.GetRemainingAmountMoney()) {
		return shared.NewDomainError(shared.ErrInvalidPaymentAmount.Code,
			fmt.Sprintf("Maximum payable amount is %s", r.GetRemainingAmountMoney()))
	}

	paid := r.GetPaidAmountMoney().Add(amount)
	remaining := r.GetTotalAmountMoney().Sub(paid)

	r.PaidAmount = paid.MinorUnits()
	r.RemainingAmount = remaining.MinorUnits()
	r.Status = statusFor(remaining, paid)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// CloseByReturn force-closes the receivable because the sale was returned.
// This is a write-off: the remaining amount is zeroed and the status becomes
// PAID without any PaymentRecord or ledger movement - a return does not
// conjure cash.
func (r *Receivable) CloseByReturn(reason string) error {
	if r.ClosedByReturn {
		return shared.ErrAlreadyReturned
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Return reason is required")
	}

	r.RemainingAmount = 0
	r.Status = DebtStatusPaid
	r.ClosedByReturn = true
	if r.Notes != "" {
		r.Notes += "; "
	}
	r.Notes += "Closed by return: " + reason
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
