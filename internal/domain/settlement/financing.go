package settlement

import (
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreditTerms captures the financing conditions of a credit sale. The
// derived fields are computed once at sale-creation time and persisted;
// they are never recomputed afterward so the terms stay locked in for
// auditing even if fee schedules change later.
type CreditTerms struct {
	FeePercentage  decimal.Decimal
	FeeAmount      int64 // Smallest currency unit, derived
	TotalWithFee   int64 // Derived
	Installments   int
	InitialPayment int64
}

// ComputeFee returns the credit fee for a subtotal at the given percentage,
// rounded to the nearest smallest currency unit.
func ComputeFee(subtotal valueobject.Money, feePercentage decimal.Decimal) valueobject.Money {
	return subtotal.ApplyPercent(feePercentage)
}

// ComputeFinancedTotal returns the total including the credit fee
func ComputeFinancedTotal(total, feeAmount valueobject.Money) valueobject.Money {
	return total.Add(feeAmount)
}

// ComputeInstallmentSchedule splits a financed total into the given number
// of installments. The split is even, with any remainder added to the last
// installment. The schedule is used for display only; the ledger does not
// enforce it.
func ComputeInstallmentSchedule(financedTotal valueobject.Money, installments int) []valueobject.Money {
	if installments <= 0 {
		return nil
	}

	total := financedTotal.MinorUnits()
	each := total / int64(installments)
	schedule := make([]valueobject.Money, installments)
	for i := range schedule {
		schedule[i] = valueobject.NewMoney(each)
	}
	remainder := total - each*int64(installments)
	schedule[installments-1] = schedule[installments-1].Add(valueobject.NewMoney(remainder))

	return schedule
}

// NewCreditTerms computes and locks in the financing terms for a credit sale
func NewCreditTerms(subtotal valueobject.Money, feePercentage decimal.Decimal, installments int, initialPayment valueobject.Money) (*CreditTerms, error) {
	if subtotal.IsNegative() || subtotal.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Subtotal must be positive")
	}
	if feePercentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee percentage cannot be negative")
	}
	if installments < 1 {
		return nil, shared.NewDomainError("INVALID_INSTALLMENTS", "Installments must be at least 1")
	}
	if initialPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}

	fee := ComputeFee(subtotal, feePercentage)
	financed := ComputeFinancedTotal(subtotal, fee)
	if initialPayment.GreaterThan(financed) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot exceed the financed total")
	}

	return &CreditTerms{
		FeePercentage:  feePercentage,
		FeeAmount:      fee.MinorUnits(),
		TotalWithFee:   financed.MinorUnits(),
		Installments:   installments,
		InitialPayment: initialPayment.MinorUnits(),
	}, nil
}

// GetFeeAmountMoney returns the fee amount as Money
func (t *CreditTerms) GetFeeAmountMoney() valueobject.Money {
	return valueobject.NewMoney(t.FeeAmount)
}

// GetTotalWithFeeMoney returns the financed total as Money
func (t *CreditTerms) GetTotalWithFeeMoney() valueobject.Money {
	return valueobject.NewMoney(t.TotalWithFee)
}

// GetInitialPaymentMoney returns the initial payment as Money
func (t *CreditTerms) GetInitialPaymentMoney() valueobject.Money {
	return valueobject.NewMoney(t.InitialPayment)
}
