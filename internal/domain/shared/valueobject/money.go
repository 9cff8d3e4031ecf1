package valueobject

import (
	"github.com/shopspring/decimal"
)

// Money is a value object representing a monetary amount in the smallest
// currency unit (e.g. cents). Storing integers end to end keeps balance
// arithmetic free of floating-point drift. It is immutable - all operations
// return new Money instances.
type Money struct {
	amount int64
}

// NewMoney creates Money from an amount in smallest currency units
func NewMoney(minorUnits int64) Money {
	return Money{amount: minorUnits}
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{}
}

// MinorUnits returns the raw amount in smallest currency units
func (m Money) MinorUnits() int64 {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// Sub returns a new Money with the difference of both amounts
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount - other.amount}
}

// Neg returns a new Money with the sign flipped
func (m Money) Neg() Money {
	return Money{amount: -m.amount}
}

// LessThan returns true if this amount is less than the other
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// GreaterThan returns true if this amount is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount
}

// ApplyPercent returns the given percentage of this amount, rounded to the
// nearest smallest currency unit (half away from zero). Percentages may be
// fractional, so the computation goes through decimal arithmetic.
func (m Money) ApplyPercent(percentage decimal.Decimal) Money {
	result := decimal.NewFromInt(m.amount).
		Mul(percentage).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return Money{amount: result.IntPart()}
}

// Decimal returns the amount as a decimal in major units (two decimal places)
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -2)
}

// String formats the amount in major units, e.g. "1050.00"
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
