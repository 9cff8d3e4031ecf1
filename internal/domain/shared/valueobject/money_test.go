package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add and subtract", func(t *testing.T) {
		a := NewMoney(100_000)
		b := NewMoney(30_000)

		assert.Equal(t, int64(130_000), a.Add(b).MinorUnits())
		assert.Equal(t, int64(70_000), a.Sub(b).MinorUnits())
	})

	t.Run("operations do not mutate the receiver", func(t *testing.T) {
		a := NewMoney(500)
		_ = a.Add(NewMoney(100))
		assert.Equal(t, int64(500), a.MinorUnits())
	})

	t.Run("neg flips the sign", func(t *testing.T) {
		assert.Equal(t, int64(-250), NewMoney(250).Neg().MinorUnits())
	})

	t.Run("comparisons", func(t *testing.T) {
		assert.True(t, NewMoney(100).LessThan(NewMoney(200)))
		assert.True(t, NewMoney(200).GreaterThan(NewMoney(100)))
		assert.True(t, NewMoney(100).Equals(NewMoney(100)))
		assert.True(t, Zero().IsZero())
		assert.True(t, NewMoney(1).IsPositive())
		assert.True(t, NewMoney(-1).IsNegative())
	})
}

func TestMoney_ApplyPercent(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		percentage string
		expected   int64
	}{
		{"five percent of 100000", 100_000, "5", 5_000},
		{"fractional percentage", 100_000, "2.5", 2_500},
		{"rounds to nearest unit", 999, "5", 50}, // 49.95 -> 50
		{"zero percentage", 100_000, "0", 0},
		{"rounds half up", 10, "5", 1}, // 0.5 -> 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, err := decimal.NewFromString(tt.percentage)
			assert.NoError(t, err)
			result := NewMoney(tt.amount).ApplyPercent(pct)
			assert.Equal(t, tt.expected, result.MinorUnits())
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "1050.00", NewMoney(105_000).String())
	assert.Equal(t, "0.05", NewMoney(5).String())
	assert.Equal(t, "-3.20", NewMoney(-320).String())
}
