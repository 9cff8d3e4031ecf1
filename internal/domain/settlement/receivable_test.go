package settlement

import (
	"testing"
	"time"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceivable(t *testing.T) {
	saleID := uuid.New()
	clientID := uuid.New()

	t.Run("opens pending receivable with no initial payment", func(t *testing.T) {
		ar, err := NewReceivable(saleID, clientID, valueobject.NewMoney(105_000), valueobject.Zero(), nil)

		require.NoError(t, err)
		assert.Equal(t, int64(105_000), ar.TotalAmount)
		assert.Equal(t, int64(0), ar.PaidAmount)
		assert.Equal(t, int64(105_000), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPending, ar.Status)
	})

	t.Run("credit sale with initial payment starts partial", func(t *testing.T) {
		// total=100,000 at fee 5% -> financed total 105,000
		ar, err := NewReceivable(saleID, clientID, valueobject.NewMoney(105_000), valueobject.NewMoney(20_000), nil)

		require.NoError(t, err)
		assert.Equal(t, int64(20_000), ar.PaidAmount)
		assert.Equal(t, int64(85_000), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPartial, ar.Status)
	})

	t.Run("initial payment equal to total opens paid", func(t *testing.T) {
		ar, err := NewReceivable(saleID, clientID, valueobject.NewMoney(5_000), valueobject.NewMoney(5_000), nil)

		require.NoError(t, err)
		assert.Equal(t, DebtStatusPaid, ar.Status)
		assert.True(t, ar.IsPaid())
	})

	t.Run("rejects initial payment above total", func(t *testing.T) {
		_, err := NewReceivable(saleID, clientID, valueobject.NewMoney(1_000), valueobject.NewMoney(1_001), nil)
		assert.Error(t, err)
	})

	t.Run("rejects nil ids and non-positive total", func(t *testing.T) {
		_, err := NewReceivable(uuid.Nil, clientID, valueobject.NewMoney(100), valueobject.Zero(), nil)
		assert.Error(t, err)

		_, err = NewReceivable(saleID, uuid.Nil, valueobject.NewMoney(100), valueobject.Zero(), nil)
		assert.Error(t, err)

		_, err = NewReceivable(saleID, clientID, valueobject.Zero(), valueobject.Zero(), nil)
		assert.Error(t, err)
	})

	t.Run("keeps due date", func(t *testing.T) {
		due := time.Now().AddDate(0, 1, 0)
		ar, err := NewReceivable(saleID, clientID, valueobject.NewMoney(100), valueobject.Zero(), &due)

		require.NoError(t, err)
		require.NotNil(t, ar.DueDate)
		assert.Equal(t, due, *ar.DueDate)
	})
}

func TestReceivable_ApplyPayment(t *testing.T) {
	open := func(total, initial int64) *Receivable {
		ar, err := NewReceivable(uuid.New(), uuid.New(), valueobject.NewMoney(total), valueobject.NewMoney(initial), nil)
		require.NoError(t, err)
		return ar
	}

	t.Run("partial payment moves pending to partial", func(t *testing.T) {
		ar := open(100_000, 0)

		require.NoError(t, ar.ApplyPayment(valueobject.NewMoney(40_000)))

		assert.Equal(t, int64(40_000), ar.PaidAmount)
		assert.Equal(t, int64(60_000), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPartial, ar.Status)
	})

	t.Run("payment of exactly remaining drives status to paid", func(t *testing.T) {
		ar := open(105_000, 20_000)

		require.NoError(t, ar.ApplyPayment(valueobject.NewMoney(85_000)))

		assert.Equal(t, int64(0), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPaid, ar.Status)
	})

	t.Run("payment above remaining is rejected with zero side effects", func(t *testing.T) {
		ar := open(100_000, 0)
		versionBefore := ar.Version

		err := ar.ApplyPayment(valueobject.NewMoney(100_001))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInvalidPaymentAmount.Code, domainErr.Code)
		assert.Equal(t, int64(0), ar.PaidAmount)
		assert.Equal(t, int64(100_000), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPending, ar.Status)
		assert.Equal(t, versionBefore, ar.Version)
	})

	t.Run("non-positive payment is rejected", func(t *testing.T) {
		ar := open(100_000, 0)
		assert.Error(t, ar.ApplyPayment(valueobject.Zero()))
		assert.Error(t, ar.ApplyPayment(valueobject.NewMoney(-1)))
	})

	t.Run("payment against a paid receivable is rejected", func(t *testing.T) {
		ar := open(1_000, 1_000)
		assert.Error(t, ar.ApplyPayment(valueobject.NewMoney(1)))
	})

	t.Run("paid amount is monotonically non-decreasing", func(t *testing.T) {
		ar := open(10_000, 0)
		last := int64(0)
		for _, amount := range []int64{2_500, 2_500, 5_000} {
			require.NoError(t, ar.ApplyPayment(valueobject.NewMoney(amount)))
			assert.GreaterOrEqual(t, ar.PaidAmount, last)
			last = ar.PaidAmount
		}
		assert.Equal(t, DebtStatusPaid, ar.Status)
	})
}

func TestReceivable_CloseByReturn(t *testing.T) {
	t.Run("write-off zeroes remaining and marks paid", func(t *testing.T) {
		ar, err := NewReceivable(uuid.New(), uuid.New(), valueobject.NewMoney(50_000), valueobject.NewMoney(10_000), nil)
		require.NoError(t, err)

		require.NoError(t, ar.CloseByReturn("order returned"))

		assert.Equal(t, int64(0), ar.RemainingAmount)
		assert.Equal(t, DebtStatusPaid, ar.Status)
		assert.True(t, ar.ClosedByReturn)
		assert.Contains(t, ar.Notes, "Closed by return")
		// Paid amount is untouched: a return does not conjure cash
		assert.Equal(t, int64(10_000), ar.PaidAmount)
	})

	t.Run("second close is rejected as already returned", func(t *testing.T) {
		ar, err := NewReceivable(uuid.New(), uuid.New(), valueobject.NewMoney(50_000), valueobject.Zero(), nil)
		require.NoError(t, err)
		require.NoError(t, ar.CloseByReturn("first"))

		err = ar.CloseByReturn("second")
		assert.ErrorIs(t, err, shared.ErrAlreadyReturned)
	})

	t.Run("requires a reason", func(t *testing.T) {
		ar, err := NewReceivable(uuid.New(), uuid.New(), valueobject.NewMoney(50_000), valueobject.Zero(), nil)
		require.NoError(t, err)
		assert.Error(t, ar.CloseByReturn(""))
	})
}
