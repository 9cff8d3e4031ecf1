package settlement

import (
	"testing"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayable(t *testing.T) {
	t.Run("opens pending payable", func(t *testing.T) {
		ap, err := NewPayable(uuid.New(), uuid.New(), valueobject.NewMoney(200_000), nil)

		require.NoError(t, err)
		assert.Equal(t, int64(200_000), ap.TotalAmount)
		assert.Equal(t, int64(200_000), ap.RemainingAmount)
		assert.Equal(t, DebtStatusPending, ap.Status)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewPayable(uuid.Nil, uuid.New(), valueobject.NewMoney(100), nil)
		assert.Error(t, err)

		_, err = NewPayable(uuid.New(), uuid.Nil, valueobject.NewMoney(100), nil)
		assert.Error(t, err)

		_, err = NewPayable(uuid.New(), uuid.New(), valueobject.Zero(), nil)
		assert.Error(t, err)
	})
}

func TestPayable_ApplyPayment(t *testing.T) {
	t.Run("full lifecycle pending to partial to paid", func(t *testing.T) {
		ap, err := NewPayable(uuid.New(), uuid.New(), valueobject.NewMoney(100_000), nil)
		require.NoError(t, err)

		require.NoError(t, ap.ApplyPayment(valueobject.NewMoney(60_000)))
		assert.Equal(t, DebtStatusPartial, ap.Status)
		assert.Equal(t, int64(40_000), ap.RemainingAmount)

		require.NoError(t, ap.ApplyPayment(valueobject.NewMoney(40_000)))
		assert.Equal(t, DebtStatusPaid, ap.Status)
		assert.True(t, ap.IsPaid())
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		ap, err := NewPayable(uuid.New(), uuid.New(), valueobject.NewMoney(100), nil)
		require.NoError(t, err)

		err = ap.ApplyPayment(valueobject.NewMoney(101))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInvalidPaymentAmount.Code, domainErr.Code)
	})

	t.Run("payment against settled payable rejected", func(t *testing.T) {
		ap, err := NewPayable(uuid.New(), uuid.New(), valueobject.NewMoney(100), nil)
		require.NoError(t, err)
		require.NoError(t, ap.ApplyPayment(valueobject.NewMoney(100)))

		assert.Error(t, ap.ApplyPayment(valueobject.NewMoney(1)))
	})
}

func TestNewPaymentRecord(t *testing.T) {
	t.Run("creates immutable record", func(t *testing.T) {
		record, err := NewPaymentRecord(SettlementTypeReceivable, uuid.New(),
			valueobject.NewMoney(5_000), "cash", "first installment", uuid.New())

		require.NoError(t, err)
		assert.Equal(t, SettlementTypeReceivable, record.Type)
		assert.Equal(t, int64(5_000), record.Amount)
		assert.Nil(t, record.PaymentAccountID)
	})

	t.Run("links payment account when mapped", func(t *testing.T) {
		accountID := uuid.New()
		record, err := NewPaymentRecord(SettlementTypePayable, uuid.New(),
			valueobject.NewMoney(5_000), "bank_transfer", "", uuid.New())
		require.NoError(t, err)

		record.WithPaymentAccount(accountID)

		require.NotNil(t, record.PaymentAccountID)
		assert.Equal(t, accountID, *record.PaymentAccountID)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewPaymentRecord(SettlementType("OTHER"), uuid.New(), valueobject.NewMoney(1), "cash", "", uuid.New())
		assert.Error(t, err)

		_, err = NewPaymentRecord(SettlementTypeReceivable, uuid.Nil, valueobject.NewMoney(1), "cash", "", uuid.New())
		assert.Error(t, err)

		_, err = NewPaymentRecord(SettlementTypeReceivable, uuid.New(), valueobject.Zero(), "cash", "", uuid.New())
		assert.Error(t, err)

		_, err = NewPaymentRecord(SettlementTypeReceivable, uuid.New(), valueobject.NewMoney(1), "", "", uuid.New())
		assert.Error(t, err)
	})
}
