package treasury

import (
	"context"
	"testing"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestAccount(t *testing.T, balance int64) *treasury.Account {
	t.Helper()
	account, err := treasury.NewAccount("Main Cash", treasury.AccountKindCash, valueobject.NewMoney(balance))
	require.NoError(t, err)
	return account
}

func newLedgerServiceForTest(accountRepo *MockAccountRepository, movementRepo *MockMovementRepository) *LedgerService {
	scope := NewNoOpTransactionScope(accountRepo, movementRepo)
	return NewLedgerService(scope, accountRepo, movementRepo, zap.NewNop())
}

func TestLedgerService_PostMovement_Success(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	account := createTestAccount(t, 100000)
	accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	accountRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*treasury.Account")).Return(nil)
	movementRepo.On("Save", ctx, mock.AnythingOfType("*treasury.Movement")).Return(nil)

	movement, err := service.PostMovement(ctx, PostMovementRequest{
		AccountID: account.ID,
		Kind:      treasury.MovementKindOut,
		Amount:    valueobject.NewMoney(30000),
		Concept:   "Supplier payment",
		Actor:     uuid.New(),
	})

	require.NoError(t, err)
	require.NotNil(t, movement)
	assert.Equal(t, int64(100000), movement.PreviousBalance)
	assert.Equal(t, int64(70000), movement.NewBalance)
	assert.Equal(t, int64(70000), account.Balance)
	accountRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestLedgerService_PostMovement_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	account := createTestAccount(t, 10000)
	accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

	movement, err := service.PostMovement(ctx, PostMovementRequest{
		AccountID: account.ID,
		Kind:      treasury.MovementKindOut,
		Amount:    valueobject.NewMoney(30000),
		Concept:   "Supplier payment",
		Actor:     uuid.New(),
	})

	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.Nil(t, movement)
	assert.Equal(t, int64(10000), account.Balance)
	accountRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLedgerService_PostMovement_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	missingID := uuid.New()
	accountRepo.On("FindByID", ctx, missingID).Return(nil, shared.ErrNotFound)

	_, err := service.PostMovement(ctx, PostMovementRequest{
		AccountID: missingID,
		Kind:      treasury.MovementKindIn,
		Amount:    valueobject.NewMoney(5000),
		Concept:   "Cash sale",
		Actor:     uuid.New(),
	})

	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestLedgerService_PostMovement_RejectsTransferKinds(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	for _, kind := range []treasury.MovementKind{treasury.MovementKindTransferIn, treasury.MovementKindTransferOut} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := service.PostMovement(ctx, PostMovementRequest{
				AccountID: uuid.New(),
				Kind:      kind,
				Amount:    valueobject.NewMoney(1000),
				Concept:   "direct posting",
				Actor:     uuid.New(),
			})
			assert.Error(t, err)
		})
	}
	accountRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestLedgerService_PostMovement_RetriesOnVersionConflict(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	// Each retry re-reads the account, so FindByID must hand out a fresh
	// aggregate every time.
	accountRepo.On("FindByID", ctx, mock.Anything).Return(createTestAccount(t, 50000), nil).Once()
	accountRepo.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrentModification).Once()
	accountRepo.On("FindByID", ctx, mock.Anything).Return(createTestAccount(t, 48000), nil).Once()
	accountRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Once()
	movementRepo.On("Save", ctx, mock.AnythingOfType("*treasury.Movement")).Return(nil)

	movement, err := service.PostMovement(ctx, PostMovementRequest{
		AccountID: uuid.New(),
		Kind:      treasury.MovementKindOut,
		Amount:    valueobject.NewMoney(2000),
		Concept:   "Supplier payment",
		Actor:     uuid.New(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(48000), movement.PreviousBalance)
	assert.Equal(t, int64(46000), movement.NewBalance)
	accountRepo.AssertExpectations(t)
}

func TestLedgerService_PostMovement_GivesUpAfterRetryBudget(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo).WithMaxRetries(2)

	accountRepo.On("FindByID", ctx, mock.Anything).Return(createTestAccount(t, 50000), nil)
	accountRepo.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrentModification)

	_, err := service.PostMovement(ctx, PostMovementRequest{
		AccountID: uuid.New(),
		Kind:      treasury.MovementKindIn,
		Amount:    valueobject.NewMoney(2000),
		Concept:   "Cash sale",
		Actor:     uuid.New(),
	})

	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	accountRepo.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	t.Run("returns current balance", func(t *testing.T) {
		account := createTestAccount(t, 123450)
		accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

		balance, err := service.GetBalance(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(123450), balance.MinorUnits())
	})

	t.Run("unknown account", func(t *testing.T) {
		missingID := uuid.New()
		accountRepo.On("FindByID", ctx, missingID).Return(nil, shared.ErrNotFound)

		_, err := service.GetBalance(ctx, missingID)
		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
	})
}

func TestLedgerService_AuditAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("balance agrees with the ledger", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		movementRepo := new(MockMovementRepository)
		service := newLedgerServiceForTest(accountRepo, movementRepo)

		account := createTestAccount(t, 70000)
		accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
		movementRepo.On("SumSignedByAccount", ctx, account.ID).Return(int64(20000), nil)
		movementRepo.On("FindByAccount", ctx, account.ID, 1, 0).Return([]treasury.Movement{
			{AccountID: account.ID, NewBalance: 70000},
		}, nil)

		audit, err := service.AuditAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, audit.Consistent)
		assert.Equal(t, int64(70000), audit.Balance)
		assert.Equal(t, int64(20000), audit.MovementSum)
		assert.Equal(t, int64(50000), audit.OpeningBalance)
	})

	t.Run("stored balance drifted from the latest movement", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		movementRepo := new(MockMovementRepository)
		service := newLedgerServiceForTest(accountRepo, movementRepo)

		account := createTestAccount(t, 70000)
		accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
		movementRepo.On("SumSignedByAccount", ctx, account.ID).Return(int64(20000), nil)
		movementRepo.On("FindByAccount", ctx, account.ID, 1, 0).Return([]treasury.Movement{
			{AccountID: account.ID, NewBalance: 65000},
		}, nil)

		audit, err := service.AuditAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, audit.Consistent)
	})

	t.Run("movement sum exceeds the stored balance", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		movementRepo := new(MockMovementRepository)
		service := newLedgerServiceForTest(accountRepo, movementRepo)

		account := createTestAccount(t, 10000)
		accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
		movementRepo.On("SumSignedByAccount", ctx, account.ID).Return(int64(25000), nil)
		movementRepo.On("FindByAccount", ctx, account.ID, 1, 0).Return([]treasury.Movement{
			{AccountID: account.ID, NewBalance: 10000},
		}, nil)

		audit, err := service.AuditAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, audit.Consistent)
		assert.Equal(t, int64(-15000), audit.OpeningBalance)
	})

	t.Run("account with no movements", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		movementRepo := new(MockMovementRepository)
		service := newLedgerServiceForTest(accountRepo, movementRepo)

		account := createTestAccount(t, 30000)
		accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
		movementRepo.On("SumSignedByAccount", ctx, account.ID).Return(int64(0), nil)
		movementRepo.On("FindByAccount", ctx, account.ID, 1, 0).Return([]treasury.Movement{}, nil)

		audit, err := service.AuditAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, audit.Consistent)
		assert.Equal(t, int64(30000), audit.OpeningBalance)
	})

	t.Run("unknown account", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		movementRepo := new(MockMovementRepository)
		service := newLedgerServiceForTest(accountRepo, movementRepo)

		missing := uuid.New()
		accountRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := service.AuditAccount(ctx, missing)
		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
	})
}

func TestLedgerService_CreateAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	accountRepo.On("Save", ctx, mock.AnythingOfType("*treasury.Account")).Return(nil)

	account, err := service.CreateAccount(ctx, CreateAccountRequest{
		Name:           "Banco Principal",
		Kind:           treasury.AccountKindBank,
		MethodKey:      "transfer",
		OpeningBalance: valueobject.NewMoney(500000),
	})

	require.NoError(t, err)
	assert.Equal(t, "Banco Principal", account.Name)
	assert.Equal(t, "transfer", account.MethodKey)
	assert.Equal(t, int64(500000), account.Balance)
	assert.True(t, account.IsActive)
}

func TestLedgerService_DeactivateAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	account := createTestAccount(t, 0)
	accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	accountRepo.On("SaveWithLock", ctx, account).Return(nil)

	err := service.DeactivateAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, account.IsActive)
	accountRepo.AssertExpectations(t)
}

func TestLedgerService_ListMovements_CapsLimit(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	movementRepo := new(MockMovementRepository)
	service := newLedgerServiceForTest(accountRepo, movementRepo)

	accountID := uuid.New()
	movementRepo.On("FindByAccount", ctx, accountID, 50, 0).Return([]treasury.Movement{}, nil).Once()
	movementRepo.On("FindByAccount", ctx, accountID, 200, 10).Return([]treasury.Movement{}, nil).Once()

	_, err := service.ListMovements(ctx, accountID, 0, 0)
	require.NoError(t, err)
	_, err = service.ListMovements(ctx, accountID, 1000, 10)
	require.NoError(t, err)
	movementRepo.AssertExpectations(t)
}
