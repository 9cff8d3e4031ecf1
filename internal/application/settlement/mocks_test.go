package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockReceivableRepository is a mock implementation of settlement.ReceivableRepository
type MockReceivableRepository struct {
	mock.Mock
}

func (m *MockReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Receivable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) FindBySale(ctx context.Context, saleID uuid.UUID) (*settlement.Receivable, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) FindByClient(ctx context.Context, clientID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Receivable, error) {
	args := m.Called(ctx, clientID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) Save(ctx context.Context, receivable *settlement.Receivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

func (m *MockReceivableRepository) SaveWithLock(ctx context.Context, receivable *settlement.Receivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

// MockPayableRepository is a mock implementation of settlement.PayableRepository
type MockPayableRepository struct {
	mock.Mock
}

func (m *MockPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Payable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Payable), args.Error(1)
}

func (m *MockPayableRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) (*settlement.Payable, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Payable), args.Error(1)
}

func (m *MockPayableRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Payable, error) {
	args := m.Called(ctx, supplierID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.Payable), args.Error(1)
}

func (m *MockPayableRepository) Save(ctx context.Context, payable *settlement.Payable) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

func (m *MockPayableRepository) SaveWithLock(ctx context.Context, payable *settlement.Payable) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

// MockPaymentRecordRepository is a mock implementation of settlement.PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) Save(ctx context.Context, record *settlement.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRecordRepository) FindByReference(ctx context.Context, settlementType settlement.SettlementType, referenceID uuid.UUID) ([]settlement.PaymentRecord, error) {
	args := m.Called(ctx, settlementType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.PaymentRecord), args.Error(1)
}

// MockAccountRepository is a mock implementation of treasury.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByMethodKey(ctx context.Context, methodKey string) (*treasury.Account, error) {
	args := m.Called(ctx, methodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]treasury.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *treasury.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, account *treasury.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of treasury.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Save(ctx context.Context, movement *treasury.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Movement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]treasury.Movement, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]treasury.Movement), args.Error(1)
}

func (m *MockMovementRepository) SumSignedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Mock Collaborators
// =============================================================================

// MockSaleStore is a mock implementation of SaleStore
type MockSaleStore struct {
	mock.Mock
}

func (m *MockSaleStore) GetStatus(ctx context.Context, saleID uuid.UUID) (settlement.SaleStatus, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).(settlement.SaleStatus), args.Error(1)
}

func (m *MockSaleStore) MarkReturned(ctx context.Context, saleID uuid.UUID) error {
	args := m.Called(ctx, saleID)
	return args.Error(0)
}

func (m *MockSaleStore) UpdateStatus(ctx context.Context, saleID uuid.UUID, status settlement.SaleStatus) error {
	args := m.Called(ctx, saleID, status)
	return args.Error(0)
}

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int, reason string) (int, error) {
	args := m.Called(ctx, variantID, quantity, reason)
	return args.Int(0), args.Error(1)
}

// =============================================================================
// Fake Idempotency Store
// =============================================================================

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error {
	return nil
}

// newTestScope wires a NoOpTransactionScope over the given mocks
func newTestScope(
	receivables *MockReceivableRepository,
	payables *MockPayableRepository,
	paymentRecords *MockPaymentRecordRepository,
	accounts *MockAccountRepository,
	movements *MockMovementRepository,
	sales *MockSaleStore,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ReceivableRepo:    receivables,
		PayableRepo:       payables,
		PaymentRecordRepo: paymentRecords,
		AccountRepo:       accounts,
		MovementRepo:      movements,
		SaleStoreImpl:     sales,
	}
}
