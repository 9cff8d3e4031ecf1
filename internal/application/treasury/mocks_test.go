package treasury

import (
	"context"
	"sync"
	"time"

	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

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
// Fake Idempotency Store
// =============================================================================

// fakeIdempotencyStore is an in-memory idempotency store for tests
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
