package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRetries is the number of optimistic-lock retries before a
// ConcurrentModification error surfaces to the caller.
const DefaultMaxRetries = 3

// LedgerService exposes account and movement operations to the surrounding
// application. All balance math happens inside the domain service within a
// transaction; GetBalance is a read-only projection and must never be used
// by callers to pre-compute movement amounts.
type LedgerService struct {
	scope      TransactionScope
	ledger     *treasury.LedgerDomainService
	accounts   treasury.AccountRepository
	movements  treasury.MovementRepository
	logger     *zap.Logger
	maxRetries int
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	accounts treasury.AccountRepository,
	movements treasury.MovementRepository,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:      scope,
		ledger:     treasury.NewLedgerDomainService(),
		accounts:   accounts,
		movements:  movements,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries overrides the optimistic-lock retry budget
func (s *LedgerService) WithMaxRetries(n int) *LedgerService {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

// PostMovementRequest describes a movement to post
type PostMovementRequest struct {
	AccountID uuid.UUID
	Kind      treasury.MovementKind
	Amount    valueobject.Money
	Concept   string
	Reference *treasury.Reference
	Actor     uuid.UUID
}

// PostMovement posts a single movement against an account as one atomic
// unit: the movement row and the balance update commit together or not at
// all. Concurrent posts against the same account are serialized through the
// account's version; stale attempts are retried with a fresh read.
func (s *LedgerService) PostMovement(ctx context.Context, req PostMovementRequest) (*treasury.Movement, error) {
	if req.Kind != treasury.MovementKindIn && req.Kind != treasury.MovementKindOut {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Direct postings must be IN or OUT; transfer legs are created by Transfer")
	}

	var movement *treasury.Movement
	err := s.withOptimisticRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			movement, err = s.ledger.Post(ctx, repos.Accounts(), repos.Movements(), treasury.PostParams{
				AccountID: req.AccountID,
				Kind:      req.Kind,
				Amount:    req.Amount,
				Concept:   req.Concept,
				Reference: req.Reference,
				Actor:     req.Actor,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("movement posted",
		zap.String("account_id", req.AccountID.String()),
		zap.String("kind", req.Kind.String()),
		zap.Int64("amount", req.Amount.MinorUnits()),
		zap.Int64("new_balance", movement.NewBalance),
	)
	return movement, nil
}

// GetBalance returns the account's current balance. Read-only projection.
func (s *LedgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return valueobject.Zero(), shared.ErrAccountNotFound
		}
		return valueobject.Zero(), err
	}
	return account.GetBalanceMoney(), nil
}

// CreateAccountRequest describes a new account
type CreateAccountRequest struct {
	Name           string
	Kind           treasury.AccountKind
	MethodKey      string
	OpeningBalance valueobject.Money
}

// CreateAccount creates a new account. Configuration-time operation.
func (s *LedgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*treasury.Account, error) {
	account, err := treasury.NewAccount(req.Name, req.Kind, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	if req.MethodKey != "" {
		account.MethodKey = req.MethodKey
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("name", account.Name),
		zap.String("kind", account.Kind.String()),
	)
	return account, nil
}

// DeactivateAccount marks an account inactive. Accounts with movements are
// never hard-deleted.
func (s *LedgerService) DeactivateAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.withOptimisticRetry(ctx, func() error {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrAccountNotFound
			}
			return err
		}
		if err := account.Deactivate(); err != nil {
			return err
		}
		return s.accounts.SaveWithLock(ctx, account)
	})
}

// BalanceAudit reports whether an account's stored balance agrees with its
// movement ledger.
type BalanceAudit struct {
	AccountID      uuid.UUID
	Balance        int64
	MovementSum    int64
	OpeningBalance int64
	Consistent     bool
}

// AuditAccount cross-checks the stored balance against the movement
// ledger. The latest movement's resulting balance must equal the stored
// balance, and subtracting the signed movement sum from the stored balance
// must leave a non-negative opening balance. Read-only.
func (s *LedgerService) AuditAccount(ctx context.Context, accountID uuid.UUID) (*BalanceAudit, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}

	sum, err := s.movements.SumSignedByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	latest, err := s.movements.FindByAccount(ctx, accountID, 1, 0)
	if err != nil {
		return nil, err
	}

	audit := &BalanceAudit{
		AccountID:      accountID,
		Balance:        account.Balance,
		MovementSum:    sum,
		OpeningBalance: account.Balance - sum,
	}
	audit.Consistent = audit.OpeningBalance >= 0
	if len(latest) > 0 && latest[0].NewBalance != account.Balance {
		audit.Consistent = false
	}

	if !audit.Consistent {
		s.logger.Error("account balance disagrees with movement ledger",
			zap.String("account_id", accountID.String()),
			zap.Int64("balance", audit.Balance),
			zap.Int64("movement_sum", audit.MovementSum),
		)
	}
	return audit, nil
}

// ListAccounts returns all accounts
func (s *LedgerService) ListAccounts(ctx context.Context) ([]treasury.Account, error) {
	return s.accounts.FindAll(ctx)
}

// ListMovements returns an account's movements, newest first
func (s *LedgerService) ListMovements(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]treasury.Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movements.FindByAccount(ctx, accountID, limit, offset)
}

// withOptimisticRetry re-runs fn with fresh reads while it fails on the
// optimistic version check, up to the retry budget.
func (s *LedgerService) withOptimisticRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrentModification) {
			return err
		}
		s.logger.Debug("optimistic lock conflict, retrying", zap.Int("attempt", attempt+1))
	}
	return shared.ErrConcurrentModification
}
