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

// TransferService moves money between two accounts. Both legs are posted
// inside a single transaction: either both commit or neither does. This
// replaces the legacy behavior where the two legs were independent network
// calls with no rollback.
type TransferService struct {
	scope       TransactionScope
	ledger      *treasury.LedgerDomainService
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
	maxRetries  int
}

// NewTransferService creates a new TransferService
func NewTransferService(
	scope TransactionScope,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		scope:       scope,
		ledger:      treasury.NewLedgerDomainService(),
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
		maxRetries:  DefaultMaxRetries,
	}
}

// WithMaxRetries overrides the optimistic-lock retry budget
func (s *TransferService) WithMaxRetries(n int) *TransferService {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

// TransferRequest describes a transfer between two accounts
type TransferRequest struct {
	SourceID       uuid.UUID
	DestinationID  uuid.UUID
	Amount         valueobject.Money
	Concept        string
	Actor          uuid.UUID
	IdempotencyKey string // Optional, client-supplied; retries with the same key are rejected
}

// TransferResult carries the two committed legs of a transfer
type TransferResult struct {
	OutMovement *treasury.Movement
	InMovement  *treasury.Movement
}

// Transfer posts the debit leg on the source account and the credit leg on
// the destination account within one atomic unit. Validation failures are
// rejected before any write begins.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.SourceID == uuid.Nil || req.DestinationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Source and destination accounts are required")
	}
	if req.SourceID == req.DestinationID {
		return nil, shared.NewDomainError("SAME_ACCOUNT_TRANSFER", "Source and destination accounts must differ")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
	}
	if req.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	// Claim the key before executing so two concurrent requests with the
	// same key resolve to exactly one transfer. The key is not released on
	// failure; the TTL expiry permits a later retry.
	if req.IdempotencyKey != "" && s.idemConfig.Enabled {
		isNew, err := s.idempotency.MarkProcessed(ctx, transferIdemKey(req.IdempotencyKey), s.idemConfig.TTL)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !isNew {
			return nil, shared.ErrDuplicateRequest
		}
	}

	var result *TransferResult
	err := s.withOptimisticRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			source, err := repos.Accounts().FindByID(ctx, req.SourceID)
			if err != nil {
				return accountLookupErr(err)
			}
			dest, err := repos.Accounts().FindByID(ctx, req.DestinationID)
			if err != nil {
				return accountLookupErr(err)
			}

			// Debit leg first so insufficient funds aborts before any credit
			outMovement, err := s.ledger.Post(ctx, repos.Accounts(), repos.Movements(), treasury.PostParams{
				AccountID:    source.ID,
				Kind:         treasury.MovementKindTransferOut,
				Amount:       req.Amount,
				Concept:      fmt.Sprintf("Transfer to %s - %s", dest.Name, req.Concept),
				Counterparty: &dest.ID,
				Actor:        req.Actor,
			})
			if err != nil {
				return err
			}

			inMovement, err := s.ledger.Post(ctx, repos.Accounts(), repos.Movements(), treasury.PostParams{
				AccountID:    dest.ID,
				Kind:         treasury.MovementKindTransferIn,
				Amount:       req.Amount,
				Concept:      fmt.Sprintf("Transfer from %s - %s", source.Name, req.Concept),
				Counterparty: &source.ID,
				Actor:        req.Actor,
			})
			if err != nil {
				return err
			}

			result = &TransferResult{OutMovement: outMovement, InMovement: inMovement}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("source_id", req.SourceID.String()),
		zap.String("destination_id", req.DestinationID.String()),
		zap.Int64("amount", req.Amount.MinorUnits()),
	)
	return result, nil
}

func (s *TransferService) withOptimisticRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrentModification) {
			return err
		}
		s.logger.Debug("optimistic lock conflict, retrying transfer", zap.Int("attempt", attempt+1))
	}
	return shared.ErrConcurrentModification
}

func transferIdemKey(key string) string {
	return "transfer:" + key
}

func accountLookupErr(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrAccountNotFound
	}
	return err
}
