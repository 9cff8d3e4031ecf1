package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PostParams describes one movement to post against an account
type PostParams struct {
	AccountID    uuid.UUID
	Kind         MovementKind
	Amount       valueobject.Money
	Concept      string
	Counterparty *uuid.UUID
	Reference    *Reference
	Actor        uuid.UUID
}

// LedgerDomainService posts movements. It is the single place where an
// account balance and the movement explaining it are written together:
// the account is re-read inside the caller's transaction, the balance
// change is applied through the aggregate, and the account is saved with
// an optimistic version check so a stale previous_balance can never be
// committed. Callers run Post inside a transaction scope.
type LedgerDomainService struct{}

// NewLedgerDomainService creates a new LedgerDomainService
func NewLedgerDomainService() *LedgerDomainService {
	return &LedgerDomainService{}
}

// Post reads the account, applies the balance change and appends the
// movement. Returns the committed movement carrying the authoritative
// previous/new balance pair.
func (s *LedgerDomainService) Post(
	ctx context.Context,
	accounts AccountRepository,
	movements MovementRepository,
	p PostParams,
) (*Movement, error) {
	if !p.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Movement kind is not valid")
	}

	account, err := accounts.FindByID(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	previous, next, err := account.Apply(p.Kind, p.Amount)
	if err != nil {
		return nil, err
	}

	movement, err := NewMovement(account.ID, p.Kind, p.Amount, previous, next, p.Concept, p.Actor)
	if err != nil {
		return nil, err
	}
	if p.Counterparty != nil {
		movement.WithCounterparty(*p.Counterparty)
	}
	if p.Reference != nil {
		movement.WithReference(p.Reference.Type, p.Reference.ID)
	}

	if err := accounts.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := movements.Save(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to append movement: %w", err)
	}

	return movement, nil
}
