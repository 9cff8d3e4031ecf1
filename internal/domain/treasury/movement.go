package treasury

import (
	"time"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MovementKind represents the kind of a ledger movement
type MovementKind string

const (
	// MovementKindIn represents money entering the account
	MovementKindIn MovementKind = "IN"
	// MovementKindOut represents money leaving the account
	MovementKindOut MovementKind = "OUT"
	// MovementKindTransferIn represents the receiving leg of a transfer
	MovementKindTransferIn MovementKind = "TRANSFER_IN"
	// MovementKindTransferOut represents the sending leg of a transfer
	MovementKindTransferOut MovementKind = "TRANSFER_OUT"
)

// IsValid checks if the kind is a valid MovementKind
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindIn, MovementKindOut, MovementKindTransferIn, MovementKindTransferOut:
		return true
	}
	return false
}

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsDebit returns true if this kind decreases the account balance
func (k MovementKind) IsDebit() bool {
	return k == MovementKindOut || k == MovementKindTransferOut
}

// IsCredit returns true if this kind increases the account balance
func (k MovementKind) IsCredit() bool {
	return k == MovementKindIn || k == MovementKindTransferIn
}

// IsTransferLeg returns true if this movement is one leg of a transfer
func (k MovementKind) IsTransferLeg() bool {
	return k == MovementKindTransferIn || k == MovementKindTransferOut
}

// ReferenceType identifies the kind of domain event a movement originates from
type ReferenceType string

const (
	ReferenceTypeSale    ReferenceType = "SALE"
	ReferenceTypeExpense ReferenceType = "EXPENSE"
	ReferenceTypePayment ReferenceType = "PAYMENT"
	ReferenceTypeReturn  ReferenceType = "RETURN"
)

// IsValid checks if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypeSale, ReferenceTypeExpense, ReferenceTypePayment, ReferenceTypeReturn:
		return true
	}
	return false
}

// String returns the string representation of ReferenceType
func (t ReferenceType) String() string {
	return string(t)
}

// Reference points a movement at its originating domain event
type Reference struct {
	Type ReferenceType
	ID   uuid.UUID
}

// Movement represents an immutable ledger entry explaining one balance
// change. Movements are never updated or deleted; corrections are new
// movements. The previous/new balance pair is computed by the account at
// commit time, so no two movements on the same account can start from a
// stale snapshot.
type Movement struct {
	shared.BaseEntity
	AccountID             uuid.UUID
	Kind                  MovementKind
	Amount                int64 // Smallest currency unit, always positive
	PreviousBalance       int64
	NewBalance            int64
	Concept               string
	CounterpartyAccountID *uuid.UUID // Set for transfer legs
	Reference             *Reference
	CreatedBy             uuid.UUID
}

// NewMovement creates a new movement from a balance change already applied
// to the owning account. Invariant: newBalance = previousBalance +/- amount
// consistent with kind.
func NewMovement(
	accountID uuid.UUID,
	kind MovementKind,
	amount valueobject.Money,
	previousBalance valueobject.Money,
	newBalance valueobject.Money,
	concept string,
	actor uuid.UUID,
) (*Movement, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Movement kind is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if concept == "" {
		return nil, shared.NewDomainError("INVALID_CONCEPT", "Movement concept cannot be empty")
	}
	if actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	expected := previousBalance
	if kind.IsDebit() {
		expected = expected.Sub(amount)
	} else {
		expected = expected.Add(amount)
	}
	if !expected.Equals(newBalance) {
		return nil, shared.NewDomainError("BALANCE_MISMATCH", "New balance is inconsistent with previous balance and amount")
	}

	return &Movement{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       accountID,
		Kind:            kind,
		Amount:          amount.MinorUnits(),
		PreviousBalance: previousBalance.MinorUnits(),
		NewBalance:      newBalance.MinorUnits(),
		Concept:         concept,
		CreatedBy:       actor,
	}, nil
}

// WithCounterparty tags the movement as one leg of a transfer
func (m *Movement) WithCounterparty(accountID uuid.UUID) *Movement {
	m.CounterpartyAccountID = &accountID
	return m
}

// WithReference links the movement to its originating domain event
func (m *Movement) WithReference(refType ReferenceType, refID uuid.UUID) *Movement {
	m.Reference = &Reference{Type: refType, ID: refID}
	return m
}

// GetAmountMoney returns the amount as Money
func (m *Movement) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(m.Amount)
}

// SignedAmount returns the amount with the sign implied by the kind
func (m *Movement) SignedAmount() int64 {
	if m.Kind.IsDebit() {
		return -m.Amount
	}
	return m.Amount
}

// OccurredAt returns when the movement was committed
func (m *Movement) OccurredAt() time.Time {
	return m.CreatedAt
}
