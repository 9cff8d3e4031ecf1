package settlement

import (
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SettlementType distinguishes which side of the books a payment settles
type SettlementType string

const (
	SettlementTypeReceivable SettlementType = "RECEIVABLE" // Cash arriving from a client
	SettlementTypePayable    SettlementType = "PAYABLE"    // Cash leaving toward a supplier
)

// IsValid checks if the settlement type is valid
func (t SettlementType) IsValid() bool {
	return t == SettlementTypeReceivable || t == SettlementTypePayable
}

// String returns the string representation of SettlementType
func (t SettlementType) String() string {
	return string(t)
}

// PaymentRecord is an immutable record of money applied against exactly one
// receivable or payable. The sum of payment records for a debt always equals
// its paid amount. PaymentAccountID is nil when the payment method had no
// mapped cash account (documented quirk: the payment is still recorded, the
// ledger movement is skipped and surfaced as a warning).
type PaymentRecord struct {
	shared.BaseEntity
	Type             SettlementType
	ReferenceID      uuid.UUID // Receivable or payable ID
	Amount           int64     // Smallest currency unit
	Method           string
	PaymentAccountID *uuid.UUID
	Notes            string
	RegisteredBy     uuid.UUID
}

// NewPaymentRecord creates a new payment record
func NewPaymentRecord(
	settlementType SettlementType,
	referenceID uuid.UUID,
	amount valueobject.Money,
	method string,
	notes string,
	registeredBy uuid.UUID,
) (*PaymentRecord, error) {
	if !settlementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT_TYPE", "Settlement type is not valid")
	}
	if referenceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.ErrInvalidPaymentAmount.Code, "Payment amount must be positive")
	}
	if method == "" {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method cannot be empty")
	}
	if registeredBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Registered-by cannot be empty")
	}

	return &PaymentRecord{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         settlementType,
		ReferenceID:  referenceID,
		Amount:       amount.MinorUnits(),
		Method:       method,
		Notes:        notes,
		RegisteredBy: registeredBy,
	}, nil
}

// WithPaymentAccount links the record to the cash account that received or
// paid the money
func (p *PaymentRecord) WithPaymentAccount(accountID uuid.UUID) *PaymentRecord {
	p.PaymentAccountID = &accountID
	return p
}

// GetAmountMoney returns the amount as Money
func (p *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.Amount)
}
