package models

import (
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// AccountModel is the GORM model for treasury accounts
type AccountModel struct {
	AggregateModel
	Name      string `gorm:"type:varchar(100);not null"`
	Kind      string `gorm:"type:varchar(20);not null"`
	MethodKey string `gorm:"type:varchar(50);index"`
	IsActive  bool   `gorm:"not null;default:true;index"`
	Balance   int64  `gorm:"not null;default:0"`
}

// TableName specifies the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts AccountModel to a domain Account
func (m *AccountModel) ToDomain() *treasury.Account {
	return &treasury.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Kind:              treasury.AccountKind(m.Kind),
		MethodKey:         m.MethodKey,
		IsActive:          m.IsActive,
		Balance:           m.Balance,
	}
}

// AccountModelFromDomain converts a domain Account to AccountModel
func AccountModelFromDomain(a *treasury.Account) *AccountModel {
	m := &AccountModel{
		Name:      a.Name,
		Kind:      a.Kind.String(),
		MethodKey: a.MethodKey,
		IsActive:  a.IsActive,
		Balance:   a.Balance,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// MovementModel is the GORM model for the append-only movement ledger
type MovementModel struct {
	BaseModel
	AccountID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_movements_account_created"`
	Kind                  string     `gorm:"type:varchar(20);not null"`
	Amount                int64      `gorm:"not null"`
	PreviousBalance       int64      `gorm:"not null"`
	NewBalance            int64      `gorm:"not null"`
	Concept               string     `gorm:"type:varchar(255);not null"`
	CounterpartyAccountID *uuid.UUID `gorm:"type:uuid"`
	ReferenceType         *string    `gorm:"type:varchar(20)"`
	ReferenceID           *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy             uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName specifies the table name for MovementModel
func (MovementModel) TableName() string {
	return "movements"
}

// ToDomain converts MovementModel to a domain Movement
func (m *MovementModel) ToDomain() *treasury.Movement {
	movement := &treasury.Movement{
		BaseEntity:            m.BaseModel.ToDomain(),
		AccountID:             m.AccountID,
		Kind:                  treasury.MovementKind(m.Kind),
		Amount:                m.Amount,
		PreviousBalance:       m.PreviousBalance,
		NewBalance:            m.NewBalance,
		Concept:               m.Concept,
		CounterpartyAccountID: m.CounterpartyAccountID,
		CreatedBy:             m.CreatedBy,
	}
	if m.ReferenceType != nil && m.ReferenceID != nil {
		movement.Reference = &treasury.Reference{
			Type: treasury.ReferenceType(*m.ReferenceType),
			ID:   *m.ReferenceID,
		}
	}
	return movement
}

// MovementModelFromDomain converts a domain Movement to MovementModel
func MovementModelFromDomain(movement *treasury.Movement) *MovementModel {
	m := &MovementModel{
		AccountID:             movement.AccountID,
		Kind:                  movement.Kind.String(),
		Amount:                movement.Amount,
		PreviousBalance:       movement.PreviousBalance,
		NewBalance:            movement.NewBalance,
		Concept:               movement.Concept,
		CounterpartyAccountID: movement.CounterpartyAccountID,
		CreatedBy:             movement.CreatedBy,
	}
	if movement.Reference != nil {
		refType := movement.Reference.Type.String()
		refID := movement.Reference.ID
		m.ReferenceType = &refType
		m.ReferenceID = &refID
	}
	m.FromDomainBaseEntity(movement.BaseEntity)
	return m
}
