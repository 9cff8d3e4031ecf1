package models

import (
	"time"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/google/uuid"
)

// ReceivableModel is the GORM model for accounts receivable
type ReceivableModel struct {
	AggregateModel
	ClientID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SaleID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount     int64      `gorm:"not null"`
	PaidAmount      int64      `gorm:"not null;default:0"`
	RemainingAmount int64      `gorm:"not null"`
	DueDate         *time.Time `gorm:"index"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	Notes           string     `gorm:"type:text"`
	ClosedByReturn  bool       `gorm:"not null;default:false"`
}

// TableName specifies the table name for ReceivableModel
func (ReceivableModel) TableName() string {
	return "receivables"
}

// ToDomain converts ReceivableModel to a domain Receivable
func (m *ReceivableModel) ToDomain() *settlement.Receivable {
	return &settlement.Receivable{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientID:          m.ClientID,
		SaleID:            m.SaleID,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		RemainingAmount:   m.RemainingAmount,
		DueDate:           m.DueDate,
		Status:            settlement.DebtStatus(m.Status),
		Notes:             m.Notes,
		ClosedByReturn:    m.ClosedByReturn,
	}
}

// ReceivableModelFromDomain converts a domain Receivable to ReceivableModel
func ReceivableModelFromDomain(r *settlement.Receivable) *ReceivableModel {
	m := &ReceivableModel{
		ClientID:        r.ClientID,
		SaleID:          r.SaleID,
		TotalAmount:     r.TotalAmount,
		PaidAmount:      r.PaidAmount,
		RemainingAmount: r.RemainingAmount,
		DueDate:         r.DueDate,
		Status:          r.Status.String(),
		Notes:           r.Notes,
		ClosedByReturn:  r.ClosedByReturn,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// PayableModel is the GORM model for accounts payable
type PayableModel struct {
	AggregateModel
	SupplierID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ExpenseID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount     int64      `gorm:"not null"`
	PaidAmount      int64      `gorm:"not null;default:0"`
	RemainingAmount int64      `gorm:"not null"`
	DueDate         *time.Time `gorm:"index"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	Notes           string     `gorm:"type:text"`
}

// TableName specifies the table name for PayableModel
func (PayableModel) TableName() string {
	return "payables"
}

// ToDomain converts PayableModel to a domain Payable
func (m *PayableModel) ToDomain() *settlement.Payable {
	return &settlement.Payable{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SupplierID:        m.SupplierID,
		ExpenseID:         m.ExpenseID,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		RemainingAmount:   m.RemainingAmount,
		DueDate:           m.DueDate,
		Status:            settlement.DebtStatus(m.Status),
		Notes:             m.Notes,
	}
}

// PayableModelFromDomain converts a domain Payable to PayableModel
func PayableModelFromDomain(p *settlement.Payable) *PayableModel {
	m := &PayableModel{
		SupplierID:      p.SupplierID,
		ExpenseID:       p.ExpenseID,
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount,
		DueDate:         p.DueDate,
		Status:          p.Status.String(),
		Notes:           p.Notes,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// PaymentRecordModel is the GORM model for the append-only payment log
type PaymentRecordModel struct {
	BaseModel
	Type             string     `gorm:"type:varchar(20);not null;index:idx_payment_records_reference"`
	ReferenceID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_payment_records_reference"`
	Amount           int64      `gorm:"not null"`
	Method           string     `gorm:"type:varchar(50);not null"`
	PaymentAccountID *uuid.UUID `gorm:"type:uuid"`
	Notes            string     `gorm:"type:text"`
	RegisteredBy     uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName specifies the table name for PaymentRecordModel
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts PaymentRecordModel to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() *settlement.PaymentRecord {
	return &settlement.PaymentRecord{
		BaseEntity:       m.BaseModel.ToDomain(),
		Type:             settlement.SettlementType(m.Type),
		ReferenceID:      m.ReferenceID,
		Amount:           m.Amount,
		Method:           m.Method,
		PaymentAccountID: m.PaymentAccountID,
		Notes:            m.Notes,
		RegisteredBy:     m.RegisteredBy,
	}
}

// PaymentRecordModelFromDomain converts a domain PaymentRecord to PaymentRecordModel
func PaymentRecordModelFromDomain(r *settlement.PaymentRecord) *PaymentRecordModel {
	m := &PaymentRecordModel{
		Type:             r.Type.String(),
		ReferenceID:      r.ReferenceID,
		Amount:           r.Amount,
		Method:           r.Method,
		PaymentAccountID: r.PaymentAccountID,
		Notes:            r.Notes,
		RegisteredBy:     r.RegisteredBy,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// SaleModel is the GORM model for the sale store the settlement engine
// drives status updates against
type SaleModel struct {
	BaseModel
	Status string `gorm:"type:varchar(20);not null;index"`
}

// TableName specifies the table name for SaleModel
func (SaleModel) TableName() string {
	return "sales"
}
