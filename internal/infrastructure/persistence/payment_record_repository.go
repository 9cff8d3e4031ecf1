package persistence

import (
	"context"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements settlement.PaymentRecordRepository
// using GORM. Payment records are append-only.
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// Save appends a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *settlement.PaymentRecord) error {
	model := models.PaymentRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByReference returns all payment records applied to a receivable or
// payable, oldest first
func (r *GormPaymentRecordRepository) FindByReference(ctx context.Context, settlementType settlement.SettlementType, referenceID uuid.UUID) ([]settlement.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("type = ? AND reference_id = ?", settlementType.String(), referenceID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]settlement.PaymentRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

var _ settlement.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
