package persistence

import (
	"context"
	"errors"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleStore implements the settlement engine's SaleStore against the
// sales table. It participates in the same transaction as the settlement
// writes so cascaded status changes commit atomically with them.
type GormSaleStore struct {
	db *gorm.DB
}

// NewGormSaleStore creates a new GormSaleStore
func NewGormSaleStore(db *gorm.DB) *GormSaleStore {
	return &GormSaleStore{db: db}
}

// GetStatus returns a sale's current status
func (s *GormSaleStore) GetStatus(ctx context.Context, saleID uuid.UUID) (settlement.SaleStatus, error) {
	var model models.SaleModel
	if err := s.db.WithContext(ctx).
		First(&model, "id = ?", saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return settlement.SaleStatus(model.Status), nil
}

// UpdateStatus sets a sale's status
func (s *GormSaleStore) UpdateStatus(ctx context.Context, saleID uuid.UUID, status settlement.SaleStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ?", saleID).
		Update("status", status.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkReturned moves the sale to RETURNED with the guard in the UPDATE
// itself, so of two concurrent returns only the first writer succeeds; the
// second sees zero affected rows even after waiting on the row lock.
func (s *GormSaleStore) MarkReturned(ctx context.Context, saleID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ? AND status <> ?", saleID, settlement.SaleStatusReturned.String()).
		Update("status", settlement.SaleStatusReturned.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetStatus(ctx, saleID); errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound
		}
		return shared.ErrAlreadyReturned
	}
	return nil
}

var _ appsettlement.SaleStore = (*GormSaleStore)(nil)
