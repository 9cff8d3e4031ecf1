package persistence

import (
	"context"
	"errors"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayableRepository implements settlement.PayableRepository using GORM
type GormPayableRepository struct {
	db *gorm.DB
}

// NewGormPayableRepository creates a new GormPayableRepository
func NewGormPayableRepository(db *gorm.DB) *GormPayableRepository {
	return &GormPayableRepository{db: db}
}

// FindByID finds a payable by its ID
func (r *GormPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Payable, error) {
	var model models.PayableModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExpense finds the payable opened for an expense, if any
func (r *GormPayableRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) (*settlement.Payable, error) {
	var model models.PayableModel
	if err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySupplier returns a supplier's payables, optionally filtered by status
func (r *GormPayableRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Payable, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PayableModel{}).
		Where("supplier_id = ?", supplierID)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	var payableModels []models.PayableModel
	if err := query.Order("created_at DESC").Find(&payableModels).Error; err != nil {
		return nil, err
	}
	payables := make([]settlement.Payable, len(payableModels))
	for i, model := range payableModels {
		payables[i] = *model.ToDomain()
	}
	return payables, nil
}

// Save creates or updates a payable
func (r *GormPayableRepository) Save(ctx context.Context, payable *settlement.Payable) error {
	model := models.PayableModelFromDomain(payable)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates a payable with an optimistic version check
func (r *GormPayableRepository) SaveWithLock(ctx context.Context, payable *settlement.Payable) error {
	model := models.PayableModelFromDomain(payable)
	result := r.db.WithContext(ctx).
		Model(&models.PayableModel{}).
		Where("id = ? AND version = ?", payable.ID, payable.Version-1).
		Updates(map[string]any{
			"paid_amount":      model.PaidAmount,
			"remaining_amount": model.RemainingAmount,
			"status":           model.Status,
			"notes":            model.Notes,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

var _ settlement.PayableRepository = (*GormPayableRepository)(nil)
