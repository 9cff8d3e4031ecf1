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

// GormReceivableRepository implements settlement.ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

// FindByID finds a receivable by its ID
func (r *GormReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale finds the receivable opened for a sale, if any
func (r *GormReceivableRepository) FindBySale(ctx context.Context, saleID uuid.UUID) (*settlement.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient returns a client's receivables, optionally filtered by status
func (r *GormReceivableRepository) FindByClient(ctx context.Context, clientID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Receivable, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Where("client_id = ?", clientID)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	var receivableModels []models.ReceivableModel
	if err := query.Order("created_at DESC").Find(&receivableModels).Error; err != nil {
		return nil, err
	}
	receivables := make([]settlement.Receivable, len(receivableModels))
	for i, model := range receivableModels {
		receivables[i] = *model.ToDomain()
	}
	return receivables, nil
}

// Save creates or updates a receivable
func (r *GormReceivableRepository) Save(ctx context.Context, receivable *settlement.Receivable) error {
	model := models.ReceivableModelFromDomain(receivable)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates a receivable with an optimistic version check
func (r *GormReceivableRepository) SaveWithLock(ctx context.Context, receivable *settlement.Receivable) error {
	model := models.ReceivableModelFromDomain(receivable)
	result := r.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Where("id = ? AND version = ?", receivable.ID, receivable.Version-1).
		Updates(map[string]any{
			"paid_amount":      model.PaidAmount,
			"remaining_amount": model.RemainingAmount,
			"status":           model.Status,
			"notes":            model.Notes,
			"closed_by_return": model.ClosedByReturn,
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

var _ settlement.ReceivableRepository = (*GormReceivableRepository)(nil)
