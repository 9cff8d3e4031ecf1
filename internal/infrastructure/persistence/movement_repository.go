package persistence

import (
	"context"
	"errors"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/comercia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements treasury.MovementRepository using GORM.
// The ledger is append-only; there is deliberately no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement to the ledger
func (r *GormMovementRepository) Save(ctx context.Context, movement *treasury.Movement) error {
	model := models.MovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Movement, error) {
	var model models.MovementModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns movements for an account, newest first
func (r *GormMovementRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]treasury.Movement, error) {
	var movementModels []models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	movements := make([]treasury.Movement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements, nil
}

// SumSignedByAccount returns the signed sum of all movement amounts for an
// account. Credits count positive, debits negative. Used to audit that an
// account's balance equals the sum of its movements.
func (r *GormMovementRepository) SumSignedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.MovementModel{}).
		Select("SUM(CASE WHEN kind IN ('IN', 'TRANSFER_IN') THEN amount ELSE -amount END)").
		Where("account_id = ?", accountID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

var _ treasury.MovementRepository = (*GormMovementRepository)(nil)
