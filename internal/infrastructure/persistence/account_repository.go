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

// GormAccountRepository implements treasury.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMethodKey finds the active account mapped to a payment method name
func (r *GormAccountRepository) FindByMethodKey(ctx context.Context, methodKey string) (*treasury.Account, error) {
	if methodKey == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("method_key = ? AND is_active = ?", methodKey, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all accounts, active first
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]treasury.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Order("is_active DESC, name ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]treasury.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *treasury.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates an account with an optimistic version check. The
// update only lands if the stored version still matches the version the
// aggregate was loaded with; otherwise another writer got there first.
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *treasury.Account) error {
	model := models.AccountModelFromDomain(account)
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]any{
			"name":       model.Name,
			"kind":       model.Kind,
			"method_key": model.MethodKey,
			"is_active":  model.IsActive,
			"balance":    model.Balance,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

var _ treasury.AccountRepository = (*GormAccountRepository)(nil)
