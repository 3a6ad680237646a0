package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/infrastructure/persistence/models"
)

// GormLotRepository implements catalog.LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// availableScope restricts a query to eligible lots: active, with stock,
// expiring strictly after now. A lot is unsellable on its expiration date.
func availableScope(query *gorm.DB, productID uuid.UUID, now time.Time) *gorm.DB {
	return query.
		Where("product_id = ?", productID).
		Where("is_active = ?", true).
		Where("remaining_quantity > 0").
		Where("expiration_date > ?", now)
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Lot, error) {
	var model models.LotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAvailable returns the eligible lots for a product in FEFO order
func (r *GormLotRepository) FindAvailable(ctx context.Context, productID uuid.UUID, now time.Time) ([]catalog.Lot, error) {
	return r.findAvailable(r.db.WithContext(ctx), productID, now)
}

// FindAvailableForUpdate returns the eligible lots for a product in FEFO
// order with SELECT ... FOR UPDATE row locks. Must run inside a
// transaction; the locks hold until it commits or rolls back.
func (r *GormLotRepository) FindAvailableForUpdate(ctx context.Context, productID uuid.UUID, now time.Time) ([]catalog.Lot, error) {
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findAvailable(query, productID, now)
}

func (r *GormLotRepository) findAvailable(query *gorm.DB, productID uuid.UUID, now time.Time) ([]catalog.Lot, error) {
	var lotModels []models.LotModel
	if err := availableScope(query, productID, now).
		Order("expiration_date ASC, created_at ASC").
		Find(&lotModels).Error; err != nil {
		return nil, err
	}

	lots := make([]catalog.Lot, len(lotModels))
	for i, model := range lotModels {
		lots[i] = *model.ToDomain()
	}
	return lots, nil
}

// FindByProduct returns all lots of a product, newest first
func (r *GormLotRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Lot, error) {
	var lotModels []models.LotModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&lotModels).Error; err != nil {
		return nil, err
	}

	lots := make([]catalog.Lot, len(lotModels))
	for i, model := range lotModels {
		lots[i] = *model.ToDomain()
	}
	return lots, nil
}

// CountAvailable sums remaining quantity over eligible lots
func (r *GormLotRepository) CountAvailable(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error) {
	var total int64
	err := availableScope(r.db.WithContext(ctx).Model(&models.LotModel{}), productID, now).
		Select("COALESCE(SUM(remaining_quantity), 0)").
		Scan(&total).Error
	return total, err
}

// CountExpired sums remaining quantity over expired, still-active lots
func (r *GormLotRepository) CountExpired(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.LotModel{}).
		Where("product_id = ?", productID).
		Where("is_active = ?", true).
		Where("remaining_quantity > 0").
		Where("expiration_date <= ?", now).
		Select("COALESCE(SUM(remaining_quantity), 0)").
		Scan(&total).Error
	return total, err
}

// FindLatestActive returns the most recently created active lot of a
// product, used to derive the displayed sale price
func (r *GormLotRepository) FindLatestActive(ctx context.Context, productID uuid.UUID) (*catalog.Lot, error) {
	var model models.LotModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a lot
func (r *GormLotRepository) Save(ctx context.Context, lot *catalog.Lot) error {
	model := models.LotModelFromDomain(lot)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll creates or updates multiple lots
func (r *GormLotRepository) SaveAll(ctx context.Context, lots []*catalog.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	lotModels := make([]*models.LotModel, len(lots))
	for i, lot := range lots {
		lotModels[i] = models.LotModelFromDomain(lot)
	}
	return r.db.WithContext(ctx).Save(lotModels).Error
}

// Restore adds quantity back to a lot with a relative UPDATE. The database
// applies the increment against the current row value, so a concurrent
// transaction that decremented the lot under FOR UPDATE is never overwritten
// by a stale snapshot.
func (r *GormLotRepository) Restore(ctx context.Context, id uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidQuantity
	}
	result := r.db.WithContext(ctx).Model(&models.LotModel{}).
		Where("id = ?", id).
		Update("remaining_quantity", gorm.Expr("remaining_quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.LotRepository = (*GormLotRepository)(nil)
