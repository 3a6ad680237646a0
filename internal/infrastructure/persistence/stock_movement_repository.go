package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/infrastructure/persistence/models"
)

// GormStockMovementRepository implements catalog.StockMovementRepository
// using GORM. The movement journal is append-only; there is no update
// or delete path.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Record appends a movement to the journal
func (r *GormStockMovementRepository) Record(ctx context.Context, movement *catalog.StockMovement) error {
	model := models.StockMovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByLot returns the movements of a lot, newest first
func (r *GormStockMovementRepository) FindByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]catalog.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("lot_id = ?", lotID)
	return r.find(query, filter)
}

// FindByProduct returns the movements of a product, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	return r.find(query, filter)
}

func (r *GormStockMovementRepository) find(query *gorm.DB, filter shared.Filter) ([]catalog.StockMovement, error) {
	var movementModels []models.StockMovementModel
	if err := applyFilter(query, filter, "created_at DESC").Find(&movementModels).Error; err != nil {
		return nil, err
	}

	movements := make([]catalog.StockMovement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements, nil
}

var _ catalog.StockMovementRepository = (*GormStockMovementRepository)(nil)
