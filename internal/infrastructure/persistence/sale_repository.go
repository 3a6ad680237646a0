package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements sales.SaleRepository using GORM. Sales are
// loaded and persisted as full aggregates: items with their lot usage, plus
// payments.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its items, lot usage and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items.LotsUsed").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns sales matching the filter with their items and payments
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Preload("Items.LotsUsed").
		Preload("Payments")
	query = r.applyFilters(query, filter)

	var saleModels []models.SaleModel
	if err := applyFilter(query, filter, "sale_date DESC").Find(&saleModels).Error; err != nil {
		return nil, err
	}

	result := make([]sales.Sale, len(saleModels))
	for i, model := range saleModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Count returns the number of sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	query = r.applyFilters(query, filter)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *GormSaleRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if dateFrom, ok := filter.Filters["date_from"]; ok {
		query = query.Where("sale_date >= ?", dateFrom)
	}
	if dateTo, ok := filter.Filters["date_to"]; ok {
		query = query.Where("sale_date < ?", dateTo)
	}
	return query
}

// Save persists the full aggregate
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Save(model).Error
}

// ReplaceContents deletes the sale's previous items, lot usage and payments,
// then persists the aggregate again. Used by the edit workflow after stock
// has been restored and the sale rebuilt.
func (r *GormSaleRepository) ReplaceContents(ctx context.Context, sale *sales.Sale) error {
	db := r.db.WithContext(ctx)

	var itemIDs []uuid.UUID
	if err := db.Model(&models.SaleItemModel{}).
		Where("sale_id = ?", sale.ID).
		Pluck("id", &itemIDs).Error; err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := db.Delete(&models.SaleItemLotModel{}, "sale_item_id IN ?", itemIDs).Error; err != nil {
			return err
		}
	}
	if err := db.Delete(&models.SaleItemModel{}, "sale_id = ?", sale.ID).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.PaymentModel{}, "sale_id = ?", sale.ID).Error; err != nil {
		return err
	}

	model := models.SaleModelFromDomain(sale)
	return db.Save(model).Error
}

// Delete removes a sale and its dependents
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	var itemIDs []uuid.UUID
	if err := db.Model(&models.SaleItemModel{}).
		Where("sale_id = ?", id).
		Pluck("id", &itemIDs).Error; err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := db.Delete(&models.SaleItemLotModel{}, "sale_item_id IN ?", itemIDs).Error; err != nil {
			return err
		}
	}
	if err := db.Delete(&models.SaleItemModel{}, "sale_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.PaymentModel{}, "sale_id = ?", id).Error; err != nil {
		return err
	}

	result := db.Delete(&models.SaleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// OutstandingBalanceByCustomer sums positive balances due across the
// customer's sales
func (r *GormSaleRepository) OutstandingBalanceByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("customer_id = ? AND balance_due > 0", customerID).
		Select("COALESCE(SUM(balance_due), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
