package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements sales.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	query = r.applySearch(query, filter)

	var customerModels []models.CustomerModel
	if err := applyFilter(query, filter, "name ASC").Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]sales.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	query = r.applySearch(query, filter)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *GormCustomerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR phone LIKE ?", pattern, pattern)
	}
	return query
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *sales.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a customer by ID
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ sales.CustomerRepository = (*GormCustomerRepository)(nil)
