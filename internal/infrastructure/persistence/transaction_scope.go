package persistence

import (
	"context"

	"gorm.io/gorm"

	appsales "github.com/pharmacy-pos/backend/internal/application/sales"
	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/sales"
)

// GormTransactionScope implements appsales.TransactionScope using GORM
// transactions. Every repository handed to the callback is bound to the
// same *gorm.DB transaction, so lot locks taken via FindAvailableForUpdate
// hold until the scope commits or rolls back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. A returned error rolls the
// transaction back; nil commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LotRepo() catalog.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() catalog.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() sales.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

var (
	_ appsales.TransactionScope          = (*GormTransactionScope)(nil)
	_ appsales.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
