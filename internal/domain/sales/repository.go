package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// SaleRepository provides access to sales with their items, lot usage and
// payments
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save persists the full aggregate (items, lots used, payments)
	Save(ctx context.Context, sale *Sale) error
	// ReplaceContents deletes the sale's previous items and payments before
	// persisting the new ones; used by the edit workflow
	ReplaceContents(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	// OutstandingBalanceByCustomer sums positive balances due across the
	// customer's sales
	OutstandingBalanceByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// CustomerRepository provides access to customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
