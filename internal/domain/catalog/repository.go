package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// ProductRepository provides access to products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	// Search matches products by name or barcode substring
	Search(ctx context.Context, query string, limit int) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LotRepository provides access to inventory lots
type LotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)
	// FindAvailable returns the eligible lots for a product (active,
	// expiring after now, with remaining stock) in FEFO order.
	FindAvailable(ctx context.Context, productID uuid.UUID, now time.Time) ([]Lot, error)
	// FindAvailableForUpdate is FindAvailable with row locks held for the
	// duration of the surrounding transaction. Callers re-allocate against
	// this locked snapshot before decrementing stock.
	FindAvailableForUpdate(ctx context.Context, productID uuid.UUID, now time.Time) ([]Lot, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Lot, error)
	// CountAvailable sums remaining quantity over eligible lots
	CountAvailable(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error)
	// CountExpired sums remaining quantity over expired, still-active lots
	CountExpired(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error)
	// FindLatestActive returns the most recently created active lot, used to
	// derive the product's displayed sale price
	FindLatestActive(ctx context.Context, productID uuid.UUID) (*Lot, error)
	Save(ctx context.Context, lot *Lot) error
	SaveAll(ctx context.Context, lots []*Lot) error
	// Restore returns quantity to a lot as a single relative increment
	// applied by the database, so it composes with concurrent locked
	// decrements instead of overwriting them.
	Restore(ctx context.Context, id uuid.UUID, quantity int64) error
}

// StockMovementRepository records lot-level stock movements (append only)
type StockMovementRepository interface {
	Record(ctx context.Context, movement *StockMovement) error
	FindByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
}
