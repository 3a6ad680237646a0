package catalog

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// LotAllocation represents the quantity taken from a single lot together
// with the lot's sale price at allocation time.
type LotAllocation struct {
	LotID          uuid.UUID
	BatchNumber    string
	ExpirationDate time.Time
	QuantityTaken  int64
	UnitPrice      decimal.Decimal
	RemainingInLot int64 // Remaining quantity before this allocation is committed
}

// LineTotal returns the exact price contribution of this allocation entry
func (a LotAllocation) LineTotal() decimal.Decimal {
	return a.UnitPrice.Mul(decimal.NewFromInt(a.QuantityTaken))
}

// AllocationResult is the outcome of allocating a requested quantity across
// a product's lots. TotalPrice is always the exact sum of per-lot
// contributions; it is never reconstructed from the rounded AveragePrice.
type AllocationResult struct {
	ProductID         uuid.UUID
	RequestedQuantity int64
	LotsUsed          []LotAllocation
	TotalAllocated    int64
	TotalAvailable    int64
	TotalPrice        decimal.Decimal
	AveragePrice      decimal.Decimal // Blended unit price, rounded to 2dp; zero when not fully satisfied
	FullySatisfied    bool
}

// Allocate selects lots for the requested quantity under the FEFO policy and
// computes the blended unit price.
//
// Lots are consumed in ascending expiration date order, ties broken by
// ascending creation time. The caller supplies the eligibility snapshot
// (active, unexpired, with remaining stock); the allocator re-sorts it so
// the result is deterministic regardless of snapshot order, but performs no
// filtering of its own.
//
// When total available stock is short of the request the best partial
// allocation is returned with FullySatisfied=false; insufficient stock is a
// flagged result, not an error. The only error condition is a non-positive
// requested quantity.
//
// Allocate never mutates the input lots; committing the allocation (lot
// decrements, traceability records) belongs to the sale-commit transaction.
func Allocate(productID uuid.UUID, requestedQuantity int64, lots []Lot) (*AllocationResult, error) {
	if requestedQuantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}

	// FEFO order: expiration date ascending, then creation time ascending.
	sorted := make([]Lot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExpirationDate.Equal(sorted[j].ExpirationDate) {
			return sorted[i].ExpirationDate.Before(sorted[j].ExpirationDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	result := &AllocationResult{
		ProductID:         productID,
		RequestedQuantity: requestedQuantity,
		LotsUsed:          make([]LotAllocation, 0, len(sorted)),
		TotalPrice:        decimal.Zero,
		AveragePrice:      decimal.Zero,
	}

	needed := requestedQuantity
	for _, lot := range sorted {
		result.TotalAvailable += lot.RemainingQuantity
		if needed <= 0 {
			continue
		}
		take := min(lot.RemainingQuantity, needed)
		if take <= 0 {
			continue
		}

		alloc := LotAllocation{
			LotID:          lot.ID,
			BatchNumber:    lot.DisplayName(),
			ExpirationDate: lot.ExpirationDate,
			QuantityTaken:  take,
			UnitPrice:      lot.SalePrice,
			RemainingInLot: lot.RemainingQuantity,
		}
		result.LotsUsed = append(result.LotsUsed, alloc)
		result.TotalAllocated += take
		result.TotalPrice = result.TotalPrice.Add(alloc.LineTotal())
		needed -= take
	}

	result.FullySatisfied = needed == 0
	if result.FullySatisfied {
		// Round half up: decimal.Round rounds half away from zero, which is
		// half up for the non-negative currency amounts handled here.
		result.AveragePrice = result.TotalPrice.
			Div(decimal.NewFromInt(requestedQuantity)).
			Round(2)
	}

	return result, nil
}

// ShortBy returns how many units the allocation is short of the request
func (r *AllocationResult) ShortBy() int64 {
	return r.RequestedQuantity - r.TotalAllocated
}
