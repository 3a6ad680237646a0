package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// Lot represents a batch of product units purchased together, sharing a
// purchase price, sale price and expiration date. Stock is consumed from
// lots following the FEFO policy (see allocation.go).
type Lot struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	PurchaseOrderRef  string // Reference to the originating purchase order
	BatchNumber       string
	Quantity          int64 // Initial quantity received
	RemainingQuantity int64
	ExpirationDate    time.Time
	PurchasePrice     decimal.Decimal
	SalePrice         decimal.Decimal
	IsActive          bool
}

// NewLot creates a new lot. RemainingQuantity starts equal to the initial
// quantity received.
func NewLot(
	productID uuid.UUID,
	purchaseOrderRef string,
	batchNumber string,
	quantity int64,
	expirationDate time.Time,
	purchasePrice, salePrice decimal.Decimal,
) (*Lot, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial lot quantity must be positive")
	}
	if purchasePrice.IsNegative() || salePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Lot prices cannot be negative")
	}
	return &Lot{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		PurchaseOrderRef:  purchaseOrderRef,
		BatchNumber:       batchNumber,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		ExpirationDate:    expirationDate,
		PurchasePrice:     purchasePrice,
		SalePrice:         salePrice,
		IsActive:          true,
	}, nil
}

// DisplayName returns the batch number, falling back to the lot ID
func (l *Lot) DisplayName() string {
	if l.BatchNumber != "" {
		return l.BatchNumber
	}
	return fmt.Sprintf("Lot #%s", l.ID)
}

// IsExpired returns true if the lot's expiration date has passed
func (l *Lot) IsExpired(now time.Time) bool {
	return !l.ExpirationDate.After(now)
}

// IsExhausted returns true if the lot has no remaining stock
func (l *Lot) IsExhausted() bool {
	return l.RemainingQuantity == 0
}

// IsAvailable returns true if the lot can be sold from
func (l *Lot) IsAvailable(now time.Time) bool {
	return l.IsActive && !l.IsExpired(now) && l.RemainingQuantity > 0
}

// Adjust changes the remaining quantity by delta (negative for outbound).
// The remaining quantity can never go below zero or above the initial
// quantity.
func (l *Lot) Adjust(delta int64) error {
	next := l.RemainingQuantity + delta
	if next < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient quantity in lot %s: remaining %d, requested %d",
				l.DisplayName(), l.RemainingQuantity, -delta))
	}
	if next > l.Quantity {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Remaining quantity cannot exceed initial quantity %d", l.Quantity))
	}
	l.RemainingQuantity = next
	l.Touch()
	return nil
}

// Deactivate removes the lot from sale without touching its stock
func (l *Lot) Deactivate() {
	l.IsActive = false
	l.Touch()
}
