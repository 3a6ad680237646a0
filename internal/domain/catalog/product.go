package catalog

import (
	"strings"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// Product represents a pharmacy product. Prices and stock live on the
// product's lots; the product itself carries identity and alert thresholds.
type Product struct {
	shared.BaseEntity
	Name           string
	Barcode        string
	Category       string
	DosageForm     string
	StockThreshold int64 // Alert threshold for low stock
	SupplierName   string
	Notes          string
}

// NewProduct creates a new product
func NewProduct(name, barcode, category, dosageForm string) (*Product, error) {
	name = strings.TrimSpace(name)
	barcode = strings.TrimSpace(barcode)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product barcode is required")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Barcode:    barcode,
		Category:   category,
		DosageForm: dosageForm,
	}, nil
}

// IsBelowThreshold returns true if the given available stock is at or below
// the product's alert threshold
func (p *Product) IsBelowThreshold(availableStock int64) bool {
	return availableStock <= p.StockThreshold
}

// SetThreshold updates the low-stock alert threshold
func (p *Product) SetThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Stock threshold cannot be negative")
	}
	p.StockThreshold = threshold
	p.Touch()
	return nil
}
