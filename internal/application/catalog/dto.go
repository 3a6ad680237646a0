package catalog

import (
	"time"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
)

// ProductSearchResult is a product hit from the sale screen's search box,
// enriched with the stock information the clerk needs before adding a line.
// Monetary amounts are decimal strings, never floats.
type ProductSearchResult struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Barcode          string `json:"barcode"`
	Category         string `json:"category"`
	DosageForm       string `json:"dosage_form"`
	SalePrice        string `json:"sale_price"`
	StockAvailable   int64  `json:"stock_available"`
	StockThreshold   int64  `json:"stock_threshold"`
	IsBelowThreshold bool   `json:"is_below_threshold"`
	HasExpiredStock  bool   `json:"has_expired_stock"`
	ExpiredStock     int64  `json:"expired_stock"`
}

// LotInfo describes one available lot in a product's stock detail
type LotInfo struct {
	ID                string `json:"id"`
	BatchNumber       string `json:"batch_number"`
	ExpirationDate    string `json:"expiration_date"`
	RemainingQuantity int64  `json:"remaining_quantity"`
	SalePrice         string `json:"sale_price"`
}

// ProductStockInfo is the detailed stock view for one product: available
// lots in FEFO order plus aggregate figures.
type ProductStockInfo struct {
	ProductID        string    `json:"product_id"`
	ProductName      string    `json:"product_name"`
	SalePrice        string    `json:"sale_price"`
	TotalAvailable   int64     `json:"total_available"`
	ExpiredStock     int64     `json:"expired_stock"`
	StockThreshold   int64     `json:"stock_threshold"`
	IsBelowThreshold bool      `json:"is_below_threshold"`
	AvailableLots    []LotInfo `json:"available_lots"`
}

// StockSnapshot is the cacheable per-product stock summary
type StockSnapshot struct {
	Available   int64  `json:"available"`
	Expired     int64  `json:"expired"`
	SalePrice   string `json:"sale_price"`
	RefreshedAt int64  `json:"refreshed_at"`
}

func toLotInfo(lot catalog.Lot) LotInfo {
	return LotInfo{
		ID:                lot.ID.String(),
		BatchNumber:       lot.DisplayName(),
		ExpirationDate:    lot.ExpirationDate.Format(time.DateOnly),
		RemainingQuantity: lot.RemainingQuantity,
		SalePrice:         lot.SalePrice.StringFixed(2),
	}
}
