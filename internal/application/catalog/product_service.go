package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
)

const (
	// minSearchLength is the minimum query length for product search
	minSearchLength = 2
	// defaultSearchLimit caps search results for the sale screen
	defaultSearchLimit = 20
)

// StockSnapshotCache caches per-product stock summaries so the search
// endpoint does not recompute lot aggregates on every keystroke.
type StockSnapshotCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*StockSnapshot, bool)
	Set(ctx context.Context, productID uuid.UUID, snapshot StockSnapshot)
	Invalidate(ctx context.Context, productID uuid.UUID)
}

// ProductService handles product lookup for the sale screen
type ProductService struct {
	productRepo catalog.ProductRepository
	lotRepo     catalog.LotRepository
	stockCache  StockSnapshotCache
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. stockCache may be nil, in
// which case stock aggregates are always computed from the lot repository.
func NewProductService(productRepo catalog.ProductRepository, lotRepo catalog.LotRepository, stockCache StockSnapshotCache, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		lotRepo:     lotRepo,
		stockCache:  stockCache,
		logger:      logger,
	}
}

// Search finds products by name or barcode, returning stock-enriched hits.
// Queries shorter than two characters after trimming yield an empty result.
func (s *ProductService) Search(ctx context.Context, query string) ([]ProductSearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []ProductSearchResult{}, nil
	}

	products, err := s.productRepo.Search(ctx, query, defaultSearchLimit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]ProductSearchResult, 0, len(products))
	for _, product := range products {
		snapshot, err := s.stockSnapshot(ctx, product.ID, now)
		if err != nil {
			return nil, err
		}
		salePrice, _ := decimal.NewFromString(snapshot.SalePrice)
		results = append(results, ProductSearchResult{
			ID:               product.ID.String(),
			Name:             product.Name,
			Barcode:          product.Barcode,
			Category:         product.Category,
			DosageForm:       product.DosageForm,
			SalePrice:        salePrice.StringFixed(2),
			StockAvailable:   snapshot.Available,
			StockThreshold:   product.StockThreshold,
			IsBelowThreshold: product.IsBelowThreshold(snapshot.Available),
			HasExpiredStock:  snapshot.Expired > 0,
			ExpiredStock:     snapshot.Expired,
		})
	}
	return results, nil
}

// StockInfo returns the detailed stock view for a product: all available
// lots in FEFO order plus aggregates.
func (s *ProductService) StockInfo(ctx context.Context, productID uuid.UUID) (*ProductStockInfo, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lots, err := s.lotRepo.FindAvailable(ctx, productID, now)
	if err != nil {
		return nil, err
	}
	expired, err := s.lotRepo.CountExpired(ctx, productID, now)
	if err != nil {
		return nil, err
	}

	var totalAvailable int64
	lotInfos := make([]LotInfo, 0, len(lots))
	for _, lot := range lots {
		totalAvailable += lot.RemainingQuantity
		lotInfos = append(lotInfos, toLotInfo(lot))
	}

	salePrice, err := s.currentSalePrice(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &ProductStockInfo{
		ProductID:        product.ID.String(),
		ProductName:      product.Name,
		SalePrice:        salePrice.StringFixed(2),
		TotalAvailable:   totalAvailable,
		ExpiredStock:     expired,
		StockThreshold:   product.StockThreshold,
		IsBelowThreshold: product.IsBelowThreshold(totalAvailable),
		AvailableLots:    lotInfos,
	}, nil
}

// InvalidateStock drops the cached snapshot for a product, called after a
// sale commit changes lot quantities
func (s *ProductService) InvalidateStock(ctx context.Context, productID uuid.UUID) {
	if s.stockCache != nil {
		s.stockCache.Invalidate(ctx, productID)
	}
}

// stockSnapshot returns the cached stock summary for a product, computing
// and caching it on a miss.
func (s *ProductService) stockSnapshot(ctx context.Context, productID uuid.UUID, now time.Time) (*StockSnapshot, error) {
	if s.stockCache != nil {
		if snapshot, ok := s.stockCache.Get(ctx, productID); ok {
			return snapshot, nil
		}
	}

	available, err := s.lotRepo.CountAvailable(ctx, productID, now)
	if err != nil {
		return nil, err
	}
	expired, err := s.lotRepo.CountExpired(ctx, productID, now)
	if err != nil {
		return nil, err
	}
	salePrice, err := s.currentSalePrice(ctx, productID)
	if err != nil {
		return nil, err
	}

	snapshot := StockSnapshot{
		Available:   available,
		Expired:     expired,
		SalePrice:   salePrice.StringFixed(2),
		RefreshedAt: now.Unix(),
	}
	if s.stockCache != nil {
		s.stockCache.Set(ctx, productID, snapshot)
	}
	return &snapshot, nil
}

// currentSalePrice is the sale price of the most recently created active
// lot, zero when the product has no lots
func (s *ProductService) currentSalePrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	lot, err := s.lotRepo.FindLatestActive(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return lot.SalePrice, nil
}
