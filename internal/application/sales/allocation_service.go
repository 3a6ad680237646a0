package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// AllocationService answers the sale screen's "can I sell N of this?"
// question: it runs the FEFO allocation against current stock and returns
// the lot breakdown with the blended price. The preview is advisory; the
// sale commit re-allocates under row locks.
type AllocationService struct {
	productRepo catalog.ProductRepository
	lotRepo     catalog.LotRepository
	logger      *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(productRepo catalog.ProductRepository, lotRepo catalog.LotRepository, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		productRepo: productRepo,
		lotRepo:     lotRepo,
		logger:      logger,
	}
}

// ValidateItem previews the FEFO allocation for a requested quantity of a
// product. Insufficient stock yields Valid=false with the shortfall, not an
// error; unknown products and non-positive quantities return domain errors.
func (s *AllocationService) ValidateItem(ctx context.Context, req ValidateItemRequest) (*ValidateItemResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid product ID")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	lots, err := s.lotRepo.FindAvailable(ctx, productID, time.Now())
	if err != nil {
		return nil, err
	}

	result, err := catalog.Allocate(productID, req.Quantity, lots)
	if err != nil {
		return nil, err
	}

	response := &ValidateItemResponse{
		Valid:             result.FullySatisfied,
		ProductID:         product.ID.String(),
		ProductName:       product.Name,
		RequestedQuantity: result.RequestedQuantity,
		AvailableQuantity: result.TotalAvailable,
		Lots:              make([]AllocationLine, 0, len(result.LotsUsed)),
		TotalPrice:        result.TotalPrice.StringFixed(2),
		AveragePrice:      result.AveragePrice.StringFixed(2),
	}
	for _, allocation := range result.LotsUsed {
		response.Lots = append(response.Lots, toAllocationLine(allocation))
	}

	if !result.FullySatisfied {
		response.ShortBy = result.ShortBy()
		response.Message = fmt.Sprintf(
			"Insufficient stock for %s: %d available, %d requested",
			product.Name, result.TotalAvailable, result.RequestedQuantity,
		)
		s.logger.Debug("item validation rejected for insufficient stock",
			zap.String("product_id", product.ID.String()),
			zap.Int64("requested", result.RequestedQuantity),
			zap.Int64("available", result.TotalAvailable),
		)
	}
	return response, nil
}
