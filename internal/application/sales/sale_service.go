package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
	"github.com/pharmacy-pos/backend/internal/infrastructure/telemetry"
)

// StockInvalidator drops cached stock snapshots after a commit changes lot
// quantities. Satisfied by the catalog ProductService.
type StockInvalidator interface {
	InvalidateStock(ctx context.Context, productID uuid.UUID)
}

// SaleService commits sales. The create and update paths re-run the FEFO
// allocation against row-locked lot snapshots inside one transaction, so a
// validation that succeeded moments earlier cannot oversell a lot that a
// concurrent sale drained in between.
type SaleService struct {
	scope        TransactionScope
	productRepo  catalog.ProductRepository
	saleRepo     sales.SaleRepository
	customerRepo sales.CustomerRepository
	invalidator  StockInvalidator
	logger       *zap.Logger
}

// NewSaleService creates a new SaleService. invalidator may be nil.
func NewSaleService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	saleRepo sales.SaleRepository,
	customerRepo sales.CustomerRepository,
	invalidator StockInvalidator,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:        scope,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		invalidator:  invalidator,
		logger:       logger,
	}
}

// Create commits a new sale: allocates stock lot by lot under row locks,
// decrements the lots, records traceability and stock movements, applies
// discount and payments, and recalculates the customer's credit balance.
func (s *SaleService) Create(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create",
		attribute.Int("sale.items", len(req.Items)),
	)
	defer span.End()

	customerID, err := s.resolveCustomer(ctx, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	sale := sales.NewSale(customerID, saleDate)
	sale.Notes = strings.TrimSpace(req.Notes)
	if err := s.applyDiscountAndTax(sale, req); err != nil {
		return nil, err
	}

	productNames := make(map[string]string, len(req.Items))
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.allocateItems(ctx, repos, sale, req.Items, productNames); err != nil {
			return err
		}
		if err := s.applyPayments(sale, req.Payments); err != nil {
			return err
		}
		if err := sale.RecalculateTotals(); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}
		return s.refreshCustomerCredit(ctx, repos, sale.CustomerID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidateStock(ctx, sale)
	s.logger.Info("sale committed",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.String("status", string(sale.Status)),
	)
	return toSaleResponse(sale, productNames), nil
}

// Update replaces a sale's contents. Stock consumed by the original sale is
// returned to its lots first, then the new lines are allocated as a fresh
// sale; both halves run in the same transaction.
func (s *SaleService) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "update",
		attribute.String("sale.id", id.String()),
		attribute.Int("sale.items", len(req.Items)),
	)
	defer span.End()

	customerID, err := s.resolveCustomer(ctx, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var sale *sales.Sale
	var previousProducts []uuid.UUID
	productNames := make(map[string]string, len(req.Items))
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range sale.Items {
			previousProducts = append(previousProducts, item.ProductID)
		}

		previousCustomer := sale.CustomerID
		if err := s.restoreStock(ctx, repos, sale); err != nil {
			return err
		}

		sale.ClearItems()
		sale.CustomerID = customerID
		sale.Notes = strings.TrimSpace(req.Notes)
		if req.SaleDate != nil {
			sale.SaleDate = *req.SaleDate
		}
		if err := s.applyDiscountAndTax(sale, req); err != nil {
			return err
		}
		if err := s.allocateItems(ctx, repos, sale, req.Items, productNames); err != nil {
			return err
		}
		if err := s.applyPayments(sale, req.Payments); err != nil {
			return err
		}
		if err := sale.RecalculateTotals(); err != nil {
			return err
		}
		if err := repos.SaleRepo().ReplaceContents(ctx, sale); err != nil {
			return err
		}

		if err := s.refreshCustomerCredit(ctx, repos, sale.CustomerID); err != nil {
			return err
		}
		// The previous customer's balance changes too when the sale moves
		// between customers.
		if previousCustomer != nil && (customerID == nil || *previousCustomer != *customerID) {
			return s.refreshCustomerCredit(ctx, repos, previousCustomer)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Products dropped by the edit had their lots restocked too.
	s.invalidateStock(ctx, sale, previousProducts...)
	s.logger.Info("sale updated",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
	)
	return toSaleResponse(sale, productNames), nil
}

// GetByID returns the full view of a sale
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, s.lookupProductNames(ctx, sale)), nil
}

// List returns a page of sales, newest first by default
func (s *SaleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SaleResponse], error) {
	items, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]SaleResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *toSaleResponse(&items[i], s.lookupProductNames(ctx, &items[i])))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// allocateItems runs the FEFO allocation for every requested line against
// row-locked lot snapshots, appends the lines to the sale, decrements the
// lots and records the outbound stock movements.
func (s *SaleService) allocateItems(
	ctx context.Context,
	repos TransactionalRepositories,
	sale *sales.Sale,
	items []SaleItemRequest,
	productNames map[string]string,
) error {
	now := time.Now()
	for _, itemReq := range items {
		productID, err := uuid.Parse(itemReq.ProductID)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", "Invalid product ID")
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		productNames[product.ID.String()] = product.Name

		lots, err := repos.LotRepo().FindAvailableForUpdate(ctx, productID, now)
		if err != nil {
			return err
		}
		result, err := catalog.Allocate(productID, itemReq.Quantity, lots)
		if err != nil {
			return err
		}
		if !result.FullySatisfied {
			return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf(
				"Insufficient stock for %s: %d available, %d requested",
				product.Name, result.TotalAvailable, result.RequestedQuantity,
			))
		}

		itemLots := make([]sales.SaleItemLot, 0, len(result.LotsUsed))
		for _, allocation := range result.LotsUsed {
			itemLots = append(itemLots, sales.SaleItemLot{
				BaseEntity: shared.NewBaseEntity(),
				LotID:      allocation.LotID,
				Quantity:   allocation.QuantityTaken,
				UnitPrice:  allocation.UnitPrice,
			})
		}
		if _, err := sale.AddItem(productID, itemReq.Quantity, result.AveragePrice, result.TotalPrice, itemLots); err != nil {
			return err
		}

		if err := s.commitAllocation(ctx, repos, sale, lots, result); err != nil {
			return err
		}
	}
	return nil
}

// commitAllocation decrements the locked lots by the allocated quantities
// and records one outbound movement per lot touched.
func (s *SaleService) commitAllocation(
	ctx context.Context,
	repos TransactionalRepositories,
	sale *sales.Sale,
	lockedLots []catalog.Lot,
	result *catalog.AllocationResult,
) error {
	byID := make(map[uuid.UUID]*catalog.Lot, len(lockedLots))
	for i := range lockedLots {
		byID[lockedLots[i].ID] = &lockedLots[i]
	}

	updated := make([]*catalog.Lot, 0, len(result.LotsUsed))
	for _, allocation := range result.LotsUsed {
		lot, ok := byID[allocation.LotID]
		if !ok {
			return shared.NewDomainError("INVALID_STATE", "Allocated lot missing from locked snapshot")
		}
		if err := lot.Adjust(-allocation.QuantityTaken); err != nil {
			return err
		}
		updated = append(updated, lot)

		movement, err := catalog.NewStockMovement(
			lot.ID, result.ProductID, catalog.MovementTypeOut,
			allocation.QuantityTaken, "sale", fmt.Sprintf("Sale %s", sale.ID),
		)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Record(ctx, movement); err != nil {
			return err
		}
	}
	return repos.LotRepo().SaveAll(ctx, updated)
}

// restoreStock returns the quantities consumed by the sale's current items
// to their lots, recording inbound movements, in preparation for an edit.
// Each restore is a relative increment applied by the database; an unlocked
// read-modify-write here could overwrite a concurrent sale's committed
// decrement and resurrect sold units.
func (s *SaleService) restoreStock(ctx context.Context, repos TransactionalRepositories, sale *sales.Sale) error {
	for _, item := range sale.Items {
		for _, used := range item.LotsUsed {
			if err := repos.LotRepo().Restore(ctx, used.LotID, used.Quantity); err != nil {
				return err
			}

			movement, err := catalog.NewStockMovement(
				used.LotID, item.ProductID, catalog.MovementTypeIn,
				used.Quantity, "sale_edit", fmt.Sprintf("Sale %s edited", sale.ID),
			)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Record(ctx, movement); err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshCustomerCredit recomputes and persists the customer's outstanding
// credit from the sum of positive balances due across their sales.
func (s *SaleService) refreshCustomerCredit(ctx context.Context, repos TransactionalRepositories, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	customer, err := repos.CustomerRepo().FindByID(ctx, *customerID)
	if err != nil {
		return err
	}
	balance, err := repos.SaleRepo().OutstandingBalanceByCustomer(ctx, *customerID)
	if err != nil {
		return err
	}
	customer.SetCreditBalance(balance)
	return repos.CustomerRepo().Save(ctx, customer)
}

// resolveCustomer parses and verifies the optional customer reference
func (s *SaleService) resolveCustomer(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	customerID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid customer ID")
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	return &customerID, nil
}

// applyDiscountAndTax parses the request's monetary strings onto the sale
func (s *SaleService) applyDiscountAndTax(sale *sales.Sale, req CreateSaleRequest) error {
	tax, err := parseAmount(req.TaxAmount)
	if err != nil {
		return err
	}
	sale.TaxAmount = tax

	if req.DiscountType == "" {
		return nil
	}
	value, err := parseAmount(req.DiscountValue)
	if err != nil {
		return err
	}
	return sale.SetDiscount(sales.DiscountType(req.DiscountType), value)
}

// applyPayments records the request's payments on the sale
func (s *SaleService) applyPayments(sale *sales.Sale, payments []PaymentRequest) error {
	for _, paymentReq := range payments {
		amount, err := parseAmount(paymentReq.Amount)
		if err != nil {
			return err
		}
		if _, err := sale.AddPayment(amount, sales.PaymentMethod(paymentReq.Method)); err != nil {
			return err
		}
	}
	return nil
}

// invalidateStock drops cached stock snapshots for every product on the
// sale, plus any extra products whose lots the commit also touched.
func (s *SaleService) invalidateStock(ctx context.Context, sale *sales.Sale, extra ...uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(sale.Items)+len(extra))
	for _, item := range sale.Items {
		seen[item.ProductID] = struct{}{}
	}
	for _, productID := range extra {
		seen[productID] = struct{}{}
	}
	for productID := range seen {
		s.invalidator.InvalidateStock(ctx, productID)
	}
}

// lookupProductNames resolves display names for a sale's items; lookup
// failures leave the name blank rather than failing the read.
func (s *SaleService) lookupProductNames(ctx context.Context, sale *sales.Sale) map[string]string {
	names := make(map[string]string, len(sale.Items))
	for _, item := range sale.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			continue
		}
		names[item.ProductID.String()] = product.Name
	}
	return names
}

// parseAmount parses a decimal string, treating empty as zero
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Invalid decimal amount: "+raw)
	}
	return amount, nil
}
