package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// CustomerService handles customer lookup for the sale screen and credit
// reporting
type CustomerService struct {
	customerRepo sales.CustomerRepository
	saleRepo     sales.SaleRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo sales.CustomerRepository, saleRepo sales.SaleRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		logger:       logger,
	}
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CustomerResponse], error) {
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, toCustomerResponse(&customers[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, name, phone, email string) (*CustomerResponse, error) {
	customer, err := sales.NewCustomer(name, phone, email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := toCustomerResponse(customer)
	return &response, nil
}

// Credit reports a customer's outstanding balance, recomputed from their
// sales at call time rather than read from the stored balance.
func (s *CustomerService) Credit(ctx context.Context, customerID uuid.UUID) (*CustomerCreditResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	balance, err := s.saleRepo.OutstandingBalanceByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &CustomerCreditResponse{
		CustomerID:    customer.ID.String(),
		CustomerName:  customer.Name,
		CreditBalance: balance.StringFixed(2),
		HasCredit:     balance.GreaterThan(decimal.Zero),
	}, nil
}
