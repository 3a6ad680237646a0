package sales

import (
	"context"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a sale
// commit touches. All repository operations inside Execute share one
// database transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction. The transaction is
	// rolled back when fn returns an error and committed otherwise.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction. Lot row locks taken through LotRepo's
// FindAvailableForUpdate are held until the transaction ends.
type TransactionalRepositories interface {
	LotRepo() catalog.LotRepository
	MovementRepo() catalog.StockMovementRepository
	SaleRepo() sales.SaleRepository
	CustomerRepo() sales.CustomerRepository
}

// NoOpTransactionScope runs the function without a real transaction. Useful
// in tests where repositories are mocks or in-memory.
type NoOpTransactionScope struct {
	lotRepo      catalog.LotRepository
	movementRepo catalog.StockMovementRepository
	saleRepo     sales.SaleRepository
	customerRepo sales.CustomerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories.
func NewNoOpTransactionScope(
	lotRepo catalog.LotRepository,
	movementRepo catalog.StockMovementRepository,
	saleRepo sales.SaleRepository,
	customerRepo sales.CustomerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
	}
}

// Execute runs the function directly, without transaction semantics.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the lot repository.
func (s *NoOpTransactionScope) LotRepo() catalog.LotRepository { return s.lotRepo }

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() catalog.StockMovementRepository {
	return s.movementRepo
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository { return s.saleRepo }

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() sales.CustomerRepository { return s.customerRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
