package sales

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// Customer represents a pharmacy customer. CreditBalance is the sum of
// outstanding balances across the customer's sales and is recalculated by
// the sale-commit transaction.
type Customer struct {
	shared.BaseEntity
	Name          string
	Phone         string
	Email         string
	CreditBalance decimal.Decimal
}

// NewCustomer creates a new customer
func NewCustomer(name, phone, email string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer name is required")
	}
	return &Customer{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Phone:         phone,
		Email:         email,
		CreditBalance: decimal.Zero,
	}, nil
}

// SetCreditBalance replaces the outstanding credit balance
func (c *Customer) SetCreditBalance(balance decimal.Decimal) {
	c.CreditBalance = balance
	c.Touch()
}

// HasOutstandingCredit returns true if the customer owes money
func (c *Customer) HasOutstandingCredit() bool {
	return c.CreditBalance.GreaterThan(decimal.Zero)
}
