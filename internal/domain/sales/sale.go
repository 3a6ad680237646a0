package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// SaleStatus describes the payment state of a sale
type SaleStatus string

const (
	// SaleStatusDraft means nothing has been paid yet
	SaleStatusDraft SaleStatus = "draft"
	// SaleStatusPartial means some but not all of the total has been paid
	SaleStatusPartial SaleStatus = "partial"
	// SaleStatusPaid means the sale is fully paid
	SaleStatusPaid SaleStatus = "paid"
)

// DiscountType distinguishes flat-amount from percentage discounts
type DiscountType string

const (
	DiscountTypeAmount     DiscountType = "amount"
	DiscountTypePercentage DiscountType = "percentage"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountTypeAmount || t == DiscountTypePercentage
}

// PaymentMethod enumerates the accepted payment channels
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// SaleItemLot is the per-lot traceability record of a sale line: which lot
// was consumed, how much, and at which unit price at the time of sale. It
// lets profitability analysis reconstruct exact lot-level costs independent
// of the line's blended display price.
type SaleItemLot struct {
	shared.BaseEntity
	SaleItemID uuid.UUID
	LotID      uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
}

// SaleItem is one line of a sale. UnitPrice is the blended (weighted
// average) price across the consumed lots; LineTotal is the exact sum of
// per-lot contributions, never Quantity times the rounded UnitPrice.
type SaleItem struct {
	shared.BaseEntity
	SaleID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	LotsUsed  []SaleItemLot
}

// Payment is a payment recorded against a sale
type Payment struct {
	shared.BaseEntity
	SaleID uuid.UUID
	Amount decimal.Decimal
	Method PaymentMethod
}

// NewPayment creates a payment
func NewPayment(saleID uuid.UUID, amount decimal.Decimal, method PaymentMethod) (*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     saleID,
		Amount:     amount,
		Method:     method,
	}, nil
}

// Sale is the aggregate root for a point-of-sale transaction.
type Sale struct {
	shared.BaseEntity
	CustomerID    *uuid.UUID
	SaleDate      time.Time
	Subtotal      decimal.Decimal // After discount
	TaxAmount     decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal
	Status        SaleStatus
	Notes         string
	Items         []SaleItem
	Payments      []Payment
}

// NewSale creates an empty draft sale
func NewSale(customerID *uuid.UUID, saleDate time.Time) *Sale {
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	return &Sale{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		SaleDate:      saleDate,
		Subtotal:      decimal.Zero,
		TaxAmount:     decimal.Zero,
		DiscountType:  DiscountTypeAmount,
		DiscountValue: decimal.Zero,
		TotalAmount:   decimal.Zero,
		AmountPaid:    decimal.Zero,
		BalanceDue:    decimal.Zero,
		Status:        SaleStatusDraft,
	}
}

// AddItem appends a sale line with its lot traceability records. unitPrice
// is the blended average price, lineTotal the exact allocation total.
func (s *Sale) AddItem(productID uuid.UUID, quantity int64, unitPrice, lineTotal decimal.Decimal, lots []SaleItemLot) (*SaleItem, error) {
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	for _, existing := range s.Items {
		if existing.ProductID == productID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product already present on this sale")
		}
	}

	item := SaleItem{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     s.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		LineTotal:  lineTotal,
		LotsUsed:   make([]SaleItemLot, len(lots)),
	}
	copy(item.LotsUsed, lots)
	for i := range item.LotsUsed {
		item.LotsUsed[i].SaleItemID = item.ID
	}

	s.Items = append(s.Items, item)
	s.Touch()
	return &s.Items[len(s.Items)-1], nil
}

// ClearItems removes all items and payments, used when an edit replaces the
// sale's content wholesale
func (s *Sale) ClearItems() {
	s.Items = nil
	s.Payments = nil
	s.Touch()
}

// AddPayment records a payment against the sale
func (s *Sale) AddPayment(amount decimal.Decimal, method PaymentMethod) (*Payment, error) {
	payment, err := NewPayment(s.ID, amount, method)
	if err != nil {
		return nil, err
	}
	s.Payments = append(s.Payments, *payment)
	s.Touch()
	return &s.Payments[len(s.Payments)-1], nil
}

// SetDiscount sets the sale discount
func (s *Sale) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown discount type")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount cannot be negative")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_INPUT", "Percentage discount cannot exceed 100")
	}
	s.DiscountType = discountType
	s.DiscountValue = value
	s.Touch()
	return nil
}

// ItemsSubtotal sums line totals before discount
func (s *Sale) ItemsSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return subtotal
}

// DiscountAmount computes the concrete discount amount for the given
// pre-discount subtotal
func (s *Sale) DiscountAmount(subtotal decimal.Decimal) decimal.Decimal {
	if s.DiscountType == DiscountTypePercentage {
		return subtotal.Mul(s.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	}
	return s.DiscountValue
}

// RecalculateTotals recomputes subtotal, total, paid amount, balance due and
// status from the sale's items and payments. Returns an error when the
// discount exceeds the subtotal.
func (s *Sale) RecalculateTotals() error {
	itemsSubtotal := s.ItemsSubtotal()
	discount := s.DiscountAmount(itemsSubtotal)

	subtotal := itemsSubtotal.Sub(discount)
	if subtotal.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount cannot exceed the subtotal")
	}

	paid := decimal.Zero
	for _, payment := range s.Payments {
		paid = paid.Add(payment.Amount)
	}

	s.Subtotal = subtotal
	s.TotalAmount = subtotal.Add(s.TaxAmount)
	s.AmountPaid = paid
	s.BalanceDue = s.TotalAmount.Sub(paid)
	s.Status = s.computeStatus()
	s.Touch()
	return nil
}

// computeStatus derives the payment status from paid amount vs total
func (s *Sale) computeStatus() SaleStatus {
	if s.AmountPaid.GreaterThanOrEqual(s.TotalAmount) && s.TotalAmount.GreaterThan(decimal.Zero) {
		return SaleStatusPaid
	}
	if s.AmountPaid.GreaterThan(decimal.Zero) {
		return SaleStatusPartial
	}
	return SaleStatusDraft
}

// QuantityOfProduct returns the quantity of the given product already on
// this sale, zero when absent. Used when editing: stock previously consumed
// by this sale is effectively returnable.
func (s *Sale) QuantityOfProduct(productID uuid.UUID) int64 {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
