package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/sales"
)

// AllocationLine is the per-lot detail of a planned or committed allocation.
// Monetary amounts are decimal strings, never floats.
type AllocationLine struct {
	LotID          string `json:"lot_id"`
	BatchNumber    string `json:"batch_number"`
	ExpirationDate string `json:"expiration_date"`
	Quantity       int64  `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	LineTotal      string `json:"line_total"`
	RemainingInLot int64  `json:"remaining_in_lot"`
}

// ValidateItemRequest asks whether a quantity of a product can be served
// from available stock. Quantity positivity is checked by the allocator so
// the caller gets a domain error code rather than a binding failure.
type ValidateItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity"`
}

// ValidateItemResponse is the advisory allocation preview for one sale line.
// It reflects stock at the time of the call; the authoritative allocation
// happens again inside the sale-commit transaction.
type ValidateItemResponse struct {
	Valid             bool             `json:"valid"`
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	RequestedQuantity int64            `json:"requested_quantity"`
	AvailableQuantity int64            `json:"available_quantity"`
	ShortBy           int64            `json:"short_by,omitempty"`
	Lots              []AllocationLine `json:"lots"`
	TotalPrice        string           `json:"total_price"`
	AveragePrice      string           `json:"average_price"`
	Message           string           `json:"message,omitempty"`
}

// SaleItemRequest is one requested line of a sale
type SaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity"`
}

// PaymentRequest is one payment recorded with a sale
type PaymentRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
	Method string `json:"method" binding:"required,oneof=cash mobile_money card bank_transfer"`
}

// CreateSaleRequest creates a sale: lines, optional discount and payments.
// SaleDate defaults to now when omitted.
type CreateSaleRequest struct {
	CustomerID    *string           `json:"customer_id" binding:"omitempty,uuid"`
	SaleDate      *time.Time        `json:"sale_date"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,oneof=amount percentage"`
	DiscountValue string            `json:"discount_value" binding:"omitempty,decimal"`
	TaxAmount     string            `json:"tax_amount" binding:"omitempty,decimal"`
	Payments      []PaymentRequest  `json:"payments" binding:"omitempty,dive"`
	Notes         string            `json:"notes"`
}

// UpdateSaleRequest replaces a sale's lines and payments wholesale
type UpdateSaleRequest = CreateSaleRequest

// SaleItemResponse is one committed sale line with its lot traceability
type SaleItemResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name,omitempty"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   string           `json:"unit_price"`
	LineTotal   string           `json:"line_total"`
	LotsUsed    []AllocationLine `json:"lots_used"`
}

// PaymentResponse is one payment on a sale
type PaymentResponse struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Method string `json:"method"`
}

// SaleResponse is the full view of a committed sale
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	TaxAmount     string             `json:"tax_amount"`
	DiscountType  string             `json:"discount_type"`
	DiscountValue string             `json:"discount_value"`
	TotalAmount   string             `json:"total_amount"`
	AmountPaid    string             `json:"amount_paid"`
	BalanceDue    string             `json:"balance_due"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	Payments      []PaymentResponse  `json:"payments"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CustomerResponse is the list view of a customer
type CustomerResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	CreditBalance string `json:"credit_balance"`
}

// CustomerCreditResponse reports a customer's outstanding credit, summed
// from positive balances across their sales at call time.
type CustomerCreditResponse struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CreditBalance string `json:"credit_balance"`
	HasCredit     bool   `json:"has_credit"`
}

func toAllocationLine(a catalog.LotAllocation) AllocationLine {
	return AllocationLine{
		LotID:          a.LotID.String(),
		BatchNumber:    a.BatchNumber,
		ExpirationDate: a.ExpirationDate.Format(time.DateOnly),
		Quantity:       a.QuantityTaken,
		UnitPrice:      a.UnitPrice.StringFixed(2),
		LineTotal:      a.LineTotal().StringFixed(2),
		RemainingInLot: a.RemainingInLot,
	}
}

func toSaleItemLotLine(l sales.SaleItemLot) AllocationLine {
	return AllocationLine{
		LotID:     l.LotID.String(),
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice.StringFixed(2),
		LineTotal: l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).StringFixed(2),
	}
}

func toSaleResponse(sale *sales.Sale, productNames map[string]string) *SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		lots := make([]AllocationLine, 0, len(item.LotsUsed))
		for _, lot := range item.LotsUsed {
			lots = append(lots, toSaleItemLotLine(lot))
		}
		items = append(items, SaleItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: productNames[item.ProductID.String()],
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
			LotsUsed:    lots,
		})
	}

	payments := make([]PaymentResponse, 0, len(sale.Payments))
	for _, payment := range sale.Payments {
		payments = append(payments, PaymentResponse{
			ID:     payment.ID.String(),
			Amount: payment.Amount.StringFixed(2),
			Method: string(payment.Method),
		})
	}

	var customerID *string
	if sale.CustomerID != nil {
		id := sale.CustomerID.String()
		customerID = &id
	}

	return &SaleResponse{
		ID:            sale.ID.String(),
		CustomerID:    customerID,
		SaleDate:      sale.SaleDate,
		Items:         items,
		Subtotal:      sale.Subtotal.StringFixed(2),
		TaxAmount:     sale.TaxAmount.StringFixed(2),
		DiscountType:  string(sale.DiscountType),
		DiscountValue: sale.DiscountValue.StringFixed(2),
		TotalAmount:   sale.TotalAmount.StringFixed(2),
		AmountPaid:    sale.AmountPaid.StringFixed(2),
		BalanceDue:    sale.BalanceDue.StringFixed(2),
		Status:        string(sale.Status),
		Notes:         sale.Notes,
		Payments:      payments,
		CreatedAt:     sale.CreatedAt,
	}
}

func toCustomerResponse(customer *sales.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            customer.ID.String(),
		Name:          customer.Name,
		Phone:         customer.Phone,
		Email:         customer.Email,
		CreditBalance: customer.CreditBalance.StringFixed(2),
	}
}
