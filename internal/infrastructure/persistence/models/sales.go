package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
)

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null;index"`
	Phone         string          `gorm:"type:varchar(32);index"`
	Email         string          `gorm:"type:varchar(255)"`
	CreditBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *sales.Customer {
	return &sales.Customer{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Phone:         m.Phone,
		Email:         m.Email,
		CreditBalance: m.CreditBalance,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *sales.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		CreditBalance: c.CreditBalance,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// SaleModel is the persistence model for the Sale aggregate root. Items and
// payments are persisted through GORM associations.
type SaleModel struct {
	BaseModel
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	SaleDate      time.Time       `gorm:"not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType  string          `gorm:"type:varchar(16);not null;default:'amount'"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BalanceDue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;index"`
	Status        string          `gorm:"type:varchar(16);not null;default:'draft';index"`
	Notes         string          `gorm:"type:text"`
	// Associations
	Items    []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
	Payments []PaymentModel  `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale aggregate
func (m *SaleModel) ToDomain() *sales.Sale {
	sale := &sales.Sale{
		BaseEntity:    m.BaseModel.ToDomain(),
		CustomerID:    m.CustomerID,
		SaleDate:      m.SaleDate,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		DiscountType:  sales.DiscountType(m.DiscountType),
		DiscountValue: m.DiscountValue,
		TotalAmount:   m.TotalAmount,
		AmountPaid:    m.AmountPaid,
		BalanceDue:    m.BalanceDue,
		Status:        sales.SaleStatus(m.Status),
		Notes:         m.Notes,
		Items:         make([]sales.SaleItem, len(m.Items)),
		Payments:      make([]sales.Payment, len(m.Payments)),
	}
	for i, item := range m.Items {
		sale.Items[i] = *item.ToDomain()
	}
	for i, payment := range m.Payments {
		sale.Payments[i] = *payment.ToDomain()
	}
	return sale
}

// SaleModelFromDomain creates a persistence model from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		CustomerID:    s.CustomerID,
		SaleDate:      s.SaleDate,
		Subtotal:      s.Subtotal,
		TaxAmount:     s.TaxAmount,
		DiscountType:  string(s.DiscountType),
		DiscountValue: s.DiscountValue,
		TotalAmount:   s.TotalAmount,
		AmountPaid:    s.AmountPaid,
		BalanceDue:    s.BalanceDue,
		Status:        string(s.Status),
		Notes:         s.Notes,
		Items:         make([]SaleItemModel, len(s.Items)),
		Payments:      make([]PaymentModel, len(s.Payments)),
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	for i := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(&s.Items[i])
	}
	for i := range s.Payments {
		m.Payments[i] = *PaymentModelFromDomain(&s.Payments[i])
	}
	return m
}

// SaleItemModel is the persistence model for sale lines
type SaleItemModel struct {
	BaseModel
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Associations
	LotsUsed []SaleItemLotModel `gorm:"foreignKey:SaleItemID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem
func (m *SaleItemModel) ToDomain() *sales.SaleItem {
	item := &sales.SaleItem{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleID:     m.SaleID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		LineTotal:  m.LineTotal,
		LotsUsed:   make([]sales.SaleItemLot, len(m.LotsUsed)),
	}
	for i, lot := range m.LotsUsed {
		item.LotsUsed[i] = *lot.ToDomain()
	}
	return item
}

// SaleItemModelFromDomain creates a persistence model from a domain SaleItem
func SaleItemModelFromDomain(i *sales.SaleItem) *SaleItemModel {
	m := &SaleItemModel{
		SaleID:    i.SaleID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		LineTotal: i.LineTotal,
		LotsUsed:  make([]SaleItemLotModel, len(i.LotsUsed)),
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	for idx := range i.LotsUsed {
		m.LotsUsed[idx] = *SaleItemLotModelFromDomain(&i.LotsUsed[idx])
	}
	return m
}

// SaleItemLotModel is the persistence model for per-lot traceability records
type SaleItemLotModel struct {
	BaseModel
	SaleItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItemLotModel) TableName() string {
	return "sale_item_lots"
}

// ToDomain converts the persistence model to a domain SaleItemLot
func (m *SaleItemLotModel) ToDomain() *sales.SaleItemLot {
	return &sales.SaleItemLot{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleItemID: m.SaleItemID,
		LotID:      m.LotID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
	}
}

// SaleItemLotModelFromDomain creates a persistence model from a domain
// SaleItemLot
func SaleItemLotModelFromDomain(l *sales.SaleItemLot) *SaleItemLotModel {
	m := &SaleItemLotModel{
		SaleItemID: l.SaleItemID,
		LotID:      l.LotID,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	BaseModel
	SaleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method string          `gorm:"type:varchar(32);not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *sales.Payment {
	return &sales.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleID:     m.SaleID,
		Amount:     m.Amount,
		Method:     sales.PaymentMethod(m.Method),
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *sales.Payment) *PaymentModel {
	m := &PaymentModel{
		SaleID: p.SaleID,
		Amount: p.Amount,
		Method: string(p.Method),
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
