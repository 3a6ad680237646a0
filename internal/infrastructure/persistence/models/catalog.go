package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for products
type ProductModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(255);not null;index"`
	Barcode        string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Category       string `gorm:"type:varchar(100);index"`
	DosageForm     string `gorm:"type:varchar(100)"`
	StockThreshold int64  `gorm:"not null;default:0"`
	SupplierName   string `gorm:"type:varchar(255)"`
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		Barcode:        m.Barcode,
		Category:       m.Category,
		DosageForm:     m.DosageForm,
		StockThreshold: m.StockThreshold,
		SupplierName:   m.SupplierName,
		Notes:          m.Notes,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:           p.Name,
		Barcode:        p.Barcode,
		Category:       p.Category,
		DosageForm:     p.DosageForm,
		StockThreshold: p.StockThreshold,
		SupplierName:   p.SupplierName,
		Notes:          p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// LotModel is the persistence model for inventory lots. RemainingQuantity
// is the column the sale-commit transaction locks and decrements.
type LotModel struct {
	BaseModel
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_lots_product_expiration,priority:1"`
	PurchaseOrderRef  string          `gorm:"type:varchar(64)"`
	BatchNumber       string          `gorm:"type:varchar(64);index"`
	Quantity          int64           `gorm:"not null"`
	RemainingQuantity int64           `gorm:"not null"`
	ExpirationDate    time.Time       `gorm:"type:date;not null;index:idx_lots_product_expiration,priority:2"`
	PurchasePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// ToDomain converts the persistence model to a domain Lot
func (m *LotModel) ToDomain() *catalog.Lot {
	return &catalog.Lot{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		PurchaseOrderRef:  m.PurchaseOrderRef,
		BatchNumber:       m.BatchNumber,
		Quantity:          m.Quantity,
		RemainingQuantity: m.RemainingQuantity,
		ExpirationDate:    m.ExpirationDate,
		PurchasePrice:     m.PurchasePrice,
		SalePrice:         m.SalePrice,
		IsActive:          m.IsActive,
	}
}

// LotModelFromDomain creates a persistence model from a domain Lot
func LotModelFromDomain(l *catalog.Lot) *LotModel {
	m := &LotModel{
		ProductID:         l.ProductID,
		PurchaseOrderRef:  l.PurchaseOrderRef,
		BatchNumber:       l.BatchNumber,
		Quantity:          l.Quantity,
		RemainingQuantity: l.RemainingQuantity,
		ExpirationDate:    l.ExpirationDate,
		PurchasePrice:     l.PurchasePrice,
		SalePrice:         l.SalePrice,
		IsActive:          l.IsActive,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// StockMovementModel is the persistence model for the append-only stock
// movement journal
type StockMovementModel struct {
	BaseModel
	LotID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(16);not null"`
	Quantity  int64     `gorm:"not null"`
	Source    string    `gorm:"type:varchar(64)"`
	Comment   string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *catalog.StockMovement {
	return &catalog.StockMovement{
		BaseEntity: m.BaseModel.ToDomain(),
		LotID:      m.LotID,
		ProductID:  m.ProductID,
		Type:       catalog.MovementType(m.Type),
		Quantity:   m.Quantity,
		Source:     m.Source,
		Comment:    m.Comment,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain
// StockMovement
func StockMovementModelFromDomain(s *catalog.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		LotID:     s.LotID,
		ProductID: s.ProductID,
		Type:      string(s.Type),
		Quantity:  s.Quantity,
		Source:    s.Source,
		Comment:   s.Comment,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
