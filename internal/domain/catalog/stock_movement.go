package catalog

import (
	"github.com/google/uuid"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

// MovementType classifies a stock movement
type MovementType string

const (
	// MovementTypeIn records stock entering a lot (receipt, sale reversal)
	MovementTypeIn MovementType = "in"
	// MovementTypeOut records stock leaving a lot (sale, loss)
	MovementTypeOut MovementType = "out"
	// MovementTypeAdjust records a manual correction
	MovementTypeAdjust MovementType = "adjust"
)

// IsValid checks if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjust:
		return true
	}
	return false
}

// StockMovement is an append-only traceability record of a quantity change
// on a lot. Movements are never updated or deleted.
type StockMovement struct {
	shared.BaseEntity
	LotID     uuid.UUID
	ProductID uuid.UUID
	Type      MovementType
	Quantity  int64 // Always positive; direction is carried by Type
	Source    string
	Comment   string
}

// NewStockMovement creates a stock movement record
func NewStockMovement(lotID, productID uuid.UUID, movementType MovementType, quantity int64, source, comment string) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown stock movement type")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	return &StockMovement{
		BaseEntity: shared.NewBaseEntity(),
		LotID:      lotID,
		ProductID:  productID,
		Type:       movementType,
		Quantity:   quantity,
		Source:     source,
		Comment:    comment,
	}, nil
}
