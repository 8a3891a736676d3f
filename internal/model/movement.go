package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementStockIn    MovementType = "stock-in"
	MovementStockOut   MovementType = "stock-out"
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether the movement type is one of the enumerated kinds.
func (t MovementType) Valid() bool {
	switch t {
	case MovementStockIn, MovementStockOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a quantity change.
// Rows are only ever inserted, never updated or deleted.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product     `json:"product,omitempty" validate:"-"` // Relasi - skip validation
	Type      MovementType `gorm:"type:varchar(20);not null" json:"movement_type" validate:"required"`

	// Quantity is the magnitude for stock-in/stock-out and the absolute
	// target for adjustment.
	Quantity         int    `gorm:"not null" json:"quantity"`
	PreviousQuantity int    `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int    `gorm:"not null" json:"new_quantity"`
	ReferenceNumber  string `gorm:"type:varchar(100)" json:"reference_number,omitempty"`
	Notes            string `gorm:"type:text" json:"notes,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}
