package model

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	SKU             string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,sku"`
	Name            string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description     string  `gorm:"type:text" json:"description"`
	Category        string  `gorm:"type:varchar(100);index" json:"category" validate:"required"`
	Supplier        string  `gorm:"type:varchar(100);index" json:"supplier" validate:"required"`
	UnitPrice       float64 `gorm:"type:numeric(12,2);not null" json:"unit_price" validate:"required,gt=0"`
	QuantityInStock int     `gorm:"not null;default:0" json:"quantity_in_stock" validate:"gte=0"`
	MinStockLevel   int     `gorm:"not null;default:10" json:"min_stock_level" validate:"gte=0"`
	UnitOfMeasure   string  `gorm:"type:varchar(20);default:'units'" json:"unit_of_measure"`
	IsActive        bool    `gorm:"default:true;index" json:"is_active"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`

	// Relasi
	Movements []StockMovement `json:"movements,omitempty"`
}

// IsLowStock reports whether the current quantity is at or below the
// configured minimum. Derived, never stored.
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= p.MinStockLevel
}

// ProductResponse for API responses, carrying the derived low-stock flag.
type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	Supplier        string    `json:"supplier"`
	UnitPrice       float64   `json:"unit_price"`
	QuantityInStock int       `json:"quantity_in_stock"`
	MinStockLevel   int       `json:"min_stock_level"`
	UnitOfMeasure   string    `json:"unit_of_measure"`
	IsActive        bool      `json:"is_active"`
	IsLowStock      bool      `json:"is_low_stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		Supplier:        p.Supplier,
		UnitPrice:       p.UnitPrice,
		QuantityInStock: p.QuantityInStock,
		MinStockLevel:   p.MinStockLevel,
		UnitOfMeasure:   p.UnitOfMeasure,
		IsActive:        p.IsActive,
		IsLowStock:      p.IsLowStock(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
