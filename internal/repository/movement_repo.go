package repository

import (
	"go-inventory-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	FindByProduct(productID uuid.UUID) ([]model.StockMovement, error)
	FindLatestByProduct(productID uuid.UUID) (*model.StockMovement, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

// Create accepts a tx handle so it can take part in a transaction
func (r *movementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *movementRepo) FindByProduct(productID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindLatestByProduct(productID uuid.UUID) (*model.StockMovement, error) {
	var movement model.StockMovement
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		First(&movement).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}
