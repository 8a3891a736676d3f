package repository

import (
	"strings"

	"go-inventory-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter composes with logical AND over active products.
type ProductFilter struct {
	Category     string
	Supplier     string
	LowStockOnly bool
	Search       string // substring match on name or SKU, case-insensitive
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindActiveByID(id uuid.UUID) (*model.Product, error)
	FindActiveByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	// UpdateQuantityGuarded sets the quantity only when the stored value
	// still equals prevQuantity. Returns the number of rows affected so
	// the caller can detect a concurrent modification.
	UpdateQuantityGuarded(tx *gorm.DB, id uuid.UUID, prevQuantity, newQuantity int, updatedBy string) (int64, error)
	Deactivate(id uuid.UUID, updatedBy string) error
	DistinctCategories() ([]string, error)
	DistinctSuppliers() ([]string, error)
	Stats() (*InventoryStats, error)
}

// InventoryStats is the aggregate snapshot for the report endpoint.
type InventoryStats struct {
	TotalProducts  int64   `json:"total_products"`
	LowStockCount  int64   `json:"low_stock_count"`
	TotalValuation float64 `json:"total_valuation"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create accepts a tx handle so it can take part in a transaction
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(filter ProductFilter) ([]model.Product, error) {
	var products []model.Product

	q := r.db.Where("is_active = ?", true)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Supplier != "" {
		q = q.Where("supplier = ?", filter.Supplier)
	}
	if filter.LowStockOnly {
		q = q.Where("quantity_in_stock <= min_stock_level")
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}

	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindActiveByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByIDForUpdate reads the product inside the given transaction so
// the subsequent guarded quantity update sees a consistent row.
func (r *productRepo) FindActiveByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.First(&product, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) UpdateQuantityGuarded(tx *gorm.DB, id uuid.UUID, prevQuantity, newQuantity int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND quantity_in_stock = ?", id, prevQuantity).
		Updates(map[string]interface{}{
			"quantity_in_stock":  newQuantity,
			"updated_by":         updatedBy,
			"updated_by_user_id": updatedBy,
		})
	return res.RowsAffected, res.Error
}

func (r *productRepo) Deactivate(id uuid.UUID, updatedBy string) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":          false,
			"updated_by":         updatedBy,
			"updated_by_user_id": updatedBy,
		}).Error
}

func (r *productRepo) DistinctCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.Product{}).
		Distinct("category").
		Where("is_active = ? AND category <> ''", true).
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *productRepo) Stats() (*InventoryStats, error) {
	var stats InventoryStats

	if err := r.db.Model(&model.Product{}).
		Where("is_active = ?", true).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND quantity_in_stock <= min_stock_level", true).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Product{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(quantity_in_stock * unit_price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *productRepo) DistinctSuppliers() ([]string, error) {
	var suppliers []string
	err := r.db.Model(&model.Product{}).
		Distinct("supplier").
		Where("is_active = ? AND supplier <> ''", true).
		Order("supplier ASC").
		Pluck("supplier", &suppliers).Error
	return suppliers, err
}
