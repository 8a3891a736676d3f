package service

import (
	"errors"
	"fmt"
	"strings"

	"go-inventory-api/internal/apperror"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/ws"
	"go-inventory-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProductRequest mirrors the create endpoint body. Optional numeric
// fields are pointers so zero values can be told apart from omissions.
type CreateProductRequest struct {
	SKU             string  `json:"sku" validate:"required"`
	Name            string  `json:"product_name" validate:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category" validate:"required"`
	Supplier        string  `json:"supplier" validate:"required"`
	UnitPrice       float64 `json:"unit_price" validate:"required"`
	QuantityInStock *int    `json:"quantity_in_stock"`
	MinStockLevel   *int    `json:"min_stock_level"`
	UnitOfMeasure   string  `json:"unit_of_measure"`
}

// UpdateProductRequest carries the mutable product fields. Quantity is
// never mutable through this path, only through the stock ledger.
type UpdateProductRequest struct {
	Name          *string  `json:"product_name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Supplier      *string  `json:"supplier"`
	UnitPrice     *float64 `json:"unit_price"`
	MinStockLevel *int     `json:"min_stock_level"`
	UnitOfMeasure *string  `json:"unit_of_measure"`
}

type CatalogService interface {
	CreateProduct(req *CreateProductRequest, actor model.Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor model.Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor model.Actor) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	Categories() ([]string, error)
	Suppliers() ([]string, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewCatalogService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *catalogService) CreateProduct(req *CreateProductRequest, actor model.Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, apperror.ErrInvalidInput.WithMessage(
			fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag))
	}

	// SKU is normalized to uppercase before storage and comparison.
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if !validator.ValidSKU(sku) {
		return nil, apperror.ErrInvalidInput.WithMessage("Invalid SKU format. Use only letters, numbers, hyphens, and underscores")
	}

	if req.UnitPrice <= 0 {
		return nil, apperror.ErrInvalidInput.WithMessage("Unit price must be greater than 0")
	}

	quantity := 0
	if req.QuantityInStock != nil {
		quantity = *req.QuantityInStock
	}
	if quantity < 0 {
		return nil, apperror.ErrInvalidInput.WithMessage("Quantity in stock cannot be negative")
	}

	minStock := 10
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}
	if minStock < 0 {
		return nil, apperror.ErrInvalidInput.WithMessage("Minimum stock level cannot be negative")
	}

	unitOfMeasure := strings.TrimSpace(req.UnitOfMeasure)
	if unitOfMeasure == "" {
		unitOfMeasure = "units"
	}

	if existing, _ := s.productRepo.FindBySKU(sku); existing != nil {
		return nil, apperror.ErrDuplicateSKU
	}

	actorID := actor.ID.String()
	product := &model.Product{
		SKU:             sku,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.TrimSpace(req.Category),
		Supplier:        strings.TrimSpace(req.Supplier),
		UnitPrice:       req.UnitPrice,
		QuantityInStock: quantity,
		MinStockLevel:   minStock,
		UnitOfMeasure:   unitOfMeasure,
		IsActive:        true,
		CreatedByUserID: &actorID,
		UpdatedByUserID: &actorID,
	}
	product.CreatedBy = actorID
	product.UpdatedBy = actorID

	// Catalog and ledger must agree from entity birth: a non-zero initial
	// quantity gets its stock-in row in the same transaction.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}

		if quantity > 0 {
			movement := &model.StockMovement{
				ProductID:        product.ID,
				Type:             model.MovementStockIn,
				Quantity:         quantity,
				PreviousQuantity: 0,
				NewQuantity:      quantity,
				ReferenceNumber:  "INITIAL",
				Notes:            "Initial stock entry",
				CreatedByUserID:  &actorID,
			}
			movement.CreatedBy = actorID
			movement.UpdatedBy = actorID
			if err := s.movementRepo.Create(tx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.wsHub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":    product.ID,
			"sku":   product.SKU,
			"name":  product.Name,
			"stock": product.QuantityInStock,
		},
		"user": map[string]interface{}{
			"id":    actor.ID,
			"email": actor.Email,
		},
	})

	return product, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor model.Actor) (*model.Product, error) {
	if _, err := s.productRepo.FindActiveByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.ErrInvalidInput.WithMessage("Product name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Supplier != nil {
		fields["supplier"] = strings.TrimSpace(*req.Supplier)
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice <= 0 {
			return nil, apperror.ErrInvalidInput.WithMessage("Unit price must be greater than 0")
		}
		fields["unit_price"] = *req.UnitPrice
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, apperror.ErrInvalidInput.WithMessage("Minimum stock level cannot be negative")
		}
		fields["min_stock_level"] = *req.MinStockLevel
	}
	if req.UnitOfMeasure != nil {
		fields["unit_of_measure"] = strings.TrimSpace(*req.UnitOfMeasure)
	}

	if len(fields) == 0 {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	actorID := actor.ID.String()
	fields["updated_by"] = actorID
	fields["updated_by_user_id"] = actorID

	if err := s.productRepo.UpdateFields(id, fields); err != nil {
		return nil, err
	}

	return s.productRepo.FindActiveByID(id)
}

func (s *catalogService) DeleteProduct(id uuid.UUID, actor model.Actor) error {
	// Only admins can delete products.
	if !actor.IsAdmin() {
		return apperror.ErrForbidden.WithMessage("Unauthorized. Admin access required")
	}

	if _, err := s.productRepo.FindActiveByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrProductNotFound
		}
		return err
	}

	return s.productRepo.Deactivate(id, actor.ID.String())
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindActiveByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *catalogService) Categories() ([]string, error) {
	return s.productRepo.DistinctCategories()
}

func (s *catalogService) Suppliers() ([]string, error) {
	return s.productRepo.DistinctSuppliers()
}
