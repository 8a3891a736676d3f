package service

import (
	"errors"

	"go-inventory-api/internal/apperror"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRequest is the request body for PUT /api/products/:id/stock.
type MovementRequest struct {
	Type            model.MovementType `json:"movement_type"`
	Quantity        int                `json:"quantity"`
	ReferenceNumber string             `json:"reference_number"`
	Notes           string             `json:"notes"`
}

// MovementResult reports the before/after pair of a recorded movement.
type MovementResult struct {
	MovementType     model.MovementType `json:"movement_type"`
	Quantity         int                `json:"quantity"`
	PreviousQuantity int                `json:"previous_quantity"`
	NewQuantity      int                `json:"new_quantity"`
}

type LedgerService interface {
	RecordMovement(productID uuid.UUID, req *MovementRequest, actor model.Actor) (*MovementResult, error)
	GetMovements(productID uuid.UUID) ([]model.StockMovement, error)
}

type ledgerService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewLedgerService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		db:           db,
		wsHub:        hub,
	}
}

// RecordMovement applies a stock-in, stock-out, or adjustment to a product
// and appends the corresponding ledger row. The product update and the
// ledger insert commit in one transaction or not at all.
func (s *ledgerService) RecordMovement(productID uuid.UUID, req *MovementRequest, actor model.Actor) (*MovementResult, error) {
	if !req.Type.Valid() {
		return nil, apperror.ErrInvalidMovementType
	}
	if req.Quantity <= 0 {
		return nil, apperror.ErrInvalidInput.WithMessage("Quantity must be greater than 0")
	}

	var result *MovementResult
	var product *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.FindActiveByIDForUpdate(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrProductNotFound
			}
			return err
		}

		previous := product.QuantityInStock
		var newQuantity int
		switch req.Type {
		case model.MovementStockIn:
			newQuantity = previous + req.Quantity
		case model.MovementStockOut:
			newQuantity = previous - req.Quantity
			if newQuantity < 0 {
				return apperror.ErrInsufficientStock
			}
		case model.MovementAdjustment:
			// Absolute target quantity, not a delta.
			newQuantity = req.Quantity
		}

		actorID := actor.ID.String()

		// Guarded write: if another request changed the quantity between
		// our read and this update, zero rows match and we fail with a
		// retryable conflict instead of committing a stale transition.
		rows, err := s.productRepo.UpdateQuantityGuarded(tx, product.ID, previous, newQuantity, actorID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.ErrStockConflict
		}

		movement := &model.StockMovement{
			ProductID:        product.ID,
			Type:             req.Type,
			Quantity:         req.Quantity,
			PreviousQuantity: previous,
			NewQuantity:      newQuantity,
			ReferenceNumber:  req.ReferenceNumber,
			Notes:            req.Notes,
			CreatedByUserID:  &actorID,
		}
		movement.CreatedBy = actorID
		movement.UpdatedBy = actorID
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}

		result = &MovementResult{
			MovementType:     req.Type,
			Quantity:         req.Quantity,
			PreviousQuantity: previous,
			NewQuantity:      newQuantity,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Broadcast after commit so subscribers never see a rolled-back change.
	go s.wsHub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "movement_recorded",
		"product": map[string]interface{}{
			"id":        product.ID,
			"sku":       product.SKU,
			"name":      product.Name,
			"old_stock": result.PreviousQuantity,
			"new_stock": result.NewQuantity,
		},
		"movement_type": req.Type,
		"user": map[string]interface{}{
			"id":    actor.ID,
			"email": actor.Email,
		},
	})

	return result, nil
}

func (s *ledgerService) GetMovements(productID uuid.UUID) ([]model.StockMovement, error) {
	// History stays readable even for soft-deleted products.
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}
	return s.movementRepo.FindByProduct(productID)
}
