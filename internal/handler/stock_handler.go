package handler

import (
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	ledger service.LedgerService
}

func NewStockHandler(ledger service.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// UpdateStock records a stock movement against a product
// PUT /api/products/:id/stock
func (h *StockHandler) UpdateStock(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.ledger.RecordMovement(productID, &req, actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Stock updated successfully",
		"movement": result,
	})
}

// GetMovements returns the ledger history for a product, newest first
// GET /api/products/:id/movements
func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	movements, err := h.ledger.GetMovements(productID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"items": movements, "total": len(movements)})
}
