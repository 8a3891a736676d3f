package handler

import (
	"go-inventory-api/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	productRepo repository.ProductRepository
}

func NewReportHandler(productRepo repository.ProductRepository) *ReportHandler {
	return &ReportHandler{productRepo: productRepo}
}

// InventoryReport returns aggregate stats over the active catalog
// GET /api/reports/inventory
func (h *ReportHandler) InventoryReport(c *fiber.Ctx) error {
	stats, err := h.productRepo.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
