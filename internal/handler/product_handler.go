package handler

import (
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	catalog service.CatalogService
}

func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ListProducts returns active products with optional filters
// GET /api/products?category=&supplier=&low_stock=&search=
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Category:     c.Query("category"),
		Supplier:     c.Query("supplier"),
		LowStockOnly: c.Query("low_stock") == "true",
		Search:       c.Query("search"),
	}

	products, err := h.catalog.ListProducts(filter)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]model.ProductResponse, len(products))
	for i := range products {
		items[i] = products[i].ToResponse()
	}

	return c.JSON(fiber.Map{"items": items, "total": len(items)})
}

// GetProduct fetches a single active product
// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"product": product.ToResponse()})
}

// CreateProduct creates a new product
// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.catalog.CreateProduct(&req, actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product.ToResponse(),
	})
}

// UpdateProduct updates mutable product fields (never quantity)
// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.catalog.UpdateProduct(id, &req, actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product.ToResponse(),
	})
}

// DeleteProduct soft deletes a product (admin only)
// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.catalog.DeleteProduct(id, actor); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// GetCategories lists distinct categories across active products
// GET /api/categories
func (h *ProductHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": categories, "total": len(categories)})
}

// GetSuppliers lists distinct suppliers across active products
// GET /api/suppliers
func (h *ProductHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.catalog.Suppliers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": suppliers, "total": len(suppliers)})
}
