package service

import (
	"testing"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database. The pool is capped at
// one connection so every query sees the same sqlite memory instance.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Product{}, &model.StockMovement{}))
	return db
}

// newTestHub returns a running hub so broadcasts are drained.
func newTestHub() *ws.Hub {
	hub := ws.NewHub()
	go hub.Run()
	return hub
}

func adminActor() model.Actor {
	return model.Actor{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
}

func employeeActor() model.Actor {
	return model.Actor{ID: uuid.New(), Email: "employee@example.com", Role: model.RoleEmployee}
}

func newCatalog(t *testing.T, db *gorm.DB) CatalogService {
	t.Helper()
	return NewCatalogService(repository.NewProductRepo(db), repository.NewMovementRepo(db), db, newTestHub())
}

func newLedger(t *testing.T, db *gorm.DB) LedgerService {
	t.Helper()
	return NewLedgerService(repository.NewProductRepo(db), repository.NewMovementRepo(db), db, newTestHub())
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

// createProduct inserts a product through the catalog service.
func createProduct(t *testing.T, catalog CatalogService, sku string, qty int) *model.Product {
	t.Helper()
	product, err := catalog.CreateProduct(&CreateProductRequest{
		SKU:             sku,
		Name:            "Product " + sku,
		Category:        "Electronics",
		Supplier:        "Acme Corp",
		UnitPrice:       99.99,
		QuantityInStock: intPtr(qty),
	}, adminActor())
	require.NoError(t, err)
	return product
}
