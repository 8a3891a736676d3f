package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full route table against an in-memory database,
// mirroring the wiring in cmd/api.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Product{}, &model.StockMovement{}))

	wsHub := ws.NewHub()
	go wsHub.Run()

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)

	authService := service.NewAuthService(userRepo)
	catalogService := service.NewCatalogService(productRepo, movementRepo, db, wsHub)
	ledgerService := service.NewLedgerService(productRepo, movementRepo, db, wsHub)

	authHandler := NewAuthHandler(authService)
	productHandler := NewProductHandler(catalogService)
	stockHandler := NewStockHandler(ledgerService)
	reportHandler := NewReportHandler(productRepo)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/health", Health)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.OptionalAuth(userRepo), authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/me", middleware.RequireAuth(userRepo), authHandler.Me)
	auth.Put("/change-password", middleware.RequireAuth(userRepo), authHandler.ChangePassword)
	auth.Put("/change-role", middleware.RequireAuth(userRepo), middleware.RequireAdmin(), authHandler.ChangeRole)

	protected := api.Group("", middleware.RequireAuth(userRepo))
	protected.Get("/products", productHandler.ListProducts)
	protected.Post("/products", middleware.RequireAdmin(), productHandler.CreateProduct)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Put("/products/:id", middleware.RequireAdmin(), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireAdmin(), productHandler.DeleteProduct)
	protected.Put("/products/:id/stock", middleware.RequireAdmin(), stockHandler.UpdateStock)
	protected.Get("/products/:id/movements", stockHandler.GetMovements)
	protected.Get("/categories", productHandler.GetCategories)
	protected.Get("/suppliers", productHandler.GetSuppliers)
	protected.Get("/reports/inventory", reportHandler.InventoryReport)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

// registerAndLogin creates a user with the given role and returns an
// access token for it.
func registerAndLogin(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()

	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "Str0ng!Pass",
		"role":     role,
	})
	require.Equal(t, 201, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": username,
		"password": "Str0ng!Pass",
	})
	require.Equal(t, 200, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/health", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	token := registerAndLogin(t, app, "jdoe", "employee")

	resp, body := doJSON(t, app, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "jdoe", user["username"])

	// Missing token.
	resp, body = doJSON(t, app, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, 401, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	// Wrong credentials.
	resp, _ = doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "jdoe",
		"password": "bad",
	})
	assert.Equal(t, 401, resp.StatusCode)

	// Duplicate registration.
	resp, _ = doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "jdoe",
		"email":    "jdoe@example.com",
		"password": "Str0ng!Pass",
	})
	assert.Equal(t, 409, resp.StatusCode)
}

func TestRefreshFlow(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "jdoe",
		"email":    "jdoe@example.com",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, 201, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "jdoe",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, 200, resp.StatusCode)
	refresh := body["refresh_token"].(string)

	resp, body = doJSON(t, app, "POST", "/api/auth/refresh", "", map[string]interface{}{
		"refresh_token": refresh,
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApp(t)

	adminToken := registerAndLogin(t, app, "boss", "admin")
	employeeToken := registerAndLogin(t, app, "worker", "employee")

	// Create with initial stock.
	resp, body := doJSON(t, app, "POST", "/api/products", adminToken, map[string]interface{}{
		"sku":               "laptop-001",
		"product_name":      "Laptop",
		"category":          "Electronics",
		"supplier":          "Acme Corp",
		"unit_price":        1200,
		"quantity_in_stock": 25,
	})
	require.Equal(t, 201, resp.StatusCode)
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "LAPTOP-001", product["sku"])
	assert.Equal(t, false, product["is_low_stock"])
	productID := product["id"].(string)

	// Employee writes are forbidden.
	resp, _ = doJSON(t, app, "POST", "/api/products", employeeToken, map[string]interface{}{
		"sku": "X-1", "product_name": "X", "category": "C", "supplier": "S", "unit_price": 1,
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/api/products/"+productID, employeeToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	// Employee reads are fine.
	resp, body = doJSON(t, app, "GET", "/api/products?category=Electronics", employeeToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	// Record a stock-out.
	resp, body = doJSON(t, app, "PUT", "/api/products/"+productID+"/stock", adminToken, map[string]interface{}{
		"movement_type": "stock-out",
		"quantity":      10,
	})
	require.Equal(t, 200, resp.StatusCode)
	movement := body["movement"].(map[string]interface{})
	assert.Equal(t, float64(25), movement["previous_quantity"])
	assert.Equal(t, float64(15), movement["new_quantity"])

	// Over-draining fails with a 400 and does not change stock.
	resp, body = doJSON(t, app, "PUT", "/api/products/"+productID+"/stock", adminToken, map[string]interface{}{
		"movement_type": "stock-out",
		"quantity":      100,
	})
	assert.Equal(t, 400, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	// Ledger history: INITIAL plus one stock-out, newest first.
	resp, body = doJSON(t, app, "GET", "/api/products/"+productID+"/movements", employeeToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])
	items := body["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "stock-out", first["movement_type"])

	// Admin soft delete, then the product is gone.
	resp, _ = doJSON(t, app, "DELETE", "/api/products/"+productID, adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/products/"+productID, adminToken, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDuplicateSKUReturns409(t *testing.T) {
	app := newTestApp(t)
	adminToken := registerAndLogin(t, app, "boss", "admin")

	create := map[string]interface{}{
		"sku": "LAPTOP-001", "product_name": "Laptop", "category": "C", "supplier": "S", "unit_price": 10,
	}
	resp, _ := doJSON(t, app, "POST", "/api/products", adminToken, create)
	require.Equal(t, 201, resp.StatusCode)

	create["sku"] = "laptop-001"
	resp, body := doJSON(t, app, "POST", "/api/products", adminToken, create)
	assert.Equal(t, 409, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestChangeRoleEndpoint(t *testing.T) {
	app := newTestApp(t)

	adminToken := registerAndLogin(t, app, "boss", "admin")
	registerAndLogin(t, app, "worker", "employee")

	// Look up the worker's ID via login response.
	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "worker",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, 200, resp.StatusCode)
	workerID := body["user"].(map[string]interface{})["id"].(string)
	workerToken := body["access_token"].(string)

	// Employee cannot change roles.
	resp, _ = doJSON(t, app, "PUT", "/api/auth/change-role", workerToken, map[string]interface{}{
		"user_id": workerID,
		"role":    "admin",
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp, body = doJSON(t, app, "PUT", "/api/auth/change-role", adminToken, map[string]interface{}{
		"user_id": workerID,
		"role":    "admin",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])
}

func TestCategoriesSuppliersAndReport(t *testing.T) {
	app := newTestApp(t)
	adminToken := registerAndLogin(t, app, "boss", "admin")

	for i, category := range []string{"Electronics", "Furniture"} {
		resp, _ := doJSON(t, app, "POST", "/api/products", adminToken, map[string]interface{}{
			"sku":               fmt.Sprintf("SKU-%d", i),
			"product_name":      fmt.Sprintf("Product %d", i),
			"category":          category,
			"supplier":          "Acme",
			"unit_price":        10,
			"quantity_in_stock": 2,
			"min_stock_level":   5,
		})
		require.Equal(t, 201, resp.StatusCode)
	}

	resp, body := doJSON(t, app, "GET", "/api/categories", adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])

	resp, body = doJSON(t, app, "GET", "/api/suppliers", adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []interface{}{"Acme"}, body["items"])

	resp, body = doJSON(t, app, "GET", "/api/reports/inventory", adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(2), body["total_products"])
	assert.Equal(t, float64(2), body["low_stock_count"])
	assert.Equal(t, float64(40), body["total_valuation"])
}
