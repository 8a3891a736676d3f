package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-api/internal/handler"
	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/internal/ws"
	"go-inventory-api/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.User{}, &model.Product{}, &model.StockMovement{})

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)

	authService := service.NewAuthService(userRepo)
	catalogService := service.NewCatalogService(productRepo, movementRepo, db, wsHub)
	ledgerService := service.NewLedgerService(productRepo, movementRepo, db, wsHub)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(catalogService)
	stockHandler := handler.NewStockHandler(ledgerService)
	reportHandler := handler.NewReportHandler(productRepo)

	// 5. Seed default admin user
	seedDefaultAdmin(userRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Smart Inventory API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	api.Get("/health", handler.Health)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.OptionalAuth(userRepo), authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// ============ PROTECTED ROUTES ============
	auth.Get("/me", middleware.RequireAuth(userRepo), authHandler.Me)
	auth.Put("/change-password", middleware.RequireAuth(userRepo), authHandler.ChangePassword)
	auth.Put("/change-role", middleware.RequireAuth(userRepo), middleware.RequireAdmin(), authHandler.ChangeRole)

	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Product routes: reads for any authenticated user, writes admin only
	protected.Get("/products", productHandler.ListProducts)
	protected.Post("/products", middleware.RequireAdmin(), productHandler.CreateProduct)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Put("/products/:id", middleware.RequireAdmin(), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireAdmin(), productHandler.DeleteProduct)

	// Stock ledger routes
	protected.Put("/products/:id/stock", middleware.RequireAdmin(), stockHandler.UpdateStock)
	protected.Get("/products/:id/movements", stockHandler.GetMovements)

	// Lookup and report routes
	protected.Get("/categories", productHandler.GetCategories)
	protected.Get("/suppliers", productHandler.GetSuppliers)
	protected.Get("/reports/inventory", reportHandler.InventoryReport)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedDefaultAdmin creates the bootstrap admin account when no admin exists
func seedDefaultAdmin(userRepo repository.UserRepository) {
	count, err := userRepo.CountByRole(model.RoleAdmin)
	if err != nil {
		log.Printf("Warning: failed to check for admin users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@123"
	}

	admin := &model.User{
		Username:  username,
		Email:     email,
		Role:      model.RoleAdmin,
		FirstName: "System",
		LastName:  "Administrator",
		IsActive:  true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s", username)
}
