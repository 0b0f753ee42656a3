package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pharma-store/internal/handler"
	"go-pharma-store/internal/middleware"
	"go-pharma-store/internal/model"
	"go-pharma-store/internal/notification"
	"go-pharma-store/internal/payment"
	"go-pharma-store/internal/repository"
	"go-pharma-store/internal/service"
	"go-pharma-store/internal/ws"
	"go-pharma-store/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Product{}, &model.CartLine{}, &model.Order{}, &model.OrderItem{}, &model.User{})

	// 3. Seed default admin account and starter catalog
	seedAdmin(db)
	seedCatalog(db)

	// 4. Setup WebSocket Hub (push notification transport)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewCartRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	txManager := repository.NewTxManager(db)

	dispatcher := notification.NewHubDispatcher(wsHub)
	gateway := payment.NewHostedGateway()

	voucherCode := os.Getenv("VOUCHER_CODE")
	if voucherCode == "" {
		voucherCode = "PHARMA10"
	}
	pricing := service.NewPricingEngine(voucherCode)

	cartService := service.NewCartService(cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(cartRepo, productRepo, orderRepo, userRepo, txManager, pricing, gateway, dispatcher)
	invService := service.NewInventoryService(productRepo, userRepo, dispatcher)
	orderService := service.NewOrderService(orderRepo, userRepo, dispatcher)
	authService := service.NewAuthService(userRepo)

	cartHandler := handler.NewCartHandler(cartService, pricing)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	invHandler := handler.NewInventoryHandler(invService)
	orderHandler := handler.NewOrderHandler(orderService)
	authHandler := handler.NewAuthHandler(authService, userRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Pharma Store v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Storefront catalog is browsable without a session
	api.Get("/products", invHandler.GetProducts)
	api.Get("/products/:id", invHandler.GetProduct)

	// Payment provider redirects land here without our bearer token
	api.Get("/checkout/ewallet/callback", checkoutHandler.EwalletCallback)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Post("/devices", authHandler.RegisterDevice)

	// Cart
	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:id", cartHandler.SetQuantity)
	protected.Delete("/cart/items/:id", cartHandler.RemoveItem)

	// Checkout
	protected.Post("/checkout/cash", checkoutHandler.CashCheckout)
	protected.Post("/checkout/ewallet/session", checkoutHandler.CreateEwalletSession)

	// Order history
	protected.Get("/orders", orderHandler.History)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	// ============ ADMIN ROUTES ============
	admin := protected.Group("", middleware.RequireAdmin())

	admin.Post("/products", invHandler.CreateProduct)
	admin.Put("/products/:id", invHandler.UpdateProduct)
	admin.Post("/products/:id/restock", invHandler.Restock)
	admin.Post("/products/:id/adjust", invHandler.Adjust)

	admin.Get("/admin/orders", orderHandler.ListByStatus)
	admin.Put("/admin/orders/:id/confirm", orderHandler.Confirm)

	admin.Get("/admin/alerts/low-stock", invHandler.LowStock)
	admin.Get("/admin/alerts/expiring", invHandler.NearingExpiry)
	admin.Get("/admin/dashboard/stats", invHandler.GetDashboardStats)

	admin.Get("/admin/users", authHandler.GetUsers)
	admin.Post("/admin/users", authHandler.CreateUser)

	// WebSocket Route (push notification delivery)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		token := c.Query("token")
		wsHub.Register <- ws.Registration{Conn: c, Token: token}
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

// seedAdmin creates the default staff account if it doesn't exist
func seedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Pharmacy Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := db.Create(admin).Error; err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created: admin@example.com")
	}
}

// seedCatalog loads a starter shelf so the storefront is browsable on first boot
func seedCatalog(db *gorm.DB) {
	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count > 0 {
		return
	}

	products := []model.Product{
		{
			SKU:      "PR-PARA-500",
			Name:     "Paracetamol 500mg",
			Category: model.CategoryPainRelief,
			Price:    decimal.NewFromFloat(4.5),
			Stock:    120,
			Dosages:  []string{"500mg"},
			Purposes: []string{"fever", "headache"},
		},
		{
			SKU:                  "AB-AMOX",
			Name:                 "Amoxicillin",
			Category:             model.CategoryAntibiotics,
			Price:                decimal.NewFromFloat(12),
			Stock:                60,
			RequiresPrescription: true,
			Dosages:              []string{"250mg", "500mg"},
			Purposes:             []string{"bacterial infection"},
		},
		{
			SKU:      "VT-C-1000",
			Name:     "Vitamin C 1000mg",
			Category: model.CategoryVitamins,
			Price:    decimal.NewFromFloat(8.75),
			Stock:    200,
			Purposes: []string{"immunity"},
		},
		{
			SKU:      "FA-BAND-STD",
			Name:     "Adhesive Bandages",
			Category: model.CategoryFirstAid,
			Price:    decimal.NewFromFloat(3.25),
			Stock:    80,
		},
	}

	for i := range products {
		products[i].CreatedBy = "system"
		products[i].UpdatedBy = "system"
	}
	if err := db.Create(&products).Error; err != nil {
		log.Printf("Warning: Failed to seed catalog: %v", err)
	} else {
		log.Printf("Seeded %d catalog products", len(products))
	}
}
