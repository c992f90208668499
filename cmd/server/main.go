package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mstasiak/storefront-backend/config"
	"github.com/mstasiak/storefront-backend/internal/app/controller"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/mstasiak/storefront-backend/internal/middleware"
	"github.com/mstasiak/storefront-backend/internal/router"
	"github.com/mstasiak/storefront-backend/internal/scheduler"
	"github.com/mstasiak/storefront-backend/internal/session"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/mstasiak/storefront-backend/pkg/payment/braintree"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:  logLevel,
		Format: logFormat,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize session store
	sessionStore, err := session.NewRedisStore(&cfg.Redis, cfg.Session.TTL)
	if err != nil {
		logger.Fatal("Failed to initialize session store", err)
	}
	defer func() {
		if err := sessionStore.Close(); err != nil {
			logger.Error("Failed to close session store", err)
		}
	}()

	// Initialize payment gateway
	gateway, err := braintree.NewGateway(braintree.Config{
		Environment: cfg.Payment.Braintree.Environment,
		MerchantID:  cfg.Payment.Braintree.MerchantID,
		PublicKey:   cfg.Payment.Braintree.PublicKey,
		PrivateKey:  cfg.Payment.Braintree.PrivateKey,
	})
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	checkoutRepo := repository.NewCheckoutRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, cfg.Checkout.TaxRate)
	checkoutService := service.NewCheckoutService(checkoutRepo, userRepo, gateway)
	addressService := service.NewAddressService(addressRepo)
	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		addressRepo,
		checkoutRepo,
		gateway,
		cfg.Checkout.ShippingFee,
	)

	// Initialize controllers
	productController := controller.NewProductController(catalogService)
	cartController := controller.NewCartController(cartService, sessionStore)
	checkoutController := controller.NewCheckoutController(
		checkoutService,
		addressService,
		cartService,
		orderService,
		sessionStore,
	)
	addressController := controller.NewAddressController(addressService)
	orderController := controller.NewOrderController(orderService, cartService, sessionStore)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore, cfg.Session.CookieName)

	// Start the abandoned cart reaper
	cartScheduler := scheduler.NewCartScheduler(cartService, cfg.Checkout.ReapSchedule, cfg.Checkout.CartMaxAge)
	if err := cartScheduler.Start(); err != nil {
		logger.Fatal("Failed to start cart scheduler", err)
	}
	defer cartScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		checkoutController,
		addressController,
		orderController,
		authMiddleware,
		sessionMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
