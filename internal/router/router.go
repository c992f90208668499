package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/config"
	"github.com/mstasiak/storefront-backend/internal/app/controller"
	"github.com/mstasiak/storefront-backend/internal/middleware"
)

type Router struct {
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	addressController  *controller.AddressController
	orderController    *controller.OrderController
	authMiddleware     *middleware.AuthMiddleware
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	addressController *controller.AddressController,
	orderController *controller.OrderController,
	authMiddleware *middleware.AuthMiddleware,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		addressController:  addressController,
		orderController:    orderController,
		authMiddleware:     authMiddleware,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	v1 := router.Group("/api/v1")
	// Every storefront route resolves the browser session and, when a bearer
	// token is present, the authenticated user.
	v1.Use(r.sessionMiddleware.Attach())
	v1.Use(r.authMiddleware.OptionalAuthenticate())
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/variations", r.productController.ListVariations)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.productController.CreateProduct,
			)
			products.PUT("/:id/variations",
				r.authMiddleware.Authenticate(),
				r.productController.UpdateVariations,
			)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.GET("/count", r.cartController.ItemCount)
			cart.POST("/items", r.cartController.UpsertItem)
			cart.DELETE("/items/:variation_id", r.cartController.RemoveItem)
		}

		checkout := v1.Group("/checkout")
		{
			checkout.GET("", r.checkoutController.GetCheckout)
			checkout.POST("/guest", r.checkoutController.GuestCheckout)
			checkout.POST("/addresses", r.checkoutController.SelectAddresses)
			checkout.POST("/finalize", r.checkoutController.Finalize)
			checkout.GET("/token", r.checkoutController.ClientToken)
		}

		addresses := v1.Group("/addresses")
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/pay", r.orderController.PayOrder)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
