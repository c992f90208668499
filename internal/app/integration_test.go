package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/controller"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/mstasiak/storefront-backend/internal/middleware"
	"github.com/mstasiak/storefront-backend/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGateway struct {
	customers int
	sales     int
}

func (g *stubGateway) CreateCustomer(_ context.Context, email string) (string, error) {
	g.customers++
	return fmt.Sprintf("cust-%d", g.customers), nil
}

func (g *stubGateway) GenerateClientToken(_ context.Context, customerID string) (string, error) {
	return "token-" + customerID, nil
}

func (g *stubGateway) Sale(_ context.Context, customerID, nonce string, amount decimal.Decimal) (string, error) {
	g.sales++
	return fmt.Sprintf("tx-%d", g.sales), nil
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	gateway *stubGateway
	cookies []*http.Cookie
}

func setupIntegrationTest(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	checkoutRepo := repository.NewCheckoutRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	gateway := &stubGateway{}

	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, decimal.Zero)
	checkoutService := service.NewCheckoutService(checkoutRepo, userRepo, gateway)
	addressService := service.NewAddressService(addressRepo)
	orderService := service.NewOrderService(
		orderRepo, cartRepo, addressRepo, checkoutRepo, gateway,
		decimal.RequireFromString("5.99"),
	)

	sessionStore := session.NewMemoryStore()

	productController := controller.NewProductController(catalogService)
	cartController := controller.NewCartController(cartService, sessionStore)
	checkoutController := controller.NewCheckoutController(
		checkoutService, addressService, cartService, orderService, sessionStore,
	)
	addressController := controller.NewAddressController(addressService)
	orderController := controller.NewOrderController(orderService, cartService, sessionStore)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore, "session_id")

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(sessionMiddleware.Attach())
	{
		v1.GET("/products", productController.ListProducts)
		v1.GET("/products/:id", productController.GetProduct)
		v1.GET("/cart", cartController.GetCart)
		v1.POST("/cart/items", cartController.UpsertItem)
		v1.GET("/checkout", checkoutController.GetCheckout)
		v1.POST("/checkout/guest", checkoutController.GuestCheckout)
		v1.POST("/checkout/addresses", checkoutController.SelectAddresses)
		v1.POST("/checkout/finalize", checkoutController.Finalize)
		v1.GET("/addresses", addressController.ListAddresses)
		v1.POST("/addresses", addressController.CreateAddress)
		v1.GET("/orders", orderController.ListOrders)
		v1.POST("/orders/:id/pay", orderController.PayOrder)
	}

	// Seed one purchasable product
	product := &model.Product{
		Title:  "Widget",
		Price:  decimal.RequireFromString("42.00"),
		Active: true,
	}
	require.NoError(t, catalogService.CreateProduct(product))

	return &testServer{router: router, db: testDB, gateway: gateway}
}

// do performs a request while carrying the session cookie between calls, the
// way a browser would.
func (s *testServer) do(t *testing.T, method, path string, payload interface{}) (int, map[string]interface{}) {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response
}

func TestGuestPurchaseFlow(t *testing.T) {
	server := setupIntegrationTest(t)

	// Browse the catalog
	code, response := server.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), response["count"])
	products := response["products"].([]interface{})
	product := products[0].(map[string]interface{})
	variations := product["variations"].([]interface{})
	variationID := variations[0].(map[string]interface{})["id"].(float64)

	// Add the default variation to the cart
	code, response = server.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"variation_id": variationID,
		"quantity":     1,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully added to the cart.", response["message"])

	// The checkout starts unidentified
	code, response = server.do(t, http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "start", response["state"])

	// Identify as a guest
	code, _ = server.do(t, http.MethodPost, "/api/v1/checkout/guest", map[string]string{
		"email":         "guest@example.com",
		"email_confirm": "guest@example.com",
	})
	require.Equal(t, http.StatusOK, code)

	// Add one address of each type
	code, response = server.do(t, http.MethodPost, "/api/v1/addresses", map[string]string{
		"type": "billing", "street": "1 Billing St", "city": "Springfield", "state": "IL", "zip": "62701",
	})
	require.Equal(t, http.StatusCreated, code)
	billingID := response["address"].(map[string]interface{})["id"].(float64)

	code, response = server.do(t, http.MethodPost, "/api/v1/addresses", map[string]string{
		"type": "shipping", "street": "2 Shipping Ave", "city": "Springfield", "state": "IL", "zip": "62702",
	})
	require.Equal(t, http.StatusCreated, code)
	shippingID := response["address"].(map[string]interface{})["id"].(float64)

	// Select the addresses
	code, response = server.do(t, http.MethodPost, "/api/v1/checkout/addresses", map[string]interface{}{
		"billing_address_id":  billingID,
		"shipping_address_id": shippingID,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "addressed", response["state"])

	// Finalize into an order
	code, response = server.do(t, http.MethodPost, "/api/v1/checkout/finalize", nil)
	require.Equal(t, http.StatusOK, code)
	order := response["order"].(map[string]interface{})
	assert.Equal(t, "created", order["status"])
	assert.Equal(t, "47.99", order["order_total"])
	orderID := order["id"].(float64)

	// Pay
	code, response = server.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%.0f/pay", orderID),
		map[string]string{"payment_nonce": "fake-valid-nonce"})
	require.Equal(t, http.StatusOK, code)
	paid := response["order"].(map[string]interface{})
	assert.Equal(t, "paid", paid["status"])
	assert.Equal(t, "tx-1", paid["external_id"])
	assert.Equal(t, 1, server.gateway.sales)

	// The order shows in the profile's history even after session keys reset
	code, response = server.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), response["count"])

	// A fresh cart is started on the next visit
	code, response = server.do(t, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, code)
	cart := response["cart"].(map[string]interface{})
	assert.Nil(t, cart["items"])
}

func TestCheckoutGuards(t *testing.T) {
	server := setupIntegrationTest(t)

	// Finalizing an unidentified session is bounced to the guest step
	code, response := server.do(t, http.MethodPost, "/api/v1/checkout/finalize", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "guest", response["redirect"])

	// Selecting addresses before adding any is bounced to the address step
	code, _ = server.do(t, http.MethodPost, "/api/v1/checkout/guest", map[string]string{
		"email":         "guest@example.com",
		"email_confirm": "guest@example.com",
	})
	require.Equal(t, http.StatusOK, code)

	code, response = server.do(t, http.MethodPost, "/api/v1/checkout/addresses", map[string]interface{}{
		"billing_address_id":  1,
		"shipping_address_id": 2,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "addresses", response["redirect"])
}
