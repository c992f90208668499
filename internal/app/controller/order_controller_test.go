package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/mstasiak/storefront-backend/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderControllerFixture struct {
	router   *gin.Engine
	sess     *session.Data
	order    *model.Order
	checkout *model.UserCheckout
	db       *gorm.DB
}

// setupOrderControllerTest builds a finalized 47.99 order owned by the
// session's checkout profile.
func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	checkoutRepo := repository.NewCheckoutRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	gateway := &fakeGateway{}

	cartService := service.NewCartService(cartRepo, productRepo, decimal.Zero)
	addressService := service.NewAddressService(addressRepo)
	orderService := service.NewOrderService(
		orderRepo, cartRepo, addressRepo, checkoutRepo, gateway,
		decimal.RequireFromString("5.99"),
	)

	sessionStore := session.NewMemoryStore()
	controller := NewOrderController(orderService, cartService, sessionStore)

	product := &model.Product{
		Title:  "Widget",
		Price:  decimal.RequireFromString("42.00"),
		Active: true,
	}
	testDB.Create(product)
	variation := &model.Variation{
		ProductID: product.ID,
		Title:     "Default",
		Price:     decimal.RequireFromString("42.00"),
		Active:    true,
	}
	testDB.Create(variation)

	cart, _, err := cartService.GetOrCreateCart(nil)
	require.NoError(t, err)
	_, _, err = cartService.UpsertItem(cart.ID, variation.ID, 1)
	require.NoError(t, err)

	checkout := &model.UserCheckout{Email: "guest@example.com"}
	require.NoError(t, testDB.Create(checkout).Error)
	billing := &model.UserAddress{
		Type: model.AddressBilling, Street: "1 Billing St", City: "Springfield", State: "IL", Zip: "62701",
	}
	shipping := &model.UserAddress{
		Type: model.AddressShipping, Street: "2 Shipping Ave", City: "Springfield", State: "IL", Zip: "62702",
	}
	require.NoError(t, addressService.Create(checkout.ID, billing))
	require.NoError(t, addressService.Create(checkout.ID, shipping))

	order, _, err := orderService.GetOrCreateOrder(cart.ID, nil)
	require.NoError(t, err)
	order, err = orderService.AttachIdentity(order.ID, checkout.ID, billing.ID, shipping.ID)
	require.NoError(t, err)

	sess := &session.Data{
		CartID:            &cart.ID,
		OrderID:           &order.ID,
		CheckoutID:        &checkout.ID,
		BillingAddressID:  &billing.ID,
		ShippingAddressID: &shipping.ID,
		Finalized:         true,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(attachSession("sid-1", sess))
	router.GET("/orders", controller.ListOrders)
	router.GET("/orders/:id", controller.GetOrder)
	router.POST("/orders/:id/pay", controller.PayOrder)

	return &orderControllerFixture{
		router:   router,
		sess:     sess,
		order:    order,
		checkout: checkout,
		db:       testDB,
	}
}

func (f *orderControllerFixture) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func TestOrderController_ListOrders(t *testing.T) {
	f := setupOrderControllerTest(t)

	w, response := f.do(t, http.MethodGet, "/orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["count"])
}

func TestOrderController_GetOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	w, response := f.do(t, http.MethodGet, "/orders/1")
	assert.Equal(t, http.StatusOK, w.Code)

	order := response["order"].(map[string]interface{})
	assert.Equal(t, "created", order["status"])
	assert.Equal(t, "47.99", order["order_total"])
}

func TestOrderController_GetOrder_ForeignOrderHidden(t *testing.T) {
	f := setupOrderControllerTest(t)

	// Detach the session from the order
	f.sess.OrderID = nil
	f.sess.CheckoutID = nil

	w, response := f.do(t, http.MethodGet, "/orders/1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", response["error"])
}

func TestOrderController_PayOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	w, response := f.do(t, http.MethodPost, "/orders/1/pay")
	assert.Equal(t, http.StatusOK, w.Code)

	order := response["order"].(map[string]interface{})
	assert.Equal(t, "paid", order["status"])
	assert.Equal(t, "tx-1", order["external_id"])

	// The checkout keys are cleared for the next purchase
	assert.Nil(t, f.sess.CartID)
	assert.Nil(t, f.sess.OrderID)
	assert.False(t, f.sess.Finalized)
}

func TestOrderController_PayOrder_NotFinalized(t *testing.T) {
	f := setupOrderControllerTest(t)

	// Strip identity from the order so it is no longer payable
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", f.order.ID).
		Updates(map[string]interface{}{
			"checkout_id":         nil,
			"billing_address_id":  nil,
			"shipping_address_id": nil,
		}).Error)

	w, response := f.do(t, http.MethodPost, "/orders/1/pay")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ORDER_NOT_PAYABLE", response["error"])
	assert.Equal(t, "finalize", response["redirect"])
}
