package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway stands in for the payment processor in tests.
type fakeGateway struct {
	customers    int
	sales        int
	failSale     bool
	lastCustomer string
	lastAmount   decimal.Decimal
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email string) (string, error) {
	g.customers++
	return fmt.Sprintf("cust-%d", g.customers), nil
}

func (g *fakeGateway) GenerateClientToken(_ context.Context, customerID string) (string, error) {
	return "token-" + customerID, nil
}

func (g *fakeGateway) Sale(_ context.Context, customerID, nonce string, amount decimal.Decimal) (string, error) {
	if g.failSale {
		return "", errors.New("processor declined")
	}
	g.sales++
	g.lastCustomer = customerID
	g.lastAmount = amount
	return fmt.Sprintf("tx-%d", g.sales), nil
}

func setupCheckoutServiceTest(t *testing.T) (CheckoutService, *fakeGateway, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	checkoutRepo := repository.NewCheckoutRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	gateway := &fakeGateway{}
	checkoutService := NewCheckoutService(checkoutRepo, userRepo, gateway)

	return checkoutService, gateway, testDB
}

func TestCheckoutService_ResolveGuest_Success(t *testing.T) {
	checkoutService, _, _ := setupCheckoutServiceTest(t)

	checkout, err := checkoutService.ResolveGuest("Guest@Example.com ", "guest@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "guest@example.com", checkout.Email)
	assert.Nil(t, checkout.UserID)
}

func TestCheckoutService_ResolveGuest_SameEmailSameProfile(t *testing.T) {
	checkoutService, _, _ := setupCheckoutServiceTest(t)

	first, err := checkoutService.ResolveGuest("guest@example.com", "guest@example.com")
	require.NoError(t, err)

	second, err := checkoutService.ResolveGuest("guest@example.com", "guest@example.com")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCheckoutService_ResolveGuest_Mismatch(t *testing.T) {
	checkoutService, _, _ := setupCheckoutServiceTest(t)

	_, err := checkoutService.ResolveGuest("guest@example.com", "other@example.com")
	assert.ErrorIs(t, err, ErrEmailMismatch)

	_, err = checkoutService.ResolveGuest("", "")
	assert.ErrorIs(t, err, ErrEmailMismatch)
}

func TestCheckoutService_ResolveGuest_RegisteredEmail(t *testing.T) {
	checkoutService, _, testDB := setupCheckoutServiceTest(t)

	user := &model.User{Email: "member@example.com", Name: "Member"}
	require.NoError(t, testDB.Create(user).Error)

	_, err := checkoutService.ResolveGuest("member@example.com", "member@example.com")
	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestCheckoutService_ResolveUser_CreatesProfile(t *testing.T) {
	checkoutService, _, testDB := setupCheckoutServiceTest(t)

	user := &model.User{Email: "member@example.com", Name: "Member"}
	require.NoError(t, testDB.Create(user).Error)

	checkout, err := checkoutService.ResolveUser(user.ID, user.Email)
	assert.NoError(t, err)
	require.NotNil(t, checkout.UserID)
	assert.Equal(t, user.ID, *checkout.UserID)
	assert.Equal(t, "member@example.com", checkout.Email)
}

func TestCheckoutService_ResolveUser_BindsGuestProfile(t *testing.T) {
	checkoutService, _, testDB := setupCheckoutServiceTest(t)

	// The visitor checked out as a guest before registering
	guest, err := checkoutService.ResolveGuest("shopper@example.com", "shopper@example.com")
	require.NoError(t, err)
	require.Nil(t, guest.UserID)

	user := &model.User{Email: "shopper@example.com", Name: "Shopper"}
	require.NoError(t, testDB.Create(user).Error)

	bound, err := checkoutService.ResolveUser(user.ID, user.Email)
	assert.NoError(t, err)
	assert.Equal(t, guest.ID, bound.ID)
	require.NotNil(t, bound.UserID)
	assert.Equal(t, user.ID, *bound.UserID)
}

func TestCheckoutService_EnsureCustomerRef_Lazy(t *testing.T) {
	checkoutService, gateway, _ := setupCheckoutServiceTest(t)

	checkout, err := checkoutService.ResolveGuest("guest@example.com", "guest@example.com")
	require.NoError(t, err)

	ref, err := checkoutService.EnsureCustomerRef(context.Background(), checkout.ID)
	assert.NoError(t, err)
	assert.Equal(t, "cust-1", ref)

	// The stored ref is reused, no second customer is created
	ref, err = checkoutService.EnsureCustomerRef(context.Background(), checkout.ID)
	assert.NoError(t, err)
	assert.Equal(t, "cust-1", ref)
	assert.Equal(t, 1, gateway.customers)
}

func TestCheckoutService_ClientToken(t *testing.T) {
	checkoutService, _, _ := setupCheckoutServiceTest(t)

	checkout, err := checkoutService.ResolveGuest("guest@example.com", "guest@example.com")
	require.NoError(t, err)

	token, err := checkoutService.ClientToken(context.Background(), checkout.ID)
	assert.NoError(t, err)
	assert.Equal(t, "token-cust-1", token)
}

func TestCheckoutService_GetProfile_NotFound(t *testing.T) {
	checkoutService, _, _ := setupCheckoutServiceTest(t)

	_, err := checkoutService.GetProfile(9999)
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}
