package repository

import (
	"testing"
	"time"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (*gorm.DB, CartRepository, *model.Variation) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewCartRepository(testDB)

	product := &model.Product{
		Title:  "Test Product",
		Price:  decimal.RequireFromString("20.00"),
		Active: true,
	}
	testDB.Create(product)
	variation := &model.Variation{
		ProductID: product.ID,
		Title:     "Default",
		Price:     decimal.RequireFromString("20.00"),
		Active:    true,
	}
	testDB.Create(variation)

	return testDB, repo, variation
}

func TestCartRepository_CreateAndFind(t *testing.T) {
	_, repo, variation := setupCartRepositoryTest(t)

	cart := &model.Cart{}
	require.NoError(t, repo.CreateCart(cart))
	require.NotZero(t, cart.ID)

	item := &model.CartItem{CartID: cart.ID, VariationID: variation.ID, Quantity: 2}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindCartByID(cart.ID)
	assert.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, variation.ID, found.Items[0].Variation.ID)
}

func TestCartRepository_DuplicateLineRejected(t *testing.T) {
	_, repo, variation := setupCartRepositoryTest(t)

	cart := &model.Cart{}
	require.NoError(t, repo.CreateCart(cart))

	require.NoError(t, repo.CreateItem(&model.CartItem{
		CartID: cart.ID, VariationID: variation.ID, Quantity: 1,
	}))

	// The (cart_id, variation_id) unique index blocks a second line
	err := repo.CreateItem(&model.CartItem{
		CartID: cart.ID, VariationID: variation.ID, Quantity: 3,
	})
	assert.Error(t, err)
}

func TestCartRepository_DeleteItemFreesLine(t *testing.T) {
	_, repo, variation := setupCartRepositoryTest(t)

	cart := &model.Cart{}
	require.NoError(t, repo.CreateCart(cart))
	require.NoError(t, repo.CreateItem(&model.CartItem{
		CartID: cart.ID, VariationID: variation.ID, Quantity: 1,
	}))
	require.NoError(t, repo.DeleteItem(cart.ID, variation.ID))

	// The pair can be re-added after removal
	err := repo.CreateItem(&model.CartItem{
		CartID: cart.ID, VariationID: variation.ID, Quantity: 2,
	})
	assert.NoError(t, err)

	count, err := repo.CountItems(cart.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCartRepository_DeleteStaleAnonymous(t *testing.T) {
	testDB, repo, _ := setupCartRepositoryTest(t)

	userID := uint(1)
	testDB.Create(&model.User{Email: "buyer@example.com", Name: "Buyer"})

	anonymous := &model.Cart{}
	owned := &model.Cart{UserID: &userID}
	ordered := &model.Cart{}
	require.NoError(t, repo.CreateCart(anonymous))
	require.NoError(t, repo.CreateCart(owned))
	require.NoError(t, repo.CreateCart(ordered))

	testDB.Create(&model.Order{
		Status:        model.OrderStatusCreated,
		CartID:        ordered.ID,
		ShippingTotal: decimal.RequireFromString("5.99"),
	})

	// Age all carts past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, testDB.Model(&model.Cart{}).Where("1 = 1").
		Update("updated_at", old).Error)

	removed, err := repo.DeleteStaleAnonymous(time.Now().Add(-24 * time.Hour))
	assert.NoError(t, err)
	// Only the anonymous cart without an order goes
	assert.Equal(t, int64(1), removed)

	_, err = repo.FindCartByID(anonymous.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindCartByID(owned.ID)
	assert.NoError(t, err)
	_, err = repo.FindCartByID(ordered.ID)
	assert.NoError(t, err)
}
