package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint {
	return &v
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		data *Data
		want State
	}{
		{
			name: "nil data",
			data: nil,
			want: StateStart,
		},
		{
			name: "empty session",
			data: &Data{},
			want: StateStart,
		},
		{
			name: "cart only",
			data: &Data{CartID: ptr(1)},
			want: StateStart,
		},
		{
			name: "identified",
			data: &Data{CartID: ptr(1), CheckoutID: ptr(2)},
			want: StateIdentified,
		},
		{
			name: "billing only",
			data: &Data{CheckoutID: ptr(2), BillingAddressID: ptr(3)},
			want: StateIdentified,
		},
		{
			name: "shipping only",
			data: &Data{CheckoutID: ptr(2), ShippingAddressID: ptr(4)},
			want: StateIdentified,
		},
		{
			name: "addressed",
			data: &Data{CheckoutID: ptr(2), BillingAddressID: ptr(3), ShippingAddressID: ptr(4)},
			want: StateAddressed,
		},
		{
			name: "finalized",
			data: &Data{
				CheckoutID:        ptr(2),
				BillingAddressID:  ptr(3),
				ShippingAddressID: ptr(4),
				OrderID:           ptr(5),
				Finalized:         true,
			},
			want: StateFinalized,
		},
		{
			name: "addresses without identity",
			data: &Data{BillingAddressID: ptr(3), ShippingAddressID: ptr(4)},
			want: StateStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(tt.data))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	data := &Data{CartID: ptr(7), CheckoutID: ptr(8)}
	require.NoError(t, store.Save(ctx, "sid-1", data))

	loaded, err := store.Load(ctx, "sid-1")
	assert.NoError(t, err)
	require.NotNil(t, loaded.CartID)
	assert.Equal(t, uint(7), *loaded.CartID)

	// Loaded data is a copy; mutating it does not leak into the store
	loaded.CartID = ptr(99)
	again, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, uint(7), *again.CartID)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
