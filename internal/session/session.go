package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Data is the per-browser-session state carried across checkout requests.
// Every id in here is untrusted input: consumers must re-validate it against
// the store before acting on it.
type Data struct {
	CartID            *uint `json:"cart_id,omitempty"`
	OrderID           *uint `json:"order_id,omitempty"`
	CheckoutID        *uint `json:"checkout_id,omitempty"`
	BillingAddressID  *uint `json:"billing_address_id,omitempty"`
	ShippingAddressID *uint `json:"shipping_address_id,omitempty"`
	Finalized         bool  `json:"finalized,omitempty"` // set once the order has identity and addresses attached
}

// Store persists session data keyed by the opaque session id held in the
// browser cookie.
type Store interface {
	Load(ctx context.Context, sid string) (*Data, error)
	Save(ctx context.Context, sid string, data *Data) error
	Delete(ctx context.Context, sid string) error
}

// State is the checkout progress derived from session contents.
type State string

const (
	StateStart      State = "start"      // no checkout profile bound
	StateIdentified State = "identified" // profile bound, addresses not yet selected
	StateAddressed  State = "addressed"  // billing and shipping selected, order not finalized
	StateFinalized  State = "finalized"  // order carries profile and both addresses
)

// StateOf maps session contents to the checkout state. It is the single place
// that interprets which session keys are present; handlers branch on the
// result instead of probing keys themselves.
func StateOf(d *Data) State {
	if d == nil || d.CheckoutID == nil {
		return StateStart
	}
	if d.BillingAddressID == nil || d.ShippingAddressID == nil {
		return StateIdentified
	}
	if !d.Finalized {
		return StateAddressed
	}
	return StateFinalized
}
