package braintree

import (
	"context"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// Gateway is the payment processor contract the checkout flow depends on:
// create a customer keyed by email, issue client tokens for the payment form,
// and capture a sale against a customer.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	GenerateClientToken(ctx context.Context, customerID string) (string, error)
	Sale(ctx context.Context, customerID string, nonce string, amount decimal.Decimal) (string, error)
}

type gateway struct {
	bt *braintree.Braintree
}

// NewGateway initializes the Braintree SDK gateway
func NewGateway(cfg Config) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	return &gateway{
		bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey),
	}, nil
}

func (g *gateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	customer, err := g.bt.Customer().Create(ctx, &braintree.CustomerRequest{
		Email: email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return customer.Id, nil
}

func (g *gateway) GenerateClientToken(ctx context.Context, customerID string) (string, error) {
	token, err := g.bt.ClientToken().GenerateWithCustomer(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("failed to generate client token: %w", err)
	}
	return token, nil
}

func (g *gateway) Sale(ctx context.Context, customerID string, nonce string, amount decimal.Decimal) (string, error) {
	// Braintree amounts are unscaled integer + scale. For two decimal places:
	// "47.99" -> NewDecimal(4799, 2)
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	req := &braintree.TransactionRequest{
		Type:       "sale",
		Amount:     braintree.NewDecimal(cents, 2),
		CustomerID: customerID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}
	if nonce != "" {
		req.PaymentMethodNonce = nonce
	}

	tx, err := g.bt.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return "", fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return tx.Id, nil
}
