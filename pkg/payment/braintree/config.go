package braintree

import "errors"

// Config holds the Braintree gateway credentials
type Config struct {
	Environment string // "sandbox" or "production"
	MerchantID  string
	PublicKey   string
	PrivateKey  string
}

// Validate checks that the required credentials are present
func (c Config) Validate() error {
	if c.MerchantID == "" {
		return errors.New("merchant id is required")
	}
	if c.PublicKey == "" {
		return errors.New("public key is required")
	}
	if c.PrivateKey == "" {
		return errors.New("private key is required")
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return errors.New("environment must be sandbox or production")
	}
	return nil
}
