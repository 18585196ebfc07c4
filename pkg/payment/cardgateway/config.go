package cardgateway

import "time"

// Config represents the configuration for the card gateway client
type Config struct {
	// APIKey authenticates the merchant against the gateway
	APIKey string

	// MerchantID identifies the merchant account charged
	MerchantID string

	// BaseURL is the gateway API base URL
	BaseURL string

	// Currency is sent with every charge. Defaults to USD.
	Currency string

	// Timeout bounds one charge round trip. Defaults to 30s.
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidConfig
	}
	if c.MerchantID == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
