package cardgateway

import "errors"

var (
	// ErrInvalidConfig is returned by NewClient for incomplete configuration
	ErrInvalidConfig = errors.New("invalid card gateway configuration")

	// ErrInvalidRequest is returned when the gateway rejects the request shape
	ErrInvalidRequest = errors.New("invalid charge request")

	// ErrUnauthorized is returned when the API key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrNetworkError is returned when the gateway could not be reached
	ErrNetworkError = errors.New("network error")

	// ErrGatewayError is returned for any other non-200 gateway response
	ErrGatewayError = errors.New("card gateway error")
)
