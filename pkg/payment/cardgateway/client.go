package cardgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/statelink/statelink-backend/pkg/logger"
)

// Client represents a card gateway API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new card gateway client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Currency == "" {
		config.Currency = "USD"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Charge submits one charge. A declined card is not an error: inspect
// ChargeResponse.Approved. Errors mean the outcome is unknown or the
// request was rejected before authorization. There is no retry.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	req.MerchantID = c.config.MerchantID
	if req.Currency == "" {
		req.Currency = c.config.Currency
	}

	resp, err := c.doRequest(ctx, "charges", req)
	if err != nil {
		return nil, fmt.Errorf("failed to make charge request: %w", err)
	}

	var chargeResp ChargeResponse
	if err := json.Unmarshal(resp, &chargeResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal charge response: %w", err)
	}

	logger.Info("Card gateway charge completed", map[string]interface{}{
		"order_reference": req.OrderReference,
		"amount":          req.Amount,
		"response_code":   chargeResp.ResponseCode,
		"transaction_id":  chargeResp.TransactionID,
	})
	return &chargeResp, nil
}

// doRequest performs an HTTP request to the gateway API
func (c *Client) doRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)
	logger.Debug("Card gateway request", map[string]interface{}{
		"url": url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		errorMsg := fmt.Sprintf("status %d, code %q, message %q", resp.StatusCode, errResp.Code, errResp.Message)

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrGatewayError, errorMsg)
		}
	}

	return body, nil
}
