package cardgateway

// ApprovedCode is the response code of a successful charge.
const ApprovedCode = "00"

// ChargeRequest is one card charge against a hosted-tokenized card.
type ChargeRequest struct {
	MerchantID     string `json:"merchant_id"`
	Amount         string `json:"amount"` // decimal string, e.g. "499.95"
	Currency       string `json:"currency"`
	PostalCode     string `json:"postal_code"`
	Token          string `json:"token"`
	OrderReference string `json:"order_reference,omitempty"`
}

// ChargeResponse is the gateway verdict. Declines arrive as HTTP 200 with a
// non-approved response code.
type ChargeResponse struct {
	ResponseCode  string `json:"response_code"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
}

// Approved reports whether the charge succeeded.
func (r *ChargeResponse) Approved() bool {
	return r.ResponseCode == ApprovedCode
}

// ErrorResponse is the body of a non-200 gateway response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
