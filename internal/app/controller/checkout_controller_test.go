package controller

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/wizard"
	apperrors "github.com/statelink/statelink-backend/internal/errors"
	"github.com/statelink/statelink-backend/pkg/payment/cardgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startResponse struct {
	Code   string `json:"code"`
	Result struct {
		Step     wizard.Step `json:"step"`
		Requests []struct {
			ID          uint              `json:"id"`
			RequestType model.RequestType `json:"request_type"`
		} `json:"requests"`
		Duplicates    []model.RequestType `json:"duplicates"`
		NextRequestID uint                `json:"next_request_id"`
	} `json:"result"`
}

type stepResponse struct {
	Step             wizard.Step `json:"step"`
	NextRequestID    uint        `json:"next_request_id"`
	PaymentRequestID uint        `json:"payment_request_id"`
}

func operatingAgreementForm() map[string]interface{} {
	return map[string]interface{}{
		"member_names":          "John Smith, Jane Doe",
		"ownership_percentages": "50/50",
		"management_structure":  "MEMBER_MANAGED",
	}
}

func paymentBody() map[string]interface{} {
	return map[string]interface{}{
		"agrees_to_terms_digital_signature": true,
		"client_signature_text":             "John Smith",
		"card_token":                        "tok_visa",
		"postal_code":                       "27601",
	}
}

// startOperatingAgreement selects a single operating agreement for REF001.
func startOperatingAgreement(t *testing.T, router http.Handler) uint {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/businesses/REF001/compliance-requests", map[string]interface{}{
		"services": []string{"OPERATING_AGREEMENT"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var start startResponse
	decode(t, w, &start)
	require.Len(t, start.Result.Requests, 1)
	return start.Result.NextRequestID
}

func TestCheckoutController_HappyPath(t *testing.T) {
	router, _, gateway := setupPublicRouter(t)

	requestID := startOperatingAgreement(t, router)
	require.NotZero(t, requestID)

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/service-forms/%d", requestID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Title    string `json:"title"`
		Position int    `json:"position"`
		Total    int    `json:"total"`
	}
	decode(t, w, &view)
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, 1, view.Total)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/service-forms/%d", requestID), operatingAgreementForm())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var step stepResponse
	decode(t, w, &step)
	assert.Equal(t, wizard.StepAwaitingPayment, step.Step)
	require.NotZero(t, step.PaymentRequestID)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Quote struct {
			Total decimal.Decimal `json:"total"`
		} `json:"quote"`
	}
	decode(t, w, &summary)
	assert.Equal(t, "249.95", summary.Quote.Total.StringFixed(2))

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), paymentBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid struct {
		Step           wizard.Step `json:"step"`
		OrderReference string      `json:"order_reference"`
		TransactionID  string      `json:"transaction_id"`
	}
	decode(t, w, &paid)
	assert.Equal(t, wizard.StepPaid, paid.Step)
	assert.Contains(t, paid.OrderReference, "ORD-REF001-")
	assert.Equal(t, "txn-ctrl-1", paid.TransactionID)
	require.Len(t, gateway.charges, 1)
	assert.Equal(t, "249.95", gateway.charges[0].Amount)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d/confirmation", step.PaymentRequestID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var receipt struct {
		OrderReference string `json:"order_reference"`
	}
	decode(t, w, &receipt)
	assert.Equal(t, paid.OrderReference, receipt.OrderReference)

	// shown once
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d/confirmation", step.PaymentRequestID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// a paid checkout cannot be charged again
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), paymentBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	var errBody apperrors.ErrorResponse
	decode(t, w, &errBody)
	assert.Equal(t, apperrors.CheckoutAlreadyPaid, errBody.Error)
}

func TestCheckoutController_StartCheckout_Errors(t *testing.T) {
	router, _, _ := setupPublicRouter(t)

	tests := []struct {
		name       string
		ref        string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"unknown business", "NOPE", map[string]interface{}{"services": []string{"FEDERAL_EIN"}}, http.StatusNotFound, apperrors.BusinessNotFound},
		{"empty selection", "REF001", map[string]interface{}{"services": []string{}}, http.StatusBadRequest, apperrors.BusinessNoSelection},
		{"unknown code", "REF001", map[string]interface{}{"services": []string{"NOTARY"}}, http.StatusBadRequest, apperrors.BusinessUnknownCode},
		{"operating agreement for a corporation", "REF002", map[string]interface{}{"services": []string{"OPERATING_AGREEMENT"}}, http.StatusBadRequest, apperrors.BusinessNotOffered},
		{"bylaws for an LLC", "REF001", map[string]interface{}{"services": []string{"FEDERAL_EIN", "CORPORATE_BYLAWS"}}, http.StatusBadRequest, apperrors.BusinessNotOffered},
		{"malformed body", "REF001", "services", http.StatusBadRequest, apperrors.ValidationInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/businesses/"+tt.ref+"/compliance-requests", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			var errBody apperrors.ErrorResponse
			decode(t, w, &errBody)
			assert.Equal(t, tt.wantCode, errBody.Error)
		})
	}
}

func TestCheckoutController_AllDuplicates(t *testing.T) {
	router, testDB, _ := setupPublicRouter(t)

	require.NoError(t, testDB.Create(&model.ComplianceRequest{
		BusinessReferenceID: "REF001",
		RequestType:         model.RequestTypeOperatingAgreement,
		Status:              model.RequestStatusPending,
		Price:               decimal.RequireFromString("249.95"),
	}).Error)

	w := doJSON(t, router, http.MethodPost, "/api/v1/businesses/REF001/compliance-requests", map[string]interface{}{
		"services": []string{"OPERATING_AGREEMENT"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var start startResponse
	decode(t, w, &start)
	assert.Equal(t, apperrors.BusinessAllDuplicate, start.Code)
	assert.Equal(t, wizard.StepSelectingServices, start.Result.Step)
	assert.Equal(t, []model.RequestType{model.RequestTypeOperatingAgreement}, start.Result.Duplicates)
}

func TestCheckoutController_FormErrors(t *testing.T) {
	router, _, _ := setupPublicRouter(t)

	t.Run("no session yet", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/service-forms/1", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		var errBody apperrors.ErrorResponse
		decode(t, w, &errBody)
		assert.Equal(t, apperrors.CheckoutNoSession, errBody.Error)
	})

	requestID := startOperatingAgreement(t, router)

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/service-forms/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("payment before forms", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/payments/%d", requestID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		form := operatingAgreementForm()
		delete(form, "member_names")
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/service-forms/%d", requestID), form)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body apperrors.ValidationError
		decode(t, w, &body)
		assert.Equal(t, apperrors.ValidationInvalidInput, body.Error)
		assert.Contains(t, body.Fields, "member_names")
	})
}

func TestCheckoutController_PaymentDeclined(t *testing.T) {
	tests := []struct {
		name     string
		response *cardgateway.ChargeResponse
		err      error
		wantCode string
	}{
		{
			name:     "declined",
			response: &cardgateway.ChargeResponse{ResponseCode: "05", Message: "DECLINED"},
			wantCode: apperrors.PaymentDeclined,
		},
		{
			name:     "gateway down",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: apperrors.PaymentGatewayDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, gateway := setupPublicRouter(t)
			gateway.response = tt.response
			gateway.err = tt.err

			requestID := startOperatingAgreement(t, router)
			w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/service-forms/%d", requestID), operatingAgreementForm())
			require.Equal(t, http.StatusOK, w.Code)
			var step stepResponse
			decode(t, w, &step)

			w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), paymentBody())
			require.Equal(t, http.StatusPaymentRequired, w.Code, w.Body.String())
			var body struct {
				Error  string `json:"error"`
				Result struct {
					Step wizard.Step `json:"step"`
				} `json:"result"`
			}
			decode(t, w, &body)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, wizard.StepPaymentFailed, body.Result.Step)

			// retry succeeds once the card goes through
			gateway.response = approvedResponse()
			gateway.err = nil
			w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), paymentBody())
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestCheckoutController_PaymentValidation(t *testing.T) {
	router, _, gateway := setupPublicRouter(t)

	requestID := startOperatingAgreement(t, router)
	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/service-forms/%d", requestID), operatingAgreementForm())
	require.Equal(t, http.StatusOK, w.Code)
	var step stepResponse
	decode(t, w, &step)

	body := paymentBody()
	delete(body, "card_token")
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d", step.PaymentRequestID), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, gateway.charges)
}
