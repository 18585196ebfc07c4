package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/db"
	"github.com/statelink/statelink-backend/pkg/payment/cardgateway"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedSampleBusinesses(testDB))
	return testDB
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []cardgateway.ChargeRequest
	response *cardgateway.ChargeResponse
	err      error
}

func approvingGateway() *fakeGateway {
	return &fakeGateway{response: &cardgateway.ChargeResponse{
		ResponseCode:  cardgateway.ApprovedCode,
		Message:       "APPROVAL",
		TransactionID: "txn-0001",
	}}
}

func (g *fakeGateway) Charge(_ context.Context, req cardgateway.ChargeRequest) (*cardgateway.ChargeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

func (g *fakeGateway) calls() []cardgateway.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]cardgateway.ChargeRequest(nil), g.requests...)
}

type publishedEvent struct {
	eventType string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, payload: payload})
	return nil
}

// bindPayload mimics gin's ShouldBindJSON for a service form.
func bindPayload(payload map[string]interface{}) func(ServiceForm) error {
	return func(form ServiceForm) error {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, form); err != nil {
			return err
		}
		return binding.Validator.ValidateStruct(form)
	}
}

func requestorPayload() map[string]interface{} {
	return map[string]interface{}{
		"requestor_first_name":   "Jane",
		"requestor_last_name":    "Doe",
		"requestor_email":        "jane.doe@acmetech.com",
		"requestor_phone_number": "919-555-0100",
		"business_name":          "Acme Technologies LLC",
	}
}

// validPayload returns a submission that passes validation for t.
func validPayload(t model.RequestType) map[string]interface{} {
	switch t {
	case model.RequestTypeFederalEIN:
		return map[string]interface{}{
			"ein_legal_structure":                 "LLC",
			"rp_first_name":                       "John",
			"rp_last_name":                        "Smith",
			"rp_ssn_itin":                         "123-45-6789",
			"rp_ssn_itin_type":                    "SSN",
			"responsible_party_title":             "Managing Member",
			"rp_email":                            "john.smith@acmetech.com",
			"rp_phone_number":                     "919-555-0101",
			"reason_for_ein":                      "NEW_BUSINESS",
			"llc_physical_state_location":         "NC",
			"llc_physical_street":                 "123 Main Street",
			"llc_physical_city":                   "Raleigh",
			"llc_physical_zip":                    "27601",
			"llc_legal_name_match_articles":       "Acme Technologies LLC",
			"llc_county_location":                 "Wake",
			"llc_state_of_organization":           "NC",
			"llc_accounting_year_closing_month":   "DECEMBER",
			"business_start_date":                 "2024-01-15",
			"expects_employees_w2_next_12_months": true,
			"primary_business_activity":           "RETAIL",
		}
	case model.RequestTypeOperatingAgreement:
		return map[string]interface{}{
			"member_names":          "John Smith, Jane Doe",
			"ownership_percentages": "50/50",
			"management_structure":  "MEMBER_MANAGED",
		}
	case model.RequestTypeCorporateBylaws, model.RequestTypeCertificateExistence:
		p := requestorPayload()
		p["purpose_of_request"] = "OPEN_BANKING_ACCOUNT"
		return p
	case model.RequestTypeAnnualReport:
		p := requestorPayload()
		p["principal_office_street"] = "123 Main Street"
		p["principal_office_city"] = "Raleigh"
		p["principal_office_state"] = "NC"
		p["principal_office_zip"] = "27601"
		p["officer_names"] = "John Smith"
		return p
	}
	return requestorPayload()
}
