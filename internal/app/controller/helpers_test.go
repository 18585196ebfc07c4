package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/app/wizard"
	"github.com/statelink/statelink-backend/internal/db"
	"github.com/statelink/statelink-backend/internal/middleware"
	"github.com/statelink/statelink-backend/pkg/payment/cardgateway"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	sessionCookie = "statelink_session"
	testSessionID = "3f1c2b7a-8d4e-4f6a-9b0c-5e7d8a9b1c2d"
)

func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedSampleBusinesses(testDB))
	return testDB
}

type stubGateway struct {
	mu       sync.Mutex
	response *cardgateway.ChargeResponse
	err      error
	charges  []cardgateway.ChargeRequest
}

func (g *stubGateway) Charge(_ context.Context, req cardgateway.ChargeRequest) (*cardgateway.ChargeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

func approvedResponse() *cardgateway.ChargeResponse {
	return &cardgateway.ChargeResponse{
		ResponseCode:  cardgateway.ApprovedCode,
		Message:       "APPROVAL",
		TransactionID: "txn-ctrl-1",
	}
}

// setupPublicRouter mounts the business and checkout routes the way the
// server does, backed by sqlite and an in-memory wizard store.
func setupPublicRouter(t *testing.T) (*gin.Engine, *gorm.DB, *stubGateway) {
	testDB := setupControllerDB(t)
	gateway := &stubGateway{response: approvedResponse()}

	businessRepo := repository.NewBusinessRepository(testDB)
	requestRepo := repository.NewComplianceRequestRepository(testDB)
	businessController := NewBusinessController(service.NewBusinessService(businessRepo))
	checkoutController := NewCheckoutController(service.NewCheckoutService(
		testDB, businessRepo, requestRepo, wizard.NewMemoryStore(time.Hour), gateway, nil,
	))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	session := middleware.NewSessionMiddleware(sessionCookie, time.Hour, false).Ensure()

	businesses := router.Group("/api/v1/businesses")
	businesses.GET("", businessController.Search)
	businesses.GET("/search", businessController.Autocomplete)
	businesses.GET("/:reference_id", businessController.GetBusiness)
	businesses.GET("/:reference_id/services", businessController.GetServices)
	businesses.POST("/:reference_id/compliance-requests", session, checkoutController.StartCheckout)

	router.GET("/api/v1/service-forms/:request_id", session, checkoutController.GetServiceForm)
	router.POST("/api/v1/service-forms/:request_id", session, checkoutController.SubmitServiceForm)
	router.GET("/api/v1/payments/:request_id", session, checkoutController.GetPayment)
	router.POST("/api/v1/payments/:request_id", session, checkoutController.SubmitPayment)
	router.GET("/api/v1/payments/:request_id/confirmation", session, checkoutController.GetConfirmation)

	return router, testDB, gateway
}

// doJSON performs a request carrying the test session cookie.
func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: testSessionID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
