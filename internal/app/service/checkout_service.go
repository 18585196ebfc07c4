package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/pricing"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/wizard"
	"github.com/statelink/statelink-backend/pkg/logger"
	"github.com/statelink/statelink-backend/pkg/payment/cardgateway"
	"github.com/statelink/statelink-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrNoServicesSelected   = errors.New("no services selected")
	ErrRequestNotFound      = errors.New("compliance request not found")
	ErrNoCheckoutSession    = errors.New("no checkout in progress for this session")
	ErrCheckoutStale        = errors.New("checkout requests changed since intake")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrConfirmationNotReady = errors.New("checkout is not paid")
	ErrConfirmationConsumed = errors.New("confirmation already displayed")
	ErrPaymentNotRecorded   = errors.New("payment captured but not recorded")
)

// EventPaidOrder is published on every successful checkout.
const EventPaidOrder = "paid_order"

// Gateway charges a tokenized card.
type Gateway interface {
	Charge(ctx context.Context, req cardgateway.ChargeRequest) (*cardgateway.ChargeResponse, error)
}

// EventPublisher fans back-office events out to live subscribers.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// BindError wraps a form binding/validation failure.
type BindError struct {
	Err error
}

func (e *BindError) Error() string { return "invalid form: " + e.Err.Error() }
func (e *BindError) Unwrap() error { return e.Err }

// CheckoutStart is the outcome of the selection step.
type CheckoutStart struct {
	Step          wizard.Step               `json:"step"`
	Business      *model.Business           `json:"business"`
	Requests      []model.ComplianceRequest `json:"requests"`
	Duplicates    []model.RequestType       `json:"duplicates"`
	NextRequestID uint                      `json:"next_request_id,omitempty"`
	Quote         pricing.Quote             `json:"quote"`
}

// ServiceFormView is a form step ready to render.
type ServiceFormView struct {
	Title     string                   `json:"title"`
	Request   *model.ComplianceRequest `json:"request"`
	Detail    model.ServiceDetail      `json:"detail,omitempty"`
	Position  int                      `json:"position"`
	Total     int                      `json:"total"`
	Completed bool                     `json:"completed"`
}

// StepResult tells the client where the wizard goes next.
type StepResult struct {
	Step             wizard.Step `json:"step"`
	NextRequestID    uint        `json:"next_request_id,omitempty"`
	PaymentRequestID uint        `json:"payment_request_id,omitempty"`
}

type PaymentSummary struct {
	Step      wizard.Step               `json:"step"`
	Business  *model.Business           `json:"business"`
	Requests  []model.ComplianceRequest `json:"requests"`
	Quote     pricing.Quote             `json:"quote"`
	LastError string                    `json:"last_error,omitempty"`
}

// PaymentInput is the payment step submission.
type PaymentInput struct {
	AgreesToTerms       bool   `json:"agrees_to_terms_digital_signature" binding:"required"`
	ClientSignatureText string `json:"client_signature_text" binding:"required,max=255"`
	CardToken           string `json:"card_token" binding:"required"`
	PostalCode          string `json:"postal_code" binding:"required,max=10"`
}

type PaymentResult struct {
	Step           wizard.Step   `json:"step"`
	OrderReference string        `json:"order_reference,omitempty"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	Quote          pricing.Quote `json:"quote"`
	Message        string        `json:"message,omitempty"`
}

// PaidOrderEvent is the payload of EventPaidOrder.
type PaidOrderEvent struct {
	OrderReference string              `json:"order_reference"`
	TransactionID  string              `json:"transaction_id"`
	BusinessRef    string              `json:"business_ref"`
	BusinessName   string              `json:"business_name"`
	RequestTypes   []model.RequestType `json:"request_types"`
	Total          decimal.Decimal     `json:"total"`
	PaidAt         time.Time           `json:"paid_at"`
}

type CheckoutService interface {
	StartCheckout(ctx context.Context, sessionID, businessRef string, selection []pricing.ServiceCode) (*CheckoutStart, error)
	GetServiceForm(ctx context.Context, sessionID string, requestID uint) (*ServiceFormView, error)
	SubmitServiceForm(ctx context.Context, sessionID string, requestID uint, bind func(ServiceForm) error) (*StepResult, error)
	GetPaymentSummary(ctx context.Context, sessionID string, requestID uint) (*PaymentSummary, error)
	SubmitPayment(ctx context.Context, sessionID string, requestID uint, input PaymentInput) (*PaymentResult, error)
	GetConfirmation(ctx context.Context, sessionID string, requestID uint) (*wizard.PaymentInfo, error)
}

type checkoutService struct {
	db           *gorm.DB
	businessRepo repository.BusinessRepository
	requestRepo  repository.ComplianceRequestRepository
	detailRepo   repository.ServiceDetailRepository
	store        wizard.Store
	gateway      Gateway
	events       EventPublisher
	now          func() time.Time
}

// NewCheckoutService wires the wizard. events may be nil.
func NewCheckoutService(
	db *gorm.DB,
	businessRepo repository.BusinessRepository,
	requestRepo repository.ComplianceRequestRepository,
	store wizard.Store,
	gateway Gateway,
	events EventPublisher,
) CheckoutService {
	return &checkoutService{
		db:           db,
		businessRepo: businessRepo,
		requestRepo:  requestRepo,
		detailRepo:   repository.NewServiceDetailRepository(db),
		store:        store,
		gateway:      gateway,
		events:       events,
		now:          time.Now,
	}
}

func (s *checkoutService) StartCheckout(ctx context.Context, sessionID, businessRef string, selection []pricing.ServiceCode) (*CheckoutStart, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"session_id":   sessionID,
		"business_ref": businessRef,
		"selection":    selection,
	})

	business, err := s.findBusiness(businessRef)
	if err != nil {
		return nil, err
	}

	codes, err := pricing.Normalize(selection)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, ErrNoServicesSelected
	}
	if err := pricing.CheckOffered(codes, business.BusinessType); err != nil {
		return nil, err
	}

	var types []model.RequestType
	for _, code := range codes {
		types = append(types, pricing.Expand(code)...)
	}

	// Read-then-write without a lock: two sessions racing on the same
	// business can both pass the guard.
	open, err := s.requestRepo.FindByBusinessAndStatuses(business.ReferenceID, types, model.NonTerminalStatuses)
	if err != nil {
		return nil, err
	}
	taken := make(map[model.RequestType]bool, len(open))
	for _, r := range open {
		taken[r.RequestType] = true
	}

	duplicates := []model.RequestType{}
	requests := make([]model.ComplianceRequest, 0, len(types))
	for _, t := range types {
		if taken[t] {
			duplicates = append(duplicates, t)
			continue
		}
		price, _ := pricing.LinePrice(t)
		requests = append(requests, model.ComplianceRequest{
			BusinessReferenceID: business.ReferenceID,
			RequestType:         t,
			Status:              model.RequestStatusPending,
			Price:               price,
		})
	}

	quote, _ := pricing.Calculate(codes, business.BusinessType)
	result := &CheckoutStart{
		Step:       wizard.StepSelectingServices,
		Business:   business,
		Requests:   []model.ComplianceRequest{},
		Duplicates: duplicates,
		Quote:      quote,
	}

	if len(requests) == 0 {
		logger.Warn("Checkout not started: every selected service is already open", map[string]interface{}{
			"session_id":   sessionID,
			"business_ref": business.ReferenceID,
			"duplicates":   duplicates,
		})
		return result, nil
	}

	if err := s.requestRepo.CreateBatch(requests); err != nil {
		return nil, err
	}

	ids := make([]uint, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	state := wizard.New(sessionID, business.ReferenceID, business.BusinessType)
	if err := state.Begin(codes, ids, duplicates); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		logger.Error("Failed to save checkout state", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	result.Step = state.Step
	result.Requests = requests
	result.NextRequestID, _ = state.CurrentRequestID()

	logger.Info("Checkout started", map[string]interface{}{
		"session_id":   sessionID,
		"business_ref": business.ReferenceID,
		"request_ids":  ids,
		"duplicates":   duplicates,
	})
	return result, nil
}

func (s *checkoutService) GetServiceForm(ctx context.Context, sessionID string, requestID uint) (*ServiceFormView, error) {
	state, request, entry, err := s.openForm(ctx, sessionID, requestID)
	if err != nil {
		return nil, err
	}

	view := &ServiceFormView{
		Title:     entry.Title,
		Request:   request,
		Position:  indexOf(state.RequestIDs, requestID) + 1,
		Total:     len(state.RequestIDs),
		Completed: state.IsCompleted(requestID),
	}

	detail := entry.NewDetail()
	err = s.detailRepo.FindByComplianceRequestID(detail, requestID)
	switch {
	case err == nil:
		view.Detail = detail
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

func (s *checkoutService) SubmitServiceForm(ctx context.Context, sessionID string, requestID uint, bind func(ServiceForm) error) (*StepResult, error) {
	state, request, entry, err := s.openForm(ctx, sessionID, requestID)
	if err != nil {
		return nil, err
	}

	form := entry.NewForm()
	if err := bind(form); err != nil {
		return nil, &BindError{Err: err}
	}

	request.ApplyContact(form.Contact())
	if request.ApplicantReferenceID == "" {
		request.ApplicantReferenceID = request.BusinessReferenceID
	}
	if request.Status == model.RequestStatusPending {
		request.Status = model.RequestStatusInProgress
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := repository.NewServiceDetailRepository(tx).Upsert(form.Detail(requestID)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := repository.NewComplianceRequestRepository(tx).Update(request); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit service form", err, map[string]interface{}{
			"request_id": requestID,
		})
		return nil, err
	}

	done, err := state.CompleteForm(requestID)
	if err != nil {
		return nil, err
	}

	if done {
		if err := s.enterPayment(state); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	logger.Info("Service form accepted", map[string]interface{}{
		"session_id":   sessionID,
		"request_id":   requestID,
		"request_type": request.RequestType,
		"step":         state.Step,
	})

	result := &StepResult{Step: state.Step}
	if next, ok := state.CurrentRequestID(); ok {
		result.NextRequestID = next
	}
	if state.Step == wizard.StepAwaitingPayment {
		result.PaymentRequestID = state.PaymentRequestID()
	}
	return result, nil
}

// enterPayment derives the charge set from every request of the business
// whose intake is done, one per type with the newest winning, and marks it
// PAYMENT_PENDING.
func (s *checkoutService) enterPayment(state *wizard.State) error {
	ready, err := s.requestRepo.FindByBusinessAndStatuses(state.BusinessRef, nil, model.IntakeCompleteStatuses)
	if err != nil {
		return err
	}

	ids, superseded := splitChargeSet(ready)
	if len(superseded) > 0 {
		// Left open for the back office to complete or reconcile.
		logger.Warn("Older duplicate requests excluded from charge", map[string]interface{}{
			"session_id":     state.SessionID,
			"business_ref":   state.BusinessRef,
			"payment_ids":    ids,
			"superseded_ids": superseded,
		})
	}

	if _, err := s.requestRepo.UpdateStatusForIDs(ids, model.RequestStatusPaymentPending); err != nil {
		return err
	}

	requests, err := s.requestRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	quote := pricing.CalculateForRequests(requests, state.Selection, state.BusinessType)

	logger.Info("Checkout awaiting payment", map[string]interface{}{
		"session_id":  state.SessionID,
		"payment_ids": ids,
		"total":       quote.Total.StringFixed(2),
	})
	return state.AwaitPayment(ids, quote)
}

// splitChargeSet keeps the first request of each type from ready, which is
// ordered newest first. The rest are returned as superseded. Both lists
// are sorted by id.
func splitChargeSet(ready []model.ComplianceRequest) (charge, superseded []uint) {
	seen := make(map[model.RequestType]bool, len(ready))
	for _, r := range ready {
		if seen[r.RequestType] {
			superseded = append(superseded, r.ID)
			continue
		}
		seen[r.RequestType] = true
		charge = append(charge, r.ID)
	}
	sort.Slice(charge, func(i, j int) bool { return charge[i] < charge[j] })
	sort.Slice(superseded, func(i, j int) bool { return superseded[i] < superseded[j] })
	return charge, superseded
}

func (s *checkoutService) GetPaymentSummary(ctx context.Context, sessionID string, requestID uint) (*PaymentSummary, error) {
	state, err := s.loadPaymentState(ctx, sessionID, requestID)
	if err != nil {
		return nil, err
	}
	if err := state.CanPay(); err != nil {
		return nil, err
	}

	business, err := s.findBusiness(state.BusinessRef)
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.FindByIDs(state.PaymentIDs)
	if err != nil {
		return nil, err
	}

	quote := pricing.CalculateForRequests(requests, state.Selection, state.BusinessType)
	state.SetQuote(quote)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	return &PaymentSummary{
		Step:      state.Step,
		Business:  business,
		Requests:  requests,
		Quote:     quote,
		LastError: state.LastError,
	}, nil
}

func (s *checkoutService) SubmitPayment(ctx context.Context, sessionID string, requestID uint, input PaymentInput) (*PaymentResult, error) {
	state, err := s.loadPaymentState(ctx, sessionID, requestID)
	if err != nil {
		return nil, err
	}
	if err := state.CanPay(); err != nil {
		return nil, err
	}

	business, err := s.findBusiness(state.BusinessRef)
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.FindByIDs(state.PaymentIDs)
	if err != nil {
		return nil, err
	}
	if len(requests) != len(state.PaymentIDs) {
		return nil, ErrCheckoutStale
	}
	for _, r := range requests {
		if r.Status == model.RequestStatusPaid || r.Status == model.RequestStatusCompleted {
			return nil, ErrCheckoutStale
		}
	}

	quote := pricing.CalculateForRequests(requests, state.Selection, state.BusinessType)
	state.SetQuote(quote)

	now := s.now()
	orderRef := util.OrderReference(business.ReferenceID, now)

	logger.Info("Charging card", map[string]interface{}{
		"session_id":      sessionID,
		"order_reference": orderRef,
		"amount":          quote.Total.StringFixed(2),
	})

	resp, err := s.gateway.Charge(ctx, cardgateway.ChargeRequest{
		Amount:         quote.Total.StringFixed(2),
		Currency:       "USD",
		PostalCode:     input.PostalCode,
		Token:          input.CardToken,
		OrderReference: orderRef,
	})
	if err != nil {
		logger.Error("Card gateway call failed", err, map[string]interface{}{
			"session_id":      sessionID,
			"order_reference": orderRef,
		})
		return s.failPayment(ctx, state, quote, "We could not reach the payment processor. Please try again.", ErrGatewayUnavailable)
	}
	if !resp.Approved() {
		logger.Warn("Card declined", map[string]interface{}{
			"session_id":      sessionID,
			"order_reference": orderRef,
			"response_code":   resp.ResponseCode,
		})
		message := resp.Message
		if message == "" {
			message = "Your card was declined."
		}
		return s.failPayment(ctx, state, quote, message, ErrPaymentDeclined)
	}

	err = s.requestRepo.FinalizePayment(state.PaymentIDs, repository.PaymentFinalization{
		OrderReference:      orderRef,
		TransactionID:       resp.TransactionID,
		PaidAt:              now,
		AgreesToTerms:       input.AgreesToTerms,
		ClientSignatureText: input.ClientSignatureText,
	})
	if err != nil {
		// The card was charged; staff must reconcile from this log line.
		logger.Error("Payment captured but requests not finalized", err, map[string]interface{}{
			"session_id":      sessionID,
			"order_reference": orderRef,
			"transaction_id":  resp.TransactionID,
			"payment_ids":     state.PaymentIDs,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotRecorded, err)
	}

	if err := state.MarkPaid(orderRef, resp.TransactionID); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	info := &wizard.PaymentInfo{
		BusinessRef:     business.ReferenceID,
		BusinessName:    business.Name,
		ApplicantEmail:  applicantEmail(requests),
		OrderReference:  orderRef,
		TransactionID:   resp.TransactionID,
		Lines:           quote.Lines,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Total:           quote.Total,
		DiscountApplied: quote.DiscountApplied,
		PaidAt:          now,
	}
	if err := s.store.SavePaymentInfo(ctx, sessionID, info); err != nil {
		return nil, err
	}

	s.publishPaid(business, requests, info)

	logger.Info("Checkout paid", map[string]interface{}{
		"session_id":      sessionID,
		"order_reference": orderRef,
		"transaction_id":  resp.TransactionID,
		"total":           quote.Total.StringFixed(2),
	})

	return &PaymentResult{
		Step:           state.Step,
		OrderReference: orderRef,
		TransactionID:  resp.TransactionID,
		Quote:          quote,
	}, nil
}

func (s *checkoutService) failPayment(ctx context.Context, state *wizard.State, quote pricing.Quote, message string, cause error) (*PaymentResult, error) {
	if err := state.MarkPaymentFailed(message); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return &PaymentResult{
		Step:    state.Step,
		Quote:   quote,
		Message: message,
	}, cause
}

func (s *checkoutService) publishPaid(business *model.Business, requests []model.ComplianceRequest, info *wizard.PaymentInfo) {
	if s.events == nil {
		return
	}
	types := make([]model.RequestType, 0, len(requests))
	for _, r := range requests {
		types = append(types, r.RequestType)
	}
	event := PaidOrderEvent{
		OrderReference: info.OrderReference,
		TransactionID:  info.TransactionID,
		BusinessRef:    business.ReferenceID,
		BusinessName:   business.Name,
		RequestTypes:   types,
		Total:          info.Total,
		PaidAt:         info.PaidAt,
	}
	if err := s.events.Publish(EventPaidOrder, event); err != nil {
		logger.Warn("Failed to publish paid order event", map[string]interface{}{
			"order_reference": info.OrderReference,
			"error":           err.Error(),
		})
	}
}

// GetConfirmation hands out the receipt once. The PAID state stays until
// the session expires, so a repeated payment is still refused as paid.
func (s *checkoutService) GetConfirmation(ctx context.Context, sessionID string, requestID uint) (*wizard.PaymentInfo, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil, ErrConfirmationConsumed
		}
		return nil, err
	}
	if !state.Covers(requestID) {
		return nil, wizard.ErrUnknownRequest
	}
	if state.Step != wizard.StepPaid {
		return nil, ErrConfirmationNotReady
	}

	info, err := s.store.TakePaymentInfo(ctx, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil, ErrConfirmationConsumed
		}
		return nil, err
	}
	return info, nil
}

// openForm runs the checks shared by the form step: session, request,
// catalog entry, then step order.
func (s *checkoutService) openForm(ctx context.Context, sessionID string, requestID uint) (*wizard.State, *model.ComplianceRequest, serviceEntry, error) {
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, nil, serviceEntry{}, err
	}

	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, serviceEntry{}, ErrRequestNotFound
		}
		return nil, nil, serviceEntry{}, err
	}

	entry, err := lookupService(request.RequestType)
	if err != nil {
		return nil, nil, serviceEntry{}, err
	}

	if err := state.CheckFormAccess(requestID); err != nil {
		return nil, nil, serviceEntry{}, err
	}
	return state, request, entry, nil
}

func (s *checkoutService) loadPaymentState(ctx context.Context, sessionID string, requestID uint) (*wizard.State, error) {
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.Covers(requestID) {
		return nil, wizard.ErrUnknownRequest
	}
	return state, nil
}

func (s *checkoutService) loadState(ctx context.Context, sessionID string) (*wizard.State, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil, ErrNoCheckoutSession
		}
		logger.Error("Failed to load checkout state", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}
	return state, nil
}

func (s *checkoutService) findBusiness(ref string) (*model.Business, error) {
	business, err := s.businessRepo.FindByReference(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

func applicantEmail(requests []model.ComplianceRequest) string {
	for _, r := range requests {
		if r.ApplicantEmail != "" {
			return r.ApplicantEmail
		}
	}
	return ""
}

func indexOf(ids []uint, id uint) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
