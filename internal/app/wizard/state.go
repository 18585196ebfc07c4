// Package wizard holds the per-session checkout state machine.
//
//	SELECTING_SERVICES -> FILLING_SERVICE_FORM -> AWAITING_PAYMENT -> PAID
//	                                                   ^      |
//	                                                   +- PAYMENT_FAILED
//
// A State is loaded from a Store at the start of each request, advanced by
// one transition method, and saved back. Transition methods never touch the
// database; callers persist first and transition after.
package wizard

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/pricing"
)

type Step string

const (
	StepSelectingServices  Step = "SELECTING_SERVICES"
	StepFillingServiceForm Step = "FILLING_SERVICE_FORM"
	StepAwaitingPayment    Step = "AWAITING_PAYMENT"
	StepPaid               Step = "PAID"
	StepPaymentFailed      Step = "PAYMENT_FAILED"
)

var (
	ErrOutOfOrder     = errors.New("wizard step out of order")
	ErrUnknownRequest = errors.New("request does not belong to this checkout")
	ErrAlreadyPaid    = errors.New("checkout already paid")
	ErrNothingCreated = errors.New("no service requests were created")
)

// State is the checkout of one business within one browser session.
type State struct {
	SessionID    string             `json:"session_id"`
	BusinessRef  string             `json:"business_ref"`
	BusinessType model.BusinessType `json:"business_type"`
	Step         Step               `json:"step"`

	// Selection is the normalized set the customer ticked. Discount
	// eligibility is always judged against it.
	Selection  []pricing.ServiceCode `json:"selection"`
	Duplicates []model.RequestType   `json:"duplicates,omitempty"`

	RequestIDs []uint `json:"request_ids"`           // created by this checkout, in form order
	Remaining  []uint `json:"remaining"`             // forms still to fill, head is current
	PaymentIDs []uint `json:"payment_ids,omitempty"` // requests charged on the payment step

	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	DiscountApplied bool            `json:"discount_applied"`

	OrderReference string `json:"order_reference,omitempty"`
	TransactionID  string `json:"transaction_id,omitempty"`
	LastError      string `json:"last_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New starts a checkout on the selection step.
func New(sessionID, businessRef string, businessType model.BusinessType) *State {
	return &State{
		SessionID:    sessionID,
		BusinessRef:  businessRef,
		BusinessType: businessType,
		Step:         StepSelectingServices,
		UpdatedAt:    time.Now(),
	}
}

// Begin records the outcome of the selection step and moves to the first form.
// With nothing created the state stays on the selection step.
func (s *State) Begin(selection []pricing.ServiceCode, created []uint, duplicates []model.RequestType) error {
	if s.Step != StepSelectingServices {
		return ErrOutOfOrder
	}
	s.Duplicates = duplicates
	if len(created) == 0 {
		return ErrNothingCreated
	}

	s.Selection = append([]pricing.ServiceCode(nil), selection...)
	s.RequestIDs = append([]uint(nil), created...)
	s.Remaining = append([]uint(nil), created...)
	s.Step = StepFillingServiceForm
	s.touch()
	return nil
}

// Owns reports whether id was created by this checkout.
func (s *State) Owns(id uint) bool {
	return contains(s.RequestIDs, id)
}

// CurrentRequestID is the request whose form is due.
func (s *State) CurrentRequestID() (uint, bool) {
	if s.Step != StepFillingServiceForm || len(s.Remaining) == 0 {
		return 0, false
	}
	return s.Remaining[0], true
}

// IsCompleted reports whether the form for id was already accepted.
func (s *State) IsCompleted(id uint) bool {
	return s.Owns(id) && !contains(s.Remaining, id)
}

// CheckFormAccess validates that the form of id may be viewed or submitted now.
// Completed forms stay editable until the checkout is paid.
func (s *State) CheckFormAccess(id uint) error {
	if !s.Owns(id) {
		return ErrUnknownRequest
	}
	switch s.Step {
	case StepPaid:
		return ErrAlreadyPaid
	case StepSelectingServices:
		return ErrOutOfOrder
	}
	if s.IsCompleted(id) {
		return nil
	}
	if current, ok := s.CurrentRequestID(); !ok || current != id {
		return ErrOutOfOrder
	}
	return nil
}

// CompleteForm marks the form of id as accepted. It reports whether that
// was the last outstanding form. Completing an already completed form is a
// no-op.
func (s *State) CompleteForm(id uint) (done bool, err error) {
	if err := s.CheckFormAccess(id); err != nil {
		return false, err
	}
	if s.IsCompleted(id) {
		return false, nil
	}

	s.Remaining = s.Remaining[1:]
	s.touch()
	return len(s.Remaining) == 0, nil
}

// AwaitPayment moves to the payment step with the charge set and its quote.
func (s *State) AwaitPayment(paymentIDs []uint, quote pricing.Quote) error {
	if s.Step != StepFillingServiceForm || len(s.Remaining) != 0 {
		return ErrOutOfOrder
	}
	s.PaymentIDs = append([]uint(nil), paymentIDs...)
	s.SetQuote(quote)
	s.Step = StepAwaitingPayment
	s.touch()
	return nil
}

// SetQuote stores the latest pricing breakdown.
func (s *State) SetQuote(q pricing.Quote) {
	s.Subtotal = q.Subtotal
	s.Discount = q.Discount
	s.Total = q.Total
	s.DiscountApplied = q.DiscountApplied
}

// CanPay reports whether the payment step may be submitted.
func (s *State) CanPay() error {
	switch s.Step {
	case StepAwaitingPayment, StepPaymentFailed:
		return nil
	case StepPaid:
		return ErrAlreadyPaid
	}
	return ErrOutOfOrder
}

func (s *State) MarkPaid(orderReference, transactionID string) error {
	if err := s.CanPay(); err != nil {
		return err
	}
	s.OrderReference = orderReference
	s.TransactionID = transactionID
	s.LastError = ""
	s.Step = StepPaid
	s.touch()
	return nil
}

func (s *State) MarkPaymentFailed(message string) error {
	if err := s.CanPay(); err != nil {
		return err
	}
	s.LastError = message
	s.Step = StepPaymentFailed
	s.touch()
	return nil
}

// PaymentRequestID is the request id used in payment URLs.
func (s *State) PaymentRequestID() uint {
	if len(s.PaymentIDs) > 0 {
		return s.PaymentIDs[0]
	}
	if len(s.RequestIDs) > 0 {
		return s.RequestIDs[0]
	}
	return 0
}

// Covers reports whether id may address the payment step of this checkout.
func (s *State) Covers(id uint) bool {
	return s.Owns(id) || contains(s.PaymentIDs, id)
}

func (s *State) touch() {
	s.UpdatedAt = time.Now()
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// PaymentInfo is the receipt handed to the confirmation step exactly once.
type PaymentInfo struct {
	BusinessRef     string          `json:"business_ref"`
	BusinessName    string          `json:"business_name"`
	ApplicantEmail  string          `json:"applicant_email,omitempty"`
	OrderReference  string          `json:"order_reference"`
	TransactionID   string          `json:"transaction_id"`
	Lines           []pricing.Line  `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	DiscountApplied bool            `json:"discount_applied"`
	PaidAt          time.Time       `json:"paid_at"`
}
