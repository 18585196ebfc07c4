package wizard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var llcPackage = []pricing.ServiceCode{
	pricing.CodeOperatingAgreement,
	pricing.CodeFederalEIN,
	pricing.CodeLaborLawPosterCert,
}

func startedState(t *testing.T, ids ...uint) *State {
	t.Helper()
	s := New("sess-1", "REF001", model.BusinessTypeLLC)
	require.NoError(t, s.Begin(llcPackage, ids, nil))
	return s
}

func TestBegin(t *testing.T) {
	s := New("sess-1", "REF001", model.BusinessTypeLLC)
	assert.Equal(t, StepSelectingServices, s.Step)

	dups := []model.RequestType{model.RequestTypeFederalEIN}
	require.NoError(t, s.Begin(llcPackage, []uint{10, 11, 12}, dups))

	assert.Equal(t, StepFillingServiceForm, s.Step)
	assert.Equal(t, []uint{10, 11, 12}, s.RequestIDs)
	assert.Equal(t, []uint{10, 11, 12}, s.Remaining)
	assert.Equal(t, dups, s.Duplicates)
	assert.Equal(t, llcPackage, s.Selection)

	current, ok := s.CurrentRequestID()
	require.True(t, ok)
	assert.Equal(t, uint(10), current)
}

func TestBegin_NothingCreatedStaysOnSelection(t *testing.T) {
	s := New("sess-1", "REF001", model.BusinessTypeLLC)
	dups := []model.RequestType{model.RequestTypeFederalEIN}

	err := s.Begin([]pricing.ServiceCode{pricing.CodeFederalEIN}, nil, dups)
	assert.ErrorIs(t, err, ErrNothingCreated)
	assert.Equal(t, StepSelectingServices, s.Step)
	assert.Equal(t, dups, s.Duplicates)
	assert.Empty(t, s.Selection)
}

func TestBegin_Twice(t *testing.T) {
	s := startedState(t, 1)
	assert.ErrorIs(t, s.Begin(llcPackage, []uint{2}, nil), ErrOutOfOrder)
}

func TestCompleteForm_InOrder(t *testing.T) {
	s := startedState(t, 1, 2, 3)

	done, err := s.CompleteForm(1)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.CompleteForm(2)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.CompleteForm(3)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, s.Remaining)
}

func TestCompleteForm_OutOfOrder(t *testing.T) {
	s := startedState(t, 1, 2, 3)

	_, err := s.CompleteForm(3)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Equal(t, []uint{1, 2, 3}, s.Remaining)
}

func TestCompleteForm_UnknownRequest(t *testing.T) {
	s := startedState(t, 1, 2)

	_, err := s.CompleteForm(99)
	assert.ErrorIs(t, err, ErrUnknownRequest)
}

func TestCompleteForm_ResubmitDoesNotAdvance(t *testing.T) {
	s := startedState(t, 1, 2)

	_, err := s.CompleteForm(1)
	require.NoError(t, err)

	done, err := s.CompleteForm(1)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []uint{2}, s.Remaining)
}

func TestAwaitPayment(t *testing.T) {
	s := startedState(t, 1)

	quote := pricing.Quote{Subtotal: decimal.RequireFromString("249.95"), Total: decimal.RequireFromString("249.95")}
	assert.ErrorIs(t, s.AwaitPayment([]uint{1}, quote), ErrOutOfOrder, "form still outstanding")

	_, err := s.CompleteForm(1)
	require.NoError(t, err)
	require.NoError(t, s.AwaitPayment([]uint{1, 7}, quote))

	assert.Equal(t, StepAwaitingPayment, s.Step)
	assert.Equal(t, []uint{1, 7}, s.PaymentIDs)
	assert.True(t, s.Total.Equal(quote.Total))
	assert.True(t, s.Covers(7))
	assert.NoError(t, s.CanPay())
}

func payableState(t *testing.T) *State {
	t.Helper()
	s := startedState(t, 1)
	_, err := s.CompleteForm(1)
	require.NoError(t, err)
	require.NoError(t, s.AwaitPayment([]uint{1}, pricing.Quote{}))
	return s
}

func TestPaymentFailedIsReenterable(t *testing.T) {
	s := payableState(t)

	require.NoError(t, s.MarkPaymentFailed("Declined"))
	assert.Equal(t, StepPaymentFailed, s.Step)
	assert.Equal(t, "Declined", s.LastError)
	assert.NoError(t, s.CanPay())

	require.NoError(t, s.MarkPaid("ORD-REF001-1", "txn-1"))
	assert.Equal(t, StepPaid, s.Step)
	assert.Empty(t, s.LastError)
	assert.Equal(t, "ORD-REF001-1", s.OrderReference)
}

func TestAfterPaid(t *testing.T) {
	s := payableState(t)
	require.NoError(t, s.MarkPaid("ORD-REF001-1", "txn-1"))

	assert.ErrorIs(t, s.CanPay(), ErrAlreadyPaid)
	assert.ErrorIs(t, s.MarkPaymentFailed("x"), ErrAlreadyPaid)
	assert.ErrorIs(t, s.CheckFormAccess(1), ErrAlreadyPaid)
}

func TestCanPay_BeforeForms(t *testing.T) {
	s := startedState(t, 1)
	assert.ErrorIs(t, s.CanPay(), ErrOutOfOrder)
	assert.ErrorIs(t, s.MarkPaid("o", "t"), ErrOutOfOrder)
}

func TestCompletedFormEditableOnPaymentStep(t *testing.T) {
	s := payableState(t)

	assert.NoError(t, s.CheckFormAccess(1))
	done, err := s.CompleteForm(1)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StepAwaitingPayment, s.Step)
}

func TestPaymentRequestID(t *testing.T) {
	s := startedState(t, 4, 5)
	assert.Equal(t, uint(4), s.PaymentRequestID())

	s.PaymentIDs = []uint{2, 4, 5}
	assert.Equal(t, uint(2), s.PaymentRequestID())
}
