package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seenstudio/internal/apperr"
	"seenstudio/internal/cart"
	"seenstudio/internal/domain"
)

func usShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100",
		Address: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: domain.CountryUS,
	}
}

func goodCard() PaymentInfo {
	return PaymentInfo{CardholderName: "Ada Lovelace", CardNumber: "4242 4242 4242 4242", ExpiryDate: "12/29", CVV: "123"}
}

func ledgerWithItem() *cart.Ledger {
	l := cart.NewLedger()
	l.Add(cart.ProductRef{ID: "P1", Name: "Slip Dress", Price: decimal.RequireFromString("50.00")}, "Black", "M", "#000000", 3)
	return l
}

func reviewSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("chk-1", "cart-1", "")
	fe, err := s.SubmitShipping(usShipping())
	require.NoError(t, err)
	require.Nil(t, fe)
	fe, err = s.SubmitPayment(goodCard())
	require.NoError(t, err)
	require.Nil(t, fe)
	require.Equal(t, StepReview, s.Step())
	return s
}

type memRecorder struct {
	ids    []string
	drafts []Draft
	err    error
}

func (m *memRecorder) Record(_ context.Context, id string, d Draft) error {
	if m.err != nil {
		return m.err
	}
	m.ids = append(m.ids, id)
	m.drafts = append(m.drafts, d)
	return nil
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, StepShipping.CanTransitionTo(StepPayment))
	assert.False(t, StepShipping.CanTransitionTo(StepReview))
	assert.False(t, StepPayment.CanTransitionTo(StepShipping))
	assert.True(t, StepReview.CanTransitionTo(StepShipping))
	assert.True(t, StepReview.CanTransitionTo(StepConfirmed))
	assert.False(t, StepConfirmed.CanTransitionTo(StepShipping))
	assert.True(t, StepConfirmed.IsTerminal())
	assert.False(t, StepReview.IsTerminal())
}

func TestShippingGateUSPostalCode(t *testing.T) {
	s := NewSession("chk", "cart", "")
	info := usShipping()
	info.PostalCode = ""

	fe, err := s.SubmitShipping(info)
	require.NoError(t, err)
	assert.Equal(t, "Postal code is required", fe["postalCode"])
	assert.Equal(t, StepShipping, s.Step())

	info.PostalCode = "62701"
	fe, err = s.SubmitShipping(info)
	require.NoError(t, err)
	assert.Nil(t, fe)
	assert.Equal(t, StepPayment, s.Step())
}

func TestShippingWhitespaceCountsAsEmpty(t *testing.T) {
	s := NewSession("chk", "cart", "")
	info := usShipping()
	info.City = "   "
	fe, err := s.SubmitShipping(info)
	require.NoError(t, err)
	assert.Equal(t, "City is required", fe["city"])
}

func TestPaymentGate(t *testing.T) {
	s := NewSession("chk", "cart", "")
	_, err := s.SubmitPayment(goodCard())
	assert.True(t, apperr.IsCode(err, apperr.CodeStateConflict), "payment before shipping")

	_, _ = s.SubmitShipping(usShipping())
	bad := goodCard()
	bad.CVV = "12"
	fe, err := s.SubmitPayment(bad)
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid CVV", fe["cvv"])
	assert.Equal(t, StepPayment, s.Step())
}

func TestEditFromReview(t *testing.T) {
	s := reviewSession(t)
	require.NoError(t, s.Edit(StepShipping))
	assert.Equal(t, StepShipping, s.Step())
	assert.Error(t, s.Edit(StepPayment), "edit only from review")

	s = reviewSession(t)
	require.NoError(t, s.Edit(StepPayment))
	assert.Equal(t, StepPayment, s.Step())

	s = reviewSession(t)
	assert.Error(t, s.Edit(StepConfirmed))
}

func TestPlaceOrderConfirmsAndClearsCart(t *testing.T) {
	s := reviewSession(t)
	ledger := ledgerWithItem()
	rec := &memRecorder{}
	ids := &OrderIDs{Now: func() time.Time { return time.UnixMilli(1700000000000) }}
	p := &Placer{Processor: SimulatedProcessor{Delay: time.Millisecond}, Recorder: rec, Pricing: cart.DefaultPricing(), Timeout: time.Second, IDs: ids}

	conf, err := p.Place(context.Background(), s, ledger)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1700000000000", conf.OrderID)
	assert.Equal(t, "175.00", conf.Totals.Total.StringFixed(2))
	assert.Equal(t, 0, ledger.Len())

	v := s.View()
	assert.Equal(t, StepConfirmed, v.Step)
	assert.Equal(t, conf.OrderID, v.OrderID)
	assert.Empty(t, v.Card)
	require.Len(t, rec.ids, 1)
	assert.Equal(t, "Springfield", rec.drafts[0].Shipping.City)
}

func TestPlaceOrderTimeoutKeepsCart(t *testing.T) {
	s := reviewSession(t)
	ledger := ledgerWithItem()
	p := &Placer{Processor: SimulatedProcessor{Delay: time.Second}, Pricing: cart.DefaultPricing(), Timeout: 20 * time.Millisecond, IDs: &OrderIDs{}}

	_, err := p.Place(context.Background(), s, ledger)
	assert.True(t, apperr.IsCode(err, apperr.CodeProcessingTimedOut))
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, StepReview, s.Step())
	assert.False(t, s.View().Placing)
}

func TestPlaceOrderRecorderFailureKeepsCart(t *testing.T) {
	s := reviewSession(t)
	ledger := ledgerWithItem()
	p := &Placer{Processor: SimulatedProcessor{}, Recorder: &memRecorder{err: errors.New("disk full")}, Pricing: cart.DefaultPricing(), IDs: &OrderIDs{}}

	_, err := p.Place(context.Background(), s, ledger)
	require.Error(t, err)
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, StepReview, s.Step())
}

func TestPlaceOrderOnlyFromReview(t *testing.T) {
	s := NewSession("chk", "cart", "")
	p := &Placer{Processor: SimulatedProcessor{}, Pricing: cart.DefaultPricing(), IDs: &OrderIDs{}}
	_, err := p.Place(context.Background(), s, ledgerWithItem())
	assert.True(t, apperr.IsCode(err, apperr.CodeStateConflict))
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	s := reviewSession(t)
	p := &Placer{Processor: SimulatedProcessor{}, Pricing: cart.DefaultPricing(), IDs: &OrderIDs{}}
	_, err := p.Place(context.Background(), s, cart.NewLedger())
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	assert.Equal(t, StepReview, s.Step())
}

func TestPlaceOrderRejectsConcurrentSubmit(t *testing.T) {
	s := reviewSession(t)
	started := make(chan struct{})
	release := make(chan struct{})
	proc := ProcessorFunc(func(ctx context.Context, _ Draft, _ PaymentInfo) error {
		close(started)
		<-release
		return nil
	})
	p := &Placer{Processor: proc, Pricing: cart.DefaultPricing(), Timeout: time.Second, IDs: &OrderIDs{}}

	done := make(chan error, 1)
	go func() {
		_, err := p.Place(context.Background(), s, ledgerWithItem())
		done <- err
	}()
	<-started
	_, err := p.Place(context.Background(), s, ledgerWithItem())
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	close(release)
	require.NoError(t, <-done)
}

func TestOrderIDsStrictlyIncrease(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := &OrderIDs{Now: func() time.Time { return fixed }}
	a, b := g.Next(), g.Next()
	assert.Equal(t, "ORD-1700000000000", a)
	assert.Equal(t, "ORD-1700000000001", b)

	g.Observe(1800000000000)
	assert.Equal(t, "ORD-1800000000001", g.Next())
}

func TestPaymentInfoNeverPrintsCardData(t *testing.T) {
	card := goodCard()
	b, err := json.Marshal(card)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "4242 4242")
	assert.NotContains(t, string(b), "123")
	assert.Contains(t, string(b), "**** 4242")
	assert.Equal(t, "PaymentInfo{redacted}", fmt.Sprintf("%v", card))
	assert.Equal(t, "PaymentInfo{redacted}", fmt.Sprintf("%+v", card))
}
