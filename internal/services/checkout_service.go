package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"seenstudio/internal/apperr"
	"seenstudio/internal/checkout"
	"seenstudio/internal/domain"
	applog "seenstudio/internal/log"
	"seenstudio/internal/metrics"
	"seenstudio/internal/repos"
	"seenstudio/internal/validate"
)

// CheckoutService keeps in-flight checkout sessions in memory. Each cart
// session has at most one checkout at a time.
type CheckoutService struct {
	Carts     *CartService
	Addresses *repos.AddressRepo
	Placer    *checkout.Placer
	Metrics   *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*checkout.Session
	byCart   map[string]string
}

func NewCheckoutService(carts *CartService, addresses *repos.AddressRepo, placer *checkout.Placer, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{
		Carts:     carts,
		Addresses: addresses,
		Placer:    placer,
		Metrics:   m,
		sessions:  map[string]*checkout.Session{},
		byCart:    map[string]string{},
	}
}

// NewOrderIDs returns an id generator that continues after the newest stored order.
func NewOrderIDs(ctx context.Context, orders *repos.OrderRepo) (*checkout.OrderIDs, error) {
	ids := &checkout.OrderIDs{}
	ms, err := orders.LatestIDMillis(ctx)
	if err != nil {
		return nil, err
	}
	ids.Observe(ms)
	return ids, nil
}

// Start opens a checkout for a non-empty cart, replacing any earlier one of the same cart.
func (s *CheckoutService) Start(ctx context.Context, cartSID, userID string) (checkout.View, error) {
	l, err := s.Carts.Ledger(ctx, cartSID)
	if err != nil {
		return checkout.View{}, err
	}
	if l.Len() == 0 {
		return checkout.View{}, apperr.New(apperr.CodeValidation, "Your cart is empty").
			WithDetails(map[string]string{"cart": "is empty"})
	}
	sess := checkout.NewSession(uuid.NewString(), cartSID, userID)

	s.mu.Lock()
	if old, ok := s.byCart[cartSID]; ok {
		if prev := s.sessions[old]; prev != nil && prev.View().Placing {
			s.mu.Unlock()
			return checkout.View{}, apperr.New(apperr.CodeConflict, "An order is already being placed")
		}
		delete(s.sessions, old)
	}
	s.sessions[sess.ID] = sess
	s.byCart[cartSID] = sess.ID
	s.mu.Unlock()
	return sess.View(), nil
}

// Session returns the checkout id owned by cartSID. Other carts' sessions are NOT_FOUND.
func (s *CheckoutService) Session(id, cartSID string) (*checkout.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || sess.CartSession != cartSID {
		return nil, apperr.New(apperr.CodeNotFound, "Checkout not found")
	}
	return sess, nil
}

func (s *CheckoutService) View(id, cartSID string) (checkout.View, error) {
	sess, err := s.Session(id, cartSID)
	if err != nil {
		return checkout.View{}, err
	}
	return sess.View(), nil
}

func fieldErrors(fe validate.FieldErrors) error {
	return apperr.New(apperr.CodeValidation, "Please correct the highlighted fields").WithDetails(fe)
}

func (s *CheckoutService) SubmitShipping(id, cartSID string, info domain.ShippingInfo) (checkout.View, error) {
	sess, err := s.Session(id, cartSID)
	if err != nil {
		return checkout.View{}, err
	}
	fe, err := sess.SubmitShipping(info)
	s.Metrics.CheckoutStep(string(checkout.StepShipping), err == nil && fe == nil)
	if err != nil {
		return checkout.View{}, err
	}
	if fe != nil {
		return sess.View(), fieldErrors(fe)
	}
	return sess.View(), nil
}

// ShippingFromAddress fills the shipping step from one of the user's saved addresses.
func (s *CheckoutService) ShippingFromAddress(ctx context.Context, id, cartSID, userID, addressID, email string) (checkout.View, error) {
	if userID == "" {
		return checkout.View{}, apperr.New(apperr.CodeUnauthorized, "Access token required")
	}
	a, err := s.Addresses.Get(ctx, userID, addressID)
	if err != nil {
		return checkout.View{}, err
	}
	addr := strings.TrimSpace(strings.Join([]string{a.AddressLine1, a.AddressLine2}, " "))
	return s.SubmitShipping(id, cartSID, domain.ShippingInfo{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      email,
		Phone:      a.Phone,
		Address:    addr,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	})
}

func (s *CheckoutService) SubmitPayment(id, cartSID string, info checkout.PaymentInfo) (checkout.View, error) {
	sess, err := s.Session(id, cartSID)
	if err != nil {
		return checkout.View{}, err
	}
	fe, err := sess.SubmitPayment(info)
	s.Metrics.CheckoutStep(string(checkout.StepPayment), err == nil && fe == nil)
	if err != nil {
		return checkout.View{}, err
	}
	if fe != nil {
		return sess.View(), fieldErrors(fe)
	}
	return sess.View(), nil
}

func (s *CheckoutService) Edit(id, cartSID string, to checkout.Step) (checkout.View, error) {
	sess, err := s.Session(id, cartSID)
	if err != nil {
		return checkout.View{}, err
	}
	if err := sess.Edit(to); err != nil {
		return checkout.View{}, err
	}
	return sess.View(), nil
}

// Place runs PlaceOrder against the session's stored cart and, once the order
// is recorded, removes the ordered lines from the stored cart.
func (s *CheckoutService) Place(ctx context.Context, id, cartSID string) (checkout.Confirmation, error) {
	sess, err := s.Session(id, cartSID)
	if err != nil {
		return checkout.Confirmation{}, err
	}
	l, err := s.Carts.Ledger(ctx, cartSID)
	if err != nil {
		return checkout.Confirmation{}, err
	}
	conf, err := s.Placer.Place(ctx, sess, l)
	switch {
	case err == nil:
		s.Metrics.Order("placed")
	case apperr.IsCode(err, apperr.CodeProcessingTimedOut):
		s.Metrics.Order("timed_out")
		return conf, err
	default:
		switch apperr.CodeOf(err) {
		case apperr.CodeStateConflict, apperr.CodeConflict, apperr.CodeValidation:
			s.Metrics.Order("rejected")
		default:
			s.Metrics.Order("failed")
		}
		return conf, err
	}
	if _, err := s.Carts.Consume(ctx, cartSID, conf.Items); err != nil {
		applog.L().Error().Err(err).Str("action", "checkout.clear_cart").Str("order_id", conf.OrderID).Send()
	}
	return conf, nil
}
