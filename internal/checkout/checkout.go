package checkout

import (
	"fmt"
	"strings"
	"sync"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/validate"
)

type Step string

const (
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepReview    Step = "review"
	StepConfirmed Step = "confirmed"
)

var transitions = map[Step][]Step{
	StepShipping: {StepPayment},
	StepPayment:  {StepReview},
	StepReview:   {StepShipping, StepPayment, StepConfirmed},
}

func (s Step) IsTerminal() bool { return s == StepConfirmed }

func (s Step) CanTransitionTo(next Step) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStep(s string) (Step, bool) {
	switch Step(s) {
	case StepShipping, StepPayment, StepReview, StepConfirmed:
		return Step(s), true
	}
	return "", false
}

// PaymentInfo lives only in memory on a Session. It never serialises its card fields.
type PaymentInfo struct {
	CardholderName string `json:"cardholderName" validate:"required"`
	CardNumber     string `json:"cardNumber" validate:"required,cardnumber"`
	ExpiryDate     string `json:"expiryDate" validate:"required,expiry"`
	CVV            string `json:"cvv" validate:"required,cvv"`
}

// Last4 returns the last four card digits.
func (p PaymentInfo) Last4() string {
	digits := strings.Join(strings.Fields(p.CardNumber), "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func (p PaymentInfo) String() string   { return "PaymentInfo{redacted}" }
func (p PaymentInfo) GoString() string { return p.String() }

func (p PaymentInfo) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"card":"**** %s"}`, p.Last4())), nil
}

// Session is one shopper's pass through shipping, payment and review.
type Session struct {
	ID          string
	CartSession string
	UserID      string

	mu       sync.Mutex
	step     Step
	shipping domain.ShippingInfo
	payment  *PaymentInfo
	orderID  string
	placing  bool
}

func NewSession(id, cartSession, userID string) *Session {
	return &Session{ID: id, CartSession: cartSession, UserID: userID, step: StepShipping}
}

// View is a read-only copy of the session state safe to render.
type View struct {
	ID       string              `json:"id"`
	Step     Step                `json:"step"`
	Shipping domain.ShippingInfo `json:"shipping"`
	Card     string              `json:"card,omitempty"`
	OrderID  string              `json:"order_id,omitempty"`
	Placing  bool                `json:"placing"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{ID: s.ID, Step: s.step, Shipping: s.shipping, OrderID: s.orderID, Placing: s.placing}
	if s.payment != nil {
		v.Card = "**** " + s.payment.Last4()
	}
	return v
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func stepError(from, to Step) error {
	return apperr.New(apperr.CodeStateConflict, fmt.Sprintf("cannot move from %s to %s", from, to)).
		WithDetails(map[string]string{"step": string(from)})
}

func trimShipping(in domain.ShippingInfo) domain.ShippingInfo {
	return domain.ShippingInfo{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
}

// SubmitShipping validates the shipping form and advances to payment.
// Field errors keep the session on the shipping step.
func (s *Session) SubmitShipping(info domain.ShippingInfo) (validate.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepShipping {
		return nil, stepError(s.step, StepPayment)
	}
	info = trimShipping(info)
	s.shipping = info
	if fe := validate.Struct(info); fe != nil {
		return fe, nil
	}
	s.step = StepPayment
	return nil, nil
}

// SubmitPayment validates the payment form and advances to review.
func (s *Session) SubmitPayment(info PaymentInfo) (validate.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepPayment {
		return nil, stepError(s.step, StepReview)
	}
	info.CardholderName = strings.TrimSpace(info.CardholderName)
	info.ExpiryDate = strings.TrimSpace(info.ExpiryDate)
	info.CVV = strings.TrimSpace(info.CVV)
	if fe := validate.Struct(info); fe != nil {
		return fe, nil
	}
	s.payment = &info
	s.step = StepReview
	return nil, nil
}

// Edit moves back from review to shipping or payment without re-validation.
func (s *Session) Edit(to Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepReview || to == StepConfirmed || !s.step.CanTransitionTo(to) {
		return stepError(s.step, to)
	}
	if s.placing {
		return apperr.New(apperr.CodeConflict, "order is being placed")
	}
	s.step = to
	return nil
}
