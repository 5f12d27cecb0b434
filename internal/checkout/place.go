package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"seenstudio/internal/apperr"
	"seenstudio/internal/cart"
	"seenstudio/internal/domain"
)

// Draft is what a processor sees: the priced cart and the shipping details.
// Card data is passed separately and never stored on the draft.
type Draft struct {
	CheckoutID  string
	CartSession string
	UserID      string
	Items       []cart.LineItem
	Totals      cart.Totals
	Shipping    domain.ShippingInfo
}

// Processor authorises payment for a draft. It must honour ctx cancellation.
type Processor interface {
	Process(ctx context.Context, d Draft, payment PaymentInfo) error
}

type ProcessorFunc func(ctx context.Context, d Draft, payment PaymentInfo) error

func (f ProcessorFunc) Process(ctx context.Context, d Draft, payment PaymentInfo) error {
	return f(ctx, d, payment)
}

// SimulatedProcessor stands in for a payment gateway: it waits Delay and succeeds.
type SimulatedProcessor struct {
	Delay time.Duration
}

func (p SimulatedProcessor) Process(ctx context.Context, _ Draft, _ PaymentInfo) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recorder persists a confirmed order before the cart is cleared.
type Recorder interface {
	Record(ctx context.Context, orderID string, d Draft) error
}

// OrderIDs issues ORD-<unix millis> identifiers that strictly increase within a process.
type OrderIDs struct {
	mu   sync.Mutex
	last int64
	Now  func() time.Time
}

func (g *OrderIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	ms := now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}

// Observe makes later ids sort after ms, e.g. the newest persisted order.
func (g *OrderIDs) Observe(ms int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ms > g.last {
		g.last = ms
	}
}

type Confirmation struct {
	OrderID string          `json:"order_id"`
	Items   []cart.LineItem `json:"items"`
	Totals  cart.Totals     `json:"totals"`
}

// Placer runs PlaceOrder: process under a timeout, record, then clear the ledger.
type Placer struct {
	Processor Processor
	Recorder  Recorder
	Pricing   cart.Pricing
	Timeout   time.Duration
	IDs       *OrderIDs
}

func (p *Placer) Place(ctx context.Context, s *Session, ledger *cart.Ledger) (Confirmation, error) {
	s.mu.Lock()
	if s.step != StepReview {
		from := s.step
		s.mu.Unlock()
		return Confirmation{}, stepError(from, StepConfirmed)
	}
	if s.placing {
		s.mu.Unlock()
		return Confirmation{}, apperr.New(apperr.CodeConflict, "order is already being placed")
	}
	if ledger.Len() == 0 {
		s.mu.Unlock()
		return Confirmation{}, apperr.New(apperr.CodeValidation, "cart is empty")
	}
	if s.payment == nil {
		s.mu.Unlock()
		return Confirmation{}, stepError(StepPayment, StepConfirmed)
	}
	s.placing = true
	payment := *s.payment
	items := ledger.Items()
	draft := Draft{
		CheckoutID:  s.ID,
		CartSession: s.CartSession,
		UserID:      s.UserID,
		Items:       items,
		Totals:      p.Pricing.Totals(items),
		Shipping:    s.shipping,
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.placing = false
		s.mu.Unlock()
	}()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	err := p.Processor.Process(pctx, draft, payment)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Confirmation{}, apperr.Wrap(apperr.CodeProcessingTimedOut, err, "order processing timed out")
		}
		return Confirmation{}, apperr.Wrap(apperr.CodeDependency, err, "payment processing failed")
	}

	orderID := p.IDs.Next()
	if p.Recorder != nil {
		if err := p.Recorder.Record(ctx, orderID, draft); err != nil {
			return Confirmation{}, fmt.Errorf("record order %s: %w", orderID, err)
		}
	}

	ledger.Clear()
	s.mu.Lock()
	s.step = StepConfirmed
	s.orderID = orderID
	s.payment = nil
	s.mu.Unlock()

	return Confirmation{OrderID: orderID, Items: draft.Items, Totals: draft.Totals}, nil
}
