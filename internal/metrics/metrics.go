package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cartOps            *prometheus.CounterVec
	checkoutSteps      *prometheus.CounterVec
	orders             *prometheus.CounterVec
	selectionWrites    *prometheus.CounterVec
	selectionFallbacks *prometheus.CounterVec
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seenstudio_cart_operations_total",
			Help: "Cart mutations by operation and result.",
		}, []string{"op", "result"}),
		checkoutSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seenstudio_checkout_transitions_total",
			Help: "Checkout step submissions by step and result.",
		}, []string{"step", "result"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seenstudio_orders_total",
			Help: "PlaceOrder outcomes.",
		}, []string{"result"}),
		selectionWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seenstudio_selection_writes_total",
			Help: "Selection replace and toggle calls by surface and result.",
		}, []string{"surface", "result"}),
		selectionFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seenstudio_selection_cache_fallbacks_total",
			Help: "Selection reads served from the last-known-good cache.",
		}, []string{"surface"}),
	}
	reg.MustRegister(m.cartOps, m.checkoutSteps, m.orders, m.selectionWrites, m.selectionFallbacks)
	return m
}

func (m *Metrics) CartOp(op string, err error) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), result(err)).Inc()
}

func (m *Metrics) CheckoutStep(step string, ok bool) {
	if m == nil || m.checkoutSteps == nil {
		return
	}
	r := "ok"
	if !ok {
		r = "rejected"
	}
	m.checkoutSteps.WithLabelValues(normalizeLabel(step), r).Inc()
}

// Order records a PlaceOrder outcome: placed, timed_out or failed.
func (m *Metrics) Order(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) SelectionWrite(surface string, err error) {
	if m == nil || m.selectionWrites == nil {
		return
	}
	m.selectionWrites.WithLabelValues(normalizeLabel(surface), result(err)).Inc()
}

func (m *Metrics) SelectionFallback(surface string) {
	if m == nil || m.selectionFallbacks == nil {
		return
	}
	m.selectionFallbacks.WithLabelValues(normalizeLabel(surface)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
