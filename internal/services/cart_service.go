package services

import (
	"context"
	"strings"
	"sync"

	"seenstudio/internal/apperr"
	"seenstudio/internal/cart"
	"seenstudio/internal/metrics"
	"seenstudio/internal/repos"
)

const MaxLineQuantity = 99

type CartService struct {
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Pricing cart.Pricing
	Metrics *metrics.Metrics

	// mu serialises load-mutate-save so concurrent requests of one session do not lose updates.
	mu sync.Mutex
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, pricing cart.Pricing, m *metrics.Metrics) *CartService {
	return &CartService{Carts: carts, Prods: prods, Pricing: pricing, Metrics: m}
}

type CartView struct {
	Items     []cart.LineItem `json:"items"`
	Totals    cart.Totals     `json:"totals"`
	ItemCount int             `json:"item_count"`
}

func (s *CartService) view(l *cart.Ledger) CartView {
	items := l.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartView{Items: items, Totals: s.Pricing.Totals(items), ItemCount: l.ItemCount()}
}

// Ledger loads the session's cart priced from the live catalog.
func (s *CartService) Ledger(ctx context.Context, sessionID string) (*cart.Ledger, error) {
	items, err := s.Carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.FromSnapshot(items), nil
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return s.view(l), nil
}

func (s *CartService) mutate(ctx context.Context, op, sessionID string, fn func(l *cart.Ledger) error) (view CartView, err error) {
	defer func() { s.Metrics.CartOp(op, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.Ledger(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := fn(l); err != nil {
		return CartView{}, err
	}
	if err := s.Carts.Save(ctx, sessionID, l.Snapshot()); err != nil {
		return CartView{}, err
	}
	return s.view(l), nil
}

type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  *int   `json:"quantity"`
}

// Add puts a product variant in the cart. Color and size must be ones the
// product offers; a missing quantity means 1.
func (s *CartService) Add(ctx context.Context, sessionID string, in AddItemInput) (CartView, error) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 || qty > MaxLineQuantity {
		return CartView{}, apperr.New(apperr.CodeInvalidQuantity, "Quantity must be between 1 and 99").
			WithDetails(map[string]string{"quantity": "must be between 1 and 99"})
	}
	p, err := s.Prods.Get(ctx, strings.TrimSpace(in.ProductID))
	if err != nil {
		return CartView{}, err
	}
	color, size := strings.TrimSpace(in.Color), strings.TrimSpace(in.Size)
	fe := map[string]string{}
	if len(p.Colors) > 0 && !p.HasColor(color) {
		fe["color"] = "Please select a color"
	}
	if len(p.Sizes) > 0 && !p.HasSize(size) {
		fe["size"] = "Please select a size"
	}
	if len(fe) > 0 {
		return CartView{}, apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	colorValue := ""
	for _, c := range p.Colors {
		if c.Name == color {
			colorValue = c.Value
		}
	}
	ref := cart.ProductRef{ID: p.ID, Name: p.Name, Image: p.ImageForColor(color), Price: p.Price}

	return s.mutate(ctx, "add", sessionID, func(l *cart.Ledger) error {
		if cur, ok := l.Get(cart.VariantKey(p.ID, color, size)); ok && cur.Quantity+qty > MaxLineQuantity {
			return apperr.New(apperr.CodeInvalidQuantity, "Quantity must be between 1 and 99")
		}
		l.Add(ref, color, size, colorValue, qty)
		return nil
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, key string, qty int) (CartView, error) {
	if qty > MaxLineQuantity {
		return CartView{}, apperr.New(apperr.CodeInvalidQuantity, "Quantity must be between 1 and 99")
	}
	return s.mutate(ctx, "update", sessionID, func(l *cart.Ledger) error {
		return l.UpdateQuantity(key, qty)
	})
}

func (s *CartService) Remove(ctx context.Context, sessionID, key string) (CartView, error) {
	return s.mutate(ctx, "remove", sessionID, func(l *cart.Ledger) error {
		l.Remove(key)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (CartView, error) {
	return s.mutate(ctx, "clear", sessionID, func(l *cart.Ledger) error {
		l.Clear()
		return nil
	})
}

// Consume takes the ordered lines out of the session's cart. Lines or extra
// quantity added after ordered was read stay in the cart.
func (s *CartService) Consume(ctx context.Context, sessionID string, ordered []cart.LineItem) (CartView, error) {
	return s.mutate(ctx, "consume", sessionID, func(l *cart.Ledger) error {
		for _, it := range ordered {
			cur, ok := l.Get(it.Key)
			if !ok {
				continue
			}
			if left := cur.Quantity - it.Quantity; left > 0 {
				if err := l.SetQuantity(it.Key, left); err != nil {
					return err
				}
				continue
			}
			l.Remove(it.Key)
		}
		return nil
	})
}
