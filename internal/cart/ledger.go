package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"seenstudio/internal/apperr"
)

// VariantKey identifies a (product, color, size) combination inside a cart.
// Names are not expected to contain the "-" delimiter.
func VariantKey(productID, colorName, size string) string {
	return productID + "-" + colorName + "-" + size
}

// ProductRef is the catalog data a line item needs at add time.
type ProductRef struct {
	ID    string
	Name  string
	Image string
	Price decimal.Decimal
}

type LineItem struct {
	Key        string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	UnitPrice  decimal.Decimal `json:"price"`
	ColorName  string          `json:"color"`
	ColorValue string          `json:"color_value"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
}

// MarshalJSON writes the unit price as a two-decimal string.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"price"`
	}{plain(li), li.UnitPrice.StringFixed(2)})
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Ledger is the cart of one shopper session. It is not safe for concurrent use;
// callers load, mutate and save it within one request.
type Ledger struct {
	items []LineItem
}

func NewLedger() *Ledger { return &Ledger{} }

// FromSnapshot rebuilds a ledger from persisted line items. Duplicate keys are
// merged and non-positive quantities dropped, so a damaged snapshot still
// yields a valid ledger.
func FromSnapshot(items []LineItem) *Ledger {
	l := NewLedger()
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if it.Key == "" {
			it.Key = VariantKey(it.ProductID, it.ColorName, it.Size)
		}
		if i := l.indexOf(it.Key); i >= 0 {
			l.items[i].Quantity += it.Quantity
			continue
		}
		l.items = append(l.items, it)
	}
	return l
}

func (l *Ledger) indexOf(key string) int {
	for i := range l.items {
		if l.items[i].Key == key {
			return i
		}
	}
	return -1
}

// Add merges into an existing line for the same variant or appends a new one.
// A quantity below 1 counts as 1.
func (l *Ledger) Add(p ProductRef, colorName, size, colorValue string, quantity int) LineItem {
	if quantity < 1 {
		quantity = 1
	}
	key := VariantKey(p.ID, colorName, size)
	if i := l.indexOf(key); i >= 0 {
		l.items[i].Quantity += quantity
		return l.items[i]
	}
	li := LineItem{
		Key:        key,
		ProductID:  p.ID,
		Name:       p.Name,
		Image:      p.Image,
		UnitPrice:  p.Price,
		ColorName:  colorName,
		ColorValue: colorValue,
		Size:       size,
		Quantity:   quantity,
	}
	l.items = append(l.items, li)
	return li
}

// UpdateQuantity sets the quantity of a line. Zero or negative removes it.
func (l *Ledger) UpdateQuantity(key string, quantity int) error {
	if quantity <= 0 {
		l.Remove(key)
		return nil
	}
	i := l.indexOf(key)
	if i < 0 {
		return apperr.New(apperr.CodeNotFound, "cart item not found")
	}
	l.items[i].Quantity = quantity
	return nil
}

// SetQuantity is the strict form of UpdateQuantity: it never removes.
func (l *Ledger) SetQuantity(key string, quantity int) error {
	if quantity <= 0 {
		return apperr.New(apperr.CodeInvalidQuantity, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	return l.UpdateQuantity(key, quantity)
}

// Remove deletes the line if present.
func (l *Ledger) Remove(key string) {
	if i := l.indexOf(key); i >= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	}
}

func (l *Ledger) Clear() { l.items = nil }

// Items returns a copy of the lines in insertion order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Get(key string) (LineItem, bool) {
	if i := l.indexOf(key); i >= 0 {
		return l.items[i], true
	}
	return LineItem{}, false
}

func (l *Ledger) Len() int { return len(l.items) }

// ItemCount is the total quantity across lines.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

// Snapshot is the save side of FromSnapshot.
func (l *Ledger) Snapshot() []LineItem { return l.Items() }
