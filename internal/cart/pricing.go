package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Pricing struct {
	ShippingRate decimal.Decimal
	TaxRate      decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		ShippingRate: decimal.NewFromInt(10),
		TaxRate:      decimal.New(1, -1),
	}
}

type Totals struct {
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// Totals is a pure function of items. Shipping is flat and applies whenever
// the summed quantity is positive; there is no free-shipping threshold.
func (p Pricing) Totals(items []LineItem) Totals {
	var t Totals
	t.Subtotal = decimal.Zero
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.LineTotal())
		t.ItemCount += it.Quantity
	}
	t.Shipping = decimal.Zero
	if t.ItemCount > 0 {
		t.Shipping = p.ShippingRate
	}
	t.Tax = t.Subtotal.Mul(p.TaxRate)
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}

// Rounded returns the totals at cent precision, as recorded on orders.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:  t.Subtotal.Round(2),
		Shipping:  t.Shipping.Round(2),
		Tax:       t.Tax.Round(2),
		Total:     t.Total.Round(2),
		ItemCount: t.ItemCount,
	}
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal  string `json:"subtotal"`
		Shipping  string `json:"shipping"`
		Tax       string `json:"tax"`
		Total     string `json:"total"`
		ItemCount int    `json:"item_count"`
	}{
		Subtotal:  t.Subtotal.StringFixed(2),
		Shipping:  t.Shipping.StringFixed(2),
		Tax:       t.Tax.StringFixed(2),
		Total:     t.Total.StringFixed(2),
		ItemCount: t.ItemCount,
	})
}
