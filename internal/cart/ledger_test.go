package cart

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seenstudio/internal/apperr"
)

func p1() ProductRef {
	return ProductRef{ID: "P1", Name: "Slip Dress", Image: "p1.jpg", Price: decimal.RequireFromString("50.00")}
}

func TestVariantKey(t *testing.T) {
	assert.Equal(t, "P1-Black-M", VariantKey("P1", "Black", "M"))
	assert.Equal(t, VariantKey("P1", "Black", "M"), VariantKey("P1", "Black", "M"))
	assert.NotEqual(t, VariantKey("P1", "Black", "M"), VariantKey("P1", "Black", "L"))
	assert.NotEqual(t, VariantKey("P1", "Black", "M"), VariantKey("P2", "Black", "M"))
}

func TestAddMergesSameVariant(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000000", 1)
	l.Add(p1(), "Black", "M", "#000000", 2)

	items := l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "P1-Black-M", items[0].Key)
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 1)
	l.Add(p1(), "Red", "M", "#f00", 1)
	l.Add(p1(), "Black", "S", "#000", 1)
	l.Add(p1(), "Black", "M", "#000", 1)

	var keys []string
	for _, it := range l.Items() {
		keys = append(keys, it.Key)
	}
	assert.Equal(t, []string{"P1-Black-M", "P1-Red-M", "P1-Black-S"}, keys)
}

func TestAddDefaultsQuantity(t *testing.T) {
	l := NewLedger()
	li := l.Add(p1(), "Black", "M", "#000", 0)
	assert.Equal(t, 1, li.Quantity)
}

func TestUpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int{0, -3} {
		l := NewLedger()
		l.Add(p1(), "Black", "M", "#000", 2)
		require.NoError(t, l.UpdateQuantity("P1-Black-M", q))
		assert.Empty(t, l.Items(), "quantity %d", q)
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 2)
	require.NoError(t, l.UpdateQuantity("P1-Black-M", 7))
	li, ok := l.Get("P1-Black-M")
	require.True(t, ok)
	assert.Equal(t, 7, li.Quantity)

	err := l.UpdateQuantity("missing", 2)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 2)
	err := l.SetQuantity("P1-Black-M", 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidQuantity))
	assert.Equal(t, 1, l.Len())
}

func TestRemoveAndClear(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 1)
	l.Add(p1(), "Red", "M", "#f00", 1)

	l.Remove("nope")
	assert.Equal(t, 2, l.Len())
	l.Remove("P1-Red-M")
	assert.Equal(t, 1, l.Len())
	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestItemsReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 1)
	items := l.Items()
	items[0].Quantity = 99
	li, _ := l.Get("P1-Black-M")
	assert.Equal(t, 1, li.Quantity)
}

func TestSnapshotRoundTripMergesDuplicates(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 2)
	snap := append(l.Snapshot(), LineItem{ProductID: "P1", ColorName: "Black", Size: "M", Quantity: 1},
		LineItem{ProductID: "P2", ColorName: "Red", Size: "S", Quantity: 0})

	restored := FromSnapshot(snap)
	items := restored.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestLineItemPriceHasTwoDecimals(t *testing.T) {
	l := NewLedger()
	l.Add(ProductRef{ID: "P9", Name: "Belt", Price: decimal.NewFromInt(45)}, "Tan", "One Size", "#D2B48C", 1)
	raw, err := json.Marshal(l.Items()[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"45.00"`)
	assert.Contains(t, string(raw), `"id":"P9-Tan-One Size"`)

	var back LineItem
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.UnitPrice.Equal(decimal.NewFromInt(45)))
}

func TestTotalsEndToEndScenario(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000000", 1)
	l.Add(p1(), "Black", "M", "#000000", 2)

	tot := DefaultPricing().Totals(l.Items())
	assert.Equal(t, "150.00", tot.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", tot.Shipping.StringFixed(2))
	assert.Equal(t, "15.00", tot.Tax.StringFixed(2))
	assert.Equal(t, "175.00", tot.Total.StringFixed(2))
	assert.Equal(t, 3, tot.ItemCount)
}

func TestTotalsEmptyLedger(t *testing.T) {
	tot := DefaultPricing().Totals(nil)
	assert.True(t, tot.Subtotal.IsZero())
	assert.True(t, tot.Shipping.IsZero())
	assert.True(t, tot.Tax.IsZero())
	assert.True(t, tot.Total.IsZero())
}

func TestTotalsIdempotent(t *testing.T) {
	l := NewLedger()
	l.Add(p1(), "Black", "M", "#000", 3)
	l.Add(ProductRef{ID: "P2", Price: decimal.RequireFromString("19.99")}, "Red", "S", "#f00", 2)

	pr := DefaultPricing()
	a, b := pr.Totals(l.Items()), pr.Totals(l.Items())
	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.Shipping.Equal(b.Shipping))
	assert.True(t, a.Tax.Equal(b.Tax))
	assert.True(t, a.Total.Equal(b.Total))
}

func TestTotalsShippingAndTaxProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pr := DefaultPricing()
	for i := 0; i < 200; i++ {
		l := NewLedger()
		n := rng.Intn(5)
		for j := 0; j < n; j++ {
			price := decimal.New(int64(rng.Intn(100000)), -2)
			l.Add(ProductRef{ID: string(rune('A' + j)), Price: price}, "C", "S", "#fff", 1+rng.Intn(4))
		}
		tot := pr.Totals(l.Items())
		if l.ItemCount() > 0 {
			assert.True(t, tot.Shipping.Equal(pr.ShippingRate))
		} else {
			assert.True(t, tot.Shipping.IsZero())
		}
		diff := tot.Tax.Sub(tot.Subtotal.Mul(pr.TaxRate)).Abs()
		assert.True(t, diff.LessThan(decimal.New(1, -6)))
		assert.True(t, tot.Total.Equal(tot.Subtotal.Add(tot.Shipping).Add(tot.Tax)))
	}
}

func TestTotalsJSONUsesCents(t *testing.T) {
	tot := DefaultPricing().Totals([]LineItem{{UnitPrice: decimal.RequireFromString("9.99"), Quantity: 1}})
	b, err := tot.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"subtotal":"9.99","shipping":"10.00","tax":"1.00","total":"20.99","item_count":1}`, string(b))
}
