package handlers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type totalsBody struct {
	Subtotal  string `json:"subtotal"`
	Shipping  string `json:"shipping"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

type cartBody struct {
	Items []struct {
		ID       string `json:"id"`
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Totals totalsBody `json:"totals"`
}

type checkoutBody struct {
	ID      string `json:"id"`
	Step    string `json:"step"`
	Card    string `json:"card"`
	OrderID string `json:"order_id"`
}

// checkoutToReview fills a cart with two silk slips and walks it to review.
func checkoutToReview(t *testing.T, s *testServer, sid string, opts ...reqOpt) checkoutBody {
	t.Helper()
	opts = append(opts, withCart(sid))
	resp, body := s.do(t, http.MethodPost, "/api/cart/items", map[string]any{
		"productId": "prd-silk-slip", "color": "Black", "size": "M", "quantity": 2, "price": "0.01",
	}, opts...)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodPost, "/api/checkout", nil, opts...)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	chk := decode[checkoutBody](t, body)
	require.Equal(t, "shipping", chk.Step)

	resp, body = s.do(t, http.MethodPost, "/api/checkout/"+chk.ID+"/shipping", usShipping(), opts...)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, body = s.do(t, http.MethodPost, "/api/checkout/"+chk.ID+"/payment", goodCard(), opts...)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	chk = decode[checkoutBody](t, body)
	require.Equal(t, "review", chk.Step)
	return chk
}

func TestOrderTotalsAreComputedServerSide(t *testing.T) {
	s := newServer(t)
	user := s.register(t, "ada@example.com")

	chk := checkoutToReview(t, s, "cart-ada", withToken(user.Token))
	assert.Equal(t, "**** 4242", chk.Card)

	resp, body := s.do(t, http.MethodPost, "/api/checkout/"+chk.ID+"/place", nil, withCart("cart-ada"), withToken(user.Token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	conf := decode[struct {
		OrderID string     `json:"order_id"`
		Totals  totalsBody `json:"totals"`
	}](t, body)
	assert.Regexp(t, `^ORD-\d+$`, conf.OrderID)
	assert.Equal(t, totalsBody{Subtotal: "258.00", Shipping: "10.00", Tax: "25.80", Total: "293.80", ItemCount: 2}, conf.Totals)
	assert.NotContains(t, string(body), "4242 4242")

	_, body = s.do(t, http.MethodGet, "/api/cart", nil, withCart("cart-ada"))
	assert.Empty(t, decode[cartBody](t, body).Items, "placing an order empties the cart")

	resp, body = s.do(t, http.MethodGet, "/api/orders", nil, withToken(user.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decode[[]struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}](t, body)
	require.Len(t, orders, 1)
	assert.Equal(t, conf.OrderID, orders[0].ID)
	assert.True(t, decimal.RequireFromString("293.80").Equal(decimal.RequireFromString(orders[0].Total)))

	resp, _ = s.do(t, http.MethodGet, "/api/orders/"+conf.OrderID, nil, withToken(user.Token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	eve := s.register(t, "eve@example.com").Token
	resp, _ = s.do(t, http.MethodGet, "/api/orders/"+conf.OrderID, nil, withToken(eve))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "orders of other users are invisible")

	resp, _ = s.do(t, http.MethodGet, "/api/orders/"+conf.OrderID, nil, withToken(s.adminToken(t)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckoutBelongsToItsCart(t *testing.T) {
	s := newServer(t)
	chk := checkoutToReview(t, s, "cart-one")

	resp, _ := s.do(t, http.MethodGet, "/api/checkout/"+chk.ID, nil, withCart("cart-two"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/api/checkout/"+chk.ID+"/place", nil, withCart("cart-two"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := s.do(t, http.MethodGet, "/api/cart", nil, withCart("cart-one"))
	assert.Len(t, decode[cartBody](t, body).Items, 1)
}
