package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRejectCustomers(t *testing.T) {
	s := newServer(t)
	customer := s.register(t, "ada@example.com").Token

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/products", map[string]any{"name": "x"}},
		{http.MethodPut, "/api/products/prd-silk-slip", map[string]any{"name": "x"}},
		{http.MethodDelete, "/api/products/prd-silk-slip", nil},
		{http.MethodPut, "/api/home-discover", map[string]any{"productIds": []string{}}},
		{http.MethodPut, "/api/instagram-posts/reorder", map[string]any{"surface": "desktop", "ids": []string{}}},
		{http.MethodPatch, "/api/instagram-posts/ig-1", map[string]any{"show_on_desktop": false}},
		{http.MethodGet, "/api/admin/orders", nil},
		{http.MethodGet, "/api/admin/users", nil},
	}
	for _, tc := range cases {
		resp, body := s.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "anonymous %s %s", tc.method, tc.path)

		resp, body = s.do(t, tc.method, tc.path, tc.body, withToken(customer))
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "customer %s %s", tc.method, tc.path)
		assert.Equal(t, "Admin access required", errorOf(t, body).Error.Message)
	}

	_, body := s.do(t, http.MethodGet, "/api/products/prd-silk-slip", nil)
	assert.Contains(t, string(body), "Silk Slip Dress", "rejected writes leave the catalog alone")
}

func TestAdminCanListOrdersAndUsers(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken(t)
	s.register(t, "ada@example.com")

	resp, body := s.do(t, http.MethodGet, "/api/admin/users", nil, withToken(admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[[]map[string]any](t, body)
	assert.Len(t, users, 2)
	assert.NotContains(t, string(body), "password")

	resp, _ = s.do(t, http.MethodGet, "/api/admin/orders?limit=5", nil, withToken(admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminProductLifecycle(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken(t)

	product := map[string]any{
		"name": "Cropped Blazer", "price": "189.5", "category": "Tops",
		"images": []string{"/images/blazer.jpg"},
		"colors": []map[string]any{{"name": "Camel", "value": "#C19A6B", "image_index": 0}},
		"sizes":  []string{"S", "M"},
	}
	resp, body := s.do(t, http.MethodPost, "/api/products", product, withToken(admin))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[map[string]any](t, body)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "189.5", created["price"])

	product["price"] = "-1"
	product["colors"] = []map[string]any{{"name": "Camel", "value": "camel"}}
	resp, body = s.do(t, http.MethodPut, "/api/products/"+id, product, withToken(admin))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorOf(t, body)
	assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
	assert.Contains(t, string(e.Error.Details), "price")

	resp, _ = s.do(t, http.MethodDelete, "/api/products/"+id, nil, withToken(admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "deleted products are hidden from shoppers")
}
