package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorOf(t, body).Error.Code)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.db.Close())

	var status int
	var raw []byte
	lines := captureLogs(t, func() {
		resp, body := s.do(t, http.MethodGet, "/api/products", nil)
		status, raw = resp.StatusCode, body
	})
	require.Equal(t, http.StatusInternalServerError, status)
	e := errorOf(t, raw)
	assert.Equal(t, "INTERNAL_ERROR", e.Error.Code)
	assert.Equal(t, "Something went wrong. Please try again.", e.Error.Message)
	assert.NotContains(t, string(raw), "sql")
	assert.NotContains(t, string(raw), "closed")

	line, ok := findAction(lines, "server.error")
	require.True(t, ok, "the cause is logged server side")
	assert.Equal(t, "error", line.Level)
	assert.NotEmpty(t, line.Err)
}

func TestHealthReportsDependencyFailure(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"status":"OK"}`, string(body))

	require.NoError(t, s.db.Close())
	resp, body = s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	e := errorOf(t, body)
	assert.Equal(t, "DEPENDENCY_ERROR", e.Error.Code)
	assert.Equal(t, "dependency unavailable", e.Error.Message)
}
