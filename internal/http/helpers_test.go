package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"seenstudio/internal/config"
	"seenstudio/internal/http/handlers"
	applog "seenstudio/internal/log"
	"seenstudio/internal/metrics"
	"seenstudio/internal/repos"
)

type testServer struct {
	app *fiber.App
	db  *sqlx.DB
	cfg config.Config
}

// newServer boots the full app over a seeded in-memory database.
func newServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Test()
	for _, fn := range tweak {
		fn(&cfg)
	}
	ctx := context.Background()
	db, err := repos.OpenMigrated(ctx, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Seed(ctx, db, repos.SeedOptions{
		AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword, BcryptCost: cfg.BcryptCost,
	}))

	reg := prometheus.NewRegistry()
	deps, err := handlers.NewDeps(ctx, db, cfg, metrics.New(reg), nil)
	require.NoError(t, err)
	return &testServer{app: handlers.NewApp(cfg, deps, reg), db: db, cfg: cfg}
}

type reqOpt func(*http.Request)

func withToken(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCart(sid string) reqOpt {
	return func(r *http.Request) { r.Header.Set("X-Cart-Session", sid) }
}

// do sends body as JSON. A string body is sent verbatim.
func (s *testServer) do(t *testing.T, method, path string, body any, opts ...reqOpt) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

type apiError struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorOf(t *testing.T, raw []byte) apiError {
	t.Helper()
	return decode[apiError](t, raw)
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"user"`
}

func (s *testServer) login(t *testing.T, email, password string) session {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	return decode[session](t, body)
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	return s.login(t, s.cfg.AdminEmail, s.cfg.AdminPassword).Token
}

func (s *testServer) register(t *testing.T, email string) session {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "secret123", "firstName": "Ada", "lastName": "Lovelace",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[session](t, body)
}

type logLine struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Status int            `json:"status"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
	Raw    string         `json:"-"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs runs fn with the process logger redirected and returns the parsed lines.
func captureLogs(t *testing.T, fn func()) []logLine {
	t.Helper()
	buf := &lockedBuf{}
	restore := applog.SetOutput(buf)
	fn()
	restore()

	var lines []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		var l logLine
		if err := json.Unmarshal([]byte(raw), &l); err == nil {
			l.Raw = raw
			lines = append(lines, l)
		}
	}
	return lines
}

func findAction(lines []logLine, action string) (logLine, bool) {
	for _, l := range lines {
		if l.Action == action {
			return l, true
		}
	}
	return logLine{}, false
}

func usShipping() map[string]string {
	return map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "555-0100",
		"address": "1 Main St", "city": "Springfield", "state": "IL", "postalCode": "62701", "country": "United States",
	}
}

func goodCard() map[string]string {
	return map[string]string{"cardholderName": "Ada Lovelace", "cardNumber": "4242 4242 4242 4242", "expiryDate": "12/29", "cvv": "123"}
}
