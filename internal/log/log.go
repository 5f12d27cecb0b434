package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Options configures the process-wide logger.
type Options struct {
	Level  string
	Format string // json | console
	Output io.Writer
}

var (
	mu   sync.RWMutex
	base = newLogger(os.Stdout, zerolog.InfoLevel, "json")
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = time.RFC3339
}

func newLogger(w io.Writer, lvl zerolog.Level, format string) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

// Setup replaces the process logger. It is called once from main.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l := newLogger(out, ParseLevel(opts.Level), opts.Format)
	mu.Lock()
	base = l
	mu.Unlock()
}

// SetOutput redirects JSON output to w and returns a func restoring the previous logger.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := base
	base = newLogger(w, zerolog.DebugLevel, "json")
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

func ParseLevel(value string) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value))); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// L returns the logger for code that runs outside a request.
func L() *zerolog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	return &l
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := L()
	var ev *zerolog.Event
	switch level {
	case "error":
		ev = l.Error()
	case "warn":
		ev = l.Warn()
	case "audit":
		ev = l.Log().Str(zerolog.LevelFieldName, "audit")
	default:
		ev = l.Info()
	}
	ev = ev.Str("action", action)
	if c != nil {
		ev = withRequest(ev, c)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func withRequest(ev *zerolog.Event, c *fiber.Ctx) *zerolog.Event {
	ev = ev.Str("ip", c.IP()).
		Str("method", c.Method()).
		Str("path", c.Path())
	if st := c.Response().StatusCode(); st != 0 {
		ev = ev.Int("status", st)
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		ev = ev.Str("req_id", rid)
	}
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		ev = ev.Str("user_id", uid)
	}
	return ev
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}

// Access logs one line per request with status and latency. Errors returned by
// the chain are handed to the app ErrorHandler first so the final status is logged.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		L().Info().
			Str("action", "http.request").
			Func(func(e *zerolog.Event) { withRequest(e, c) }).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Send()
		return nil
	}
}
