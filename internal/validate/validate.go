package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'\-&.]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	reHex   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 255 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search term: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Int parses a query value, falling back to def and clamping to [1, max].
func Int(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ID validates an opaque resource identifier (uuid, order number, post id).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// HexColor validates a #rrggbb display color.
func HexColor(s string) bool { return reHex.MatchString(s) }

// Password enforces 8-72 bytes (bcrypt's limit) with at least one letter and one digit.
func Password(s string) bool {
	if len(s) < 8 || len(s) > 72 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// CSV splits a comma separated query value, dropping blanks.
func CSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
