package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	"seenstudio/internal/auth"
	applog "seenstudio/internal/log"
)

const (
	localClaims       = "claims"
	localUserID       = "user_id"
	localTokenInvalid = "token_invalid"
)

// Authenticate reads an optional bearer token. A valid token puts its claims
// in Locals; an invalid one is remembered so RequireUser can answer 403.
func Authenticate(cfg auth.TokenConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		tok, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tok) == "" {
			c.Locals(localTokenInvalid, true)
			return c.Next()
		}
		claims, err := auth.ParseToken(cfg, strings.TrimSpace(tok))
		if err != nil {
			c.Locals(localTokenInvalid, true)
			return c.Next()
		}
		c.Locals(localClaims, claims)
		c.Locals(localUserID, claims.UserID)
		return c.Next()
	}
}

func claimsOf(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals(localClaims).(*auth.Claims)
	return cl
}

// userID returns the authenticated user id or "".
func userID(c *fiber.Ctx) string {
	if cl := claimsOf(c); cl != nil {
		return cl.UserID
	}
	return ""
}

// RequireUser answers 401 without a token and 403 for an invalid one.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claimsOf(c) != nil {
			return c.Next()
		}
		if invalid, _ := c.Locals(localTokenInvalid).(bool); invalid {
			applog.Security(c, "auth.token.invalid", nil)
			return apperr.New(apperr.CodeForbidden, "Invalid or expired token")
		}
		return apperr.New(apperr.CodeUnauthorized, "Access token required")
	}
}

// RequireAdmin is RequireUser plus the isAdmin claim.
func RequireAdmin() fiber.Handler {
	requireUser := RequireUser()
	return func(c *fiber.Ctx) error {
		if claimsOf(c) == nil {
			return requireUser(c)
		}
		if !claimsOf(c).IsAdmin {
			applog.Security(c, "access.denied.admin", nil)
			return apperr.New(apperr.CodeForbidden, "Admin access required")
		}
		return c.Next()
	}
}
