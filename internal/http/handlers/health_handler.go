package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"seenstudio/internal/apperr"
)

type HealthHandler struct {
	DB *sqlx.DB
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := h.DB.PingContext(c.UserContext()); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "database unavailable")
	}
	return c.JSON(fiber.Map{"ok": true, "status": "OK"})
}
