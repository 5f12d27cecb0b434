package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "seenstudio/internal/log"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type AdminHandler struct {
	Orders   *services.OrderService
	Accounts *services.AccountService
}

// GET /api/admin/orders?limit=
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	ords, err := h.Orders.Latest(c.UserContext(), validate.Int(c.Query("limit"), 100, 500))
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return c.JSON(ords)
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Accounts.ListUsers(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return err
	}
	return c.JSON(users)
}
