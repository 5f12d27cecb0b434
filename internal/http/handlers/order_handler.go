package handlers

import (
	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// GET /api/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.History(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apperr.New(apperr.CodeNotFound, "Order not found")
	}
	cl := claimsOf(c)
	o, err := h.Orders.Get(c.UserContext(), id, cl.UserID, cl.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(o)
}
