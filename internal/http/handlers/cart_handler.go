package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"seenstudio/internal/apperr"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

const (
	cartCookie = "cart_sid"
	cartHeader = "X-Cart-Session"
)

type CartHandler struct {
	Cart *services.CartService
}

// ensureSID returns the cart session from the X-Cart-Session header or the
// cart_sid cookie, issuing a new one when neither carries a usable id.
func ensureSID(c *fiber.Ctx) string {
	for _, candidate := range []string{c.Get(cartHeader), c.Cookies(cartCookie)} {
		if sid, ok := validate.ID(candidate); ok {
			c.Set(cartHeader, sid)
			return sid
		}
	}
	sid := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     cartCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		MaxAge:   30 * 24 * 60 * 60,
	})
	c.Set(cartHeader, sid)
	return sid
}

// lineKey returns the decoded :key param. Keys embed color and size names,
// which may contain spaces.
func lineKey(c *fiber.Ctx) (string, error) {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return "", apperr.New(apperr.CodeValidation, "invalid cart item key")
	}
	return key, nil
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	v, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// POST /api/cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in services.AddItemInput
	if err := validate.Body(c, &in); err != nil {
		return err
	}
	v, err := h.Cart.Add(c.UserContext(), sid, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

type quantityBody struct {
	Quantity *int `json:"quantity"`
}

// PATCH /api/cart/items/:key
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body quantityBody
	if err := validate.Body(c, &body); err != nil {
		return err
	}
	if body.Quantity == nil {
		return apperr.New(apperr.CodeInvalidQuantity, "Quantity is required").
			WithDetails(map[string]string{"quantity": "is required"})
	}
	key, err := lineKey(c)
	if err != nil {
		return err
	}
	v, err := h.Cart.UpdateQuantity(c.UserContext(), sid, key, *body.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// DELETE /api/cart/items/:key
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	key, err := lineKey(c)
	if err != nil {
		return err
	}
	v, err := h.Cart.Remove(c.UserContext(), sid, key)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	v, err := h.Cart.Clear(c.UserContext(), ensureSID(c))
	if err != nil {
		return err
	}
	return c.JSON(v)
}
