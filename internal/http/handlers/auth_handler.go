package handlers

import (
	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	"seenstudio/internal/log"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type AuthHandler struct {
	Accounts *services.AccountService
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := validate.Body(c, &in); err != nil {
		return err
	}
	sess, err := h.Accounts.Register(c.UserContext(), in)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			log.Security(c, "auth.register.fail", map[string]any{"reason": "exists"})
		}
		return err
	}
	c.Locals(localUserID, sess.User.ID)
	log.Audit(c, "auth.register", map[string]any{"email": sess.User.Email})
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := validate.Body(c, &in); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return err
	}
	if _, ok := validate.Email(in.Email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return apperr.New(apperr.CodeUnauthorized, "Invalid email or password")
	}
	sess, err := h.Accounts.Login(c.UserContext(), in)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return err
	}
	c.Locals(localUserID, sess.User.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": sess.User.Email})
	return c.JSON(sess)
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u, err := h.Accounts.Profile(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := validate.Body(c, &in); err != nil {
		return err
	}
	u, err := h.Accounts.UpdateProfile(c.UserContext(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// GET /api/auth/addresses
func (h *AuthHandler) ListAddresses(c *fiber.Ctx) error {
	list, err := h.Accounts.ListAddresses(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// POST /api/auth/addresses
func (h *AuthHandler) CreateAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	a, err := h.Accounts.CreateAddress(c.UserContext(), userID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// PUT /api/auth/addresses/:id
func (h *AuthHandler) UpdateAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	a, err := h.Accounts.UpdateAddress(c.UserContext(), userID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// DELETE /api/auth/addresses/:id
func (h *AuthHandler) DeleteAddress(c *fiber.Ctx) error {
	if err := h.Accounts.DeleteAddress(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Address deleted"})
}
