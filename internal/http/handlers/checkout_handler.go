package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	"seenstudio/internal/checkout"
	"seenstudio/internal/domain"
	applog "seenstudio/internal/log"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Accounts *services.AccountService
}

// respond writes the session view. Field errors are sent with the view so the
// form can stay on its step.
func respond(c *fiber.Ctx, v checkout.View, err error) error {
	if err == nil {
		return c.JSON(v)
	}
	if ae := apperr.As(err); ae != nil && ae.Code() == apperr.CodeValidation && v.ID != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    errorBody{Code: ae.Code(), Message: ae.Message(), Details: ae.Details()},
			"checkout": v,
		})
	}
	return err
}

// POST /api/checkout
func (h *CheckoutHandler) Start(c *fiber.Ctx) error {
	v, err := h.Checkout.Start(c.UserContext(), ensureSID(c), userID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// GET /api/checkout/:id
func (h *CheckoutHandler) Get(c *fiber.Ctx) error {
	v, err := h.Checkout.View(c.Params("id"), ensureSID(c))
	return respond(c, v, err)
}

// POST /api/checkout/:id/shipping
func (h *CheckoutHandler) Shipping(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var info domain.ShippingInfo
	if err := decodeJSON(c, &info); err != nil {
		return err
	}
	v, err := h.Checkout.SubmitShipping(c.Params("id"), sid, info)
	return respond(c, v, err)
}

// POST /api/checkout/:id/shipping/from-address/:addressId
func (h *CheckoutHandler) ShippingFromAddress(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := ""
	if cl := claimsOf(c); cl != nil {
		email = cl.Email
	}
	v, err := h.Checkout.ShippingFromAddress(c.UserContext(), c.Params("id"), sid, userID(c), c.Params("addressId"), email)
	return respond(c, v, err)
}

// POST /api/checkout/:id/payment
func (h *CheckoutHandler) Payment(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var info checkout.PaymentInfo
	if err := decodeJSON(c, &info); err != nil {
		return err
	}
	v, err := h.Checkout.SubmitPayment(c.Params("id"), sid, info)
	return respond(c, v, err)
}

type editBody struct {
	Step string `json:"step"`
}

// POST /api/checkout/:id/edit
func (h *CheckoutHandler) Edit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body editBody
	if err := decodeJSON(c, &body); err != nil {
		return err
	}
	step, ok := checkout.ParseStep(body.Step)
	if !ok || (step != checkout.StepShipping && step != checkout.StepPayment) {
		return apperr.New(apperr.CodeValidation, "step must be shipping or payment").
			WithDetails(map[string]string{"step": "must be shipping or payment"})
	}
	v, err := h.Checkout.Edit(c.Params("id"), sid, step)
	return respond(c, v, err)
}

// POST /api/checkout/:id/place
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	conf, err := h.Checkout.Place(c.UserContext(), c.Params("id"), ensureSID(c))
	if err != nil {
		return err
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": conf.OrderID,
		"total":    conf.Totals.Total.StringFixed(2),
		"items":    len(conf.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(conf)
}

// decodeJSON only parses the body; the checkout session runs its own form rules.
func decodeJSON(c *fiber.Ctx, dest any) error {
	if err := json.Unmarshal(c.Body(), dest); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid request body").
			WithDetails(validate.FieldErrors{"body": "must be valid JSON"})
	}
	return nil
}
