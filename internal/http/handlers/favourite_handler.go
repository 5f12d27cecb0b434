package handlers

import (
	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/services"
)

type FavouriteHandler struct {
	Favs *services.FavouriteService
}

func (h *FavouriteHandler) List(c *fiber.Ctx) error {
	favs, err := h.Favs.List(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(favs)
}

type favouriteBody struct {
	ProductID string `json:"productId"`
}

func (h *FavouriteHandler) Add(c *fiber.Ctx) error {
	var body favouriteBody
	if err := decodeJSON(c, &body); err != nil {
		return err
	}
	if err := h.Favs.Add(c.UserContext(), userID(c), body.ProductID); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Added to favourites"})
}

func (h *FavouriteHandler) Remove(c *fiber.Ctx) error {
	if err := h.Favs.Remove(c.UserContext(), userID(c), c.Params("productId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Removed from favourites"})
}
