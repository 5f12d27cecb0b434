package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	applog "seenstudio/internal/log"
	"seenstudio/internal/repos"
	"seenstudio/internal/selection"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type HomeDiscoverHandler struct {
	Home *services.HomeDiscoverService
}

// GET /api/home-discover
func (h *HomeDiscoverHandler) Get(c *fiber.Ctx) error {
	sel, err := h.Home.Selection(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(sel)
}

// GET /api/home-discover/products
func (h *HomeDiscoverHandler) Products(c *fiber.Ctx) error {
	products, err := h.Home.Products(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

type homeBody struct {
	ProductIDs []string `json:"productIds"`
}

// PUT /api/home-discover
func (h *HomeDiscoverHandler) Replace(c *fiber.Ctx) error {
	var body homeBody
	if err := decodeJSON(c, &body); err != nil {
		return err
	}
	if body.ProductIDs == nil {
		return apperr.New(apperr.CodeValidation, "productIds must be an array").
			WithDetails(map[string]string{"productIds": "must be an array"})
	}
	sel, err := h.Home.Replace(c.UserContext(), body.ProductIDs)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.home_discover.replace", map[string]any{"product_ids": body.ProductIDs})
	return c.JSON(sel)
}

type InstagramHandler struct {
	Posts *services.InstagramService
}

// GET /api/instagram-posts
func (h *InstagramHandler) List(c *fiber.Ctx) error {
	posts, err := h.Posts.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

func surfaceParam(raw string) (selection.Surface, error) {
	s, ok := selection.ParseSurface(raw)
	if !ok || s == selection.SurfaceHome {
		return "", apperr.New(apperr.CodeValidation, "surface must be 'desktop' or 'mobile'").
			WithDetails(map[string]string{"surface": "must be desktop or mobile"})
	}
	return s, nil
}

// GET /api/instagram-posts/featured?surface=desktop|mobile
func (h *InstagramHandler) Featured(c *fiber.Ctx) error {
	surface, err := surfaceParam(c.Query("surface"))
	if err != nil {
		return err
	}
	posts, err := h.Posts.Featured(c.UserContext(), surface)
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

type postBody struct {
	ID    string `json:"id" validate:"required,max=128"`
	Image string `json:"image" validate:"required"`
	Link  string `json:"link" validate:"required"`
}

// POST /api/instagram-posts
func (h *InstagramHandler) Create(c *fiber.Ctx) error {
	var body postBody
	if err := validate.Body(c, &body); err != nil {
		return err
	}
	id, ok := validate.ID(body.ID)
	if !ok {
		return apperr.New(apperr.CodeValidation, "invalid post id").
			WithDetails(map[string]string{"id": "letters, digits, '-' and '_' only"})
	}
	post, err := h.Posts.Create(c.UserContext(), id, body.Image, body.Link)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.instagram.create", map[string]any{"post_id": post.ID})
	return c.Status(fiber.StatusCreated).JSON(post)
}

type reorderBody struct {
	Surface string   `json:"surface"`
	IDs     []string `json:"ids"`
}

// PUT /api/instagram-posts/reorder
func (h *InstagramHandler) Reorder(c *fiber.Ctx) error {
	var body reorderBody
	if err := decodeJSON(c, &body); err != nil {
		return err
	}
	surface, err := surfaceParam(body.Surface)
	if err != nil {
		return err
	}
	if err := h.Posts.Reorder(c.UserContext(), surface, body.IDs); err != nil {
		return err
	}
	applog.Audit(c, "admin.instagram.reorder", map[string]any{"surface": string(surface), "ids": body.IDs})
	return c.JSON(fiber.Map{"message": "Posts reordered successfully"})
}

// parsePostPatch keeps the difference between an absent field and an explicit
// null, which clears a position.
func parsePostPatch(raw []byte) (repos.PostPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return repos.PostPatch{}, apperr.Wrap(apperr.CodeValidation, err, "invalid request body").
			WithDetails(map[string]string{"body": "must be a JSON object"})
	}
	var patch repos.PostPatch
	fe := validate.FieldErrors{}
	flag := func(name string) *bool {
		v, ok := fields[name]
		if !ok {
			return nil
		}
		var b bool
		if err := json.Unmarshal(v, &b); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			fe[name] = "must be true or false"
			return nil
		}
		return &b
	}
	position := func(name string) *repos.OptionalInt {
		v, ok := fields[name]
		if !ok {
			return nil
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return &repos.OptionalInt{Null: true}
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil || n < 0 {
			fe[name] = "must be a non-negative integer or null"
			return nil
		}
		return &repos.OptionalInt{Value: n}
	}
	patch.ShowOnDesktop = flag("show_on_desktop")
	patch.DesktopPosition = position("desktop_position")
	patch.ShowOnMobile = flag("show_on_mobile")
	patch.MobilePosition = position("mobile_position")
	if len(fe) > 0 {
		return repos.PostPatch{}, apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	return patch, nil
}

// PATCH /api/instagram-posts/:id
func (h *InstagramHandler) Patch(c *fiber.Ctx) error {
	patch, err := parsePostPatch(c.Body())
	if err != nil {
		return err
	}
	post, err := h.Posts.Patch(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.instagram.update", map[string]any{"post_id": post.ID})
	return c.JSON(post)
}

// DELETE /api/instagram-posts/:id
func (h *InstagramHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Posts.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "admin.instagram.delete", map[string]any{"post_id": id})
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
