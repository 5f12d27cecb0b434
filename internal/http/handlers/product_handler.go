package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	applog "seenstudio/internal/log"
	"seenstudio/internal/services"
	"seenstudio/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func priceParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperr.New(apperr.CodeValidation, "invalid price filter").
			WithDetails(map[string]string{name: "must be a non-negative number"})
	}
	return &d, nil
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	min, err := priceParam(c, "min_price")
	if err != nil {
		return err
	}
	max, err := priceParam(c, "max_price")
	if err != nil {
		return err
	}
	page, err := h.Catalog.ListProducts(c.UserContext(), services.ProductQuery{
		Category: domain.Category(strings.TrimSpace(c.Query("category"))),
		Colors:   validate.CSV(c.Query("colors")),
		Sizes:    validate.CSV(c.Query("sizes")),
		MinPrice: min,
		MaxPrice: max,
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     validate.Int(c.Query("page"), 1, 100000),
		PageSize: validate.Int(c.Query("page_size"), services.DefaultPageSize, services.MaxPageSize),
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return apperr.New(apperr.CodeNotFound, "Product not found")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GET /api/products/search/:term
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	term, ok := validate.Q(c.Params("term"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return apperr.New(apperr.CodeValidation, "invalid search term").
			WithDetails(map[string]string{"term": "letters, digits and spaces only, up to 50 characters"})
	}
	products, err := h.Catalog.Search(c.UserContext(), term)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// GET /api/products/category/:category
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	products, err := h.Catalog.ByCategory(c.UserContext(), domain.Category(c.Params("category")))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2)})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
