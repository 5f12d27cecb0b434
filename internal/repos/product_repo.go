package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, product_details, price, images_json, colors_json,
	sizes_json, size_chart_json, category, is_active, created_at, updated_at`

type productRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	ProductDetails string          `db:"product_details"`
	Price          decimal.Decimal `db:"price"`
	ImagesJSON     string          `db:"images_json"`
	ColorsJSON     string          `db:"colors_json"`
	SizesJSON      string          `db:"sizes_json"`
	SizeChartJSON  string          `db:"size_chart_json"`
	Category       string          `db:"category"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      string          `db:"created_at"`
	UpdatedAt      string          `db:"updated_at"`
}

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		ProductDetails: r.ProductDetails,
		Price:          r.Price,
		Category:       domain.Category(r.Category),
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Images:         []string{},
		Colors:         []domain.ColorVariant{},
		Sizes:          []string{},
	}
	if err := decodeJSON(r.ImagesJSON, &p.Images); err != nil {
		return p, fmt.Errorf("product %s images: %w", r.ID, err)
	}
	if err := decodeJSON(r.ColorsJSON, &p.Colors); err != nil {
		return p, fmt.Errorf("product %s colors: %w", r.ID, err)
	}
	if err := decodeJSON(r.SizesJSON, &p.Sizes); err != nil {
		return p, fmt.Errorf("product %s sizes: %w", r.ID, err)
	}
	var grid [][]string
	if err := decodeJSON(r.SizeChartJSON, &grid); err != nil {
		return p, fmt.Errorf("product %s size chart: %w", r.ID, err)
	}
	p.SizeChart = ChartFromGrid(grid)
	return p, nil
}

func decodeJSON(raw string, dest any) error {
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dest)
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ChartFromGrid pads or trims grid into the fixed 5x5 chart.
func ChartFromGrid(grid [][]string) domain.SizeChart {
	var c domain.SizeChart
	for i := 0; i < len(grid) && i < domain.SizeChartRows; i++ {
		for j := 0; j < len(grid[i]) && j < domain.SizeChartCols; j++ {
			c[i][j] = grid[i][j]
		}
	}
	return c
}

func toProducts(rows []productRow) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ProductFilter narrows List. Zero values mean "no filter".
type ProductFilter struct {
	Category domain.Category
	Colors   []string
	Sizes    []string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Limit    int
	Offset   int
}

var productSorts = map[string]string{
	"":               "created_at DESC, id",
	"newest":         "created_at DESC, id",
	"best-selling":   "created_at DESC, id",
	"price-low-high": "CAST(price AS REAL) ASC, id",
	"price-high-low": "CAST(price AS REAL) DESC, id",
	"name-a-z":       "LOWER(name) ASC, id",
	"name-z-a":       "LOWER(name) DESC, id",
}

func IsProductSort(s string) bool {
	_, ok := productSorts[s]
	return ok
}

func (f ProductFilter) where() (string, []any) {
	where := []string{"is_active = 1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if len(f.Colors) > 0 {
		ph := make([]string, len(f.Colors))
		for i, c := range f.Colors {
			ph[i] = "LOWER(json_extract(c.value, '$.name')) = LOWER(?)"
			args = append(args, c)
		}
		where = append(where, "EXISTS (SELECT 1 FROM json_each(colors_json) c WHERE "+strings.Join(ph, " OR ")+")")
	}
	if len(f.Sizes) > 0 {
		ph := make([]string, len(f.Sizes))
		for i, s := range f.Sizes {
			ph[i] = "?"
			args = append(args, s)
		}
		where = append(where, "EXISTS (SELECT 1 FROM json_each(sizes_json) s WHERE s.value IN ("+strings.Join(ph, ",")+"))")
	}
	if f.MinPrice != nil {
		where = append(where, "CAST(price AS REAL) >= ?")
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where = append(where, "CAST(price AS REAL) <= ?")
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	return strings.Join(where, " AND "), args
}

// List returns one page of active products plus the total match count.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, int, error) {
	where, args := f.where()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	order, ok := productSorts[f.Sort]
	if !ok {
		order = productSorts[""]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	q := `SELECT ` + productCols + ` FROM products WHERE ` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, q, append(args, limit, f.Offset)...); err != nil {
		return nil, 0, err
	}
	out, err := toProducts(rows)
	return out, total, err
}

// Search matches the term against name, description and category.
func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	like := "%" + strings.ToLower(term) + "%"
	if limit <= 0 {
		limit = 48
	}
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE is_active = 1
	    AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)
	  ORDER BY created_at DESC, id
	  LIMIT ?`, like, like, like, limit)
	if err != nil {
		return nil, err
	}
	return toProducts(rows)
}

// Get returns an active product.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return domain.Product{}, notFound(err, "product")
	}
	return row.toDomain()
}

// ActiveByIDs returns the active products among ids keyed by id.
func (r *ProductRepo) ActiveByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE is_active = 1 AND id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

// Create inserts p, assigning an id when empty.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO products(`+productCols+`)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.ProductDetails, p.Price.String(),
		encodeJSON(nonNil(p.Images)), encodeJSON(p.Colors), encodeJSON(nonNil(p.Sizes)),
		encodeJSON(p.SizeChart), string(p.Category), boolInt(p.IsActive), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Update overwrites every editable column of an existing product.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `
	  UPDATE products SET
	    name = ?, description = ?, product_details = ?, price = ?, images_json = ?,
	    colors_json = ?, sizes_json = ?, size_chart_json = ?, category = ?, is_active = ?, updated_at = ?
	  WHERE id = ?`,
		p.Name, p.Description, p.ProductDetails, p.Price.String(), encodeJSON(nonNil(p.Images)),
		encodeJSON(p.Colors), encodeJSON(nonNil(p.Sizes)), encodeJSON(p.SizeChart), string(p.Category),
		boolInt(p.IsActive), p.UpdatedAt, p.ID)
	if err := mustAffect(res, err, "product"); err != nil {
		return domain.Product{}, err
	}
	return r.GetAny(ctx, p.ID)
}

// GetAny returns a product whether or not it is active.
func (r *ProductRepo) GetAny(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE id = ?`, id); err != nil {
		return domain.Product{}, notFound(err, "product")
	}
	return row.toDomain()
}

// Deactivate soft deletes a product.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`, now(), id)
	return mustAffect(res, err, "product")
}

func mustAffect(res sql.Result, err error, what string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, what+" not found")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
