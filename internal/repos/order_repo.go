package repos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"seenstudio/internal/checkout"
	"seenstudio/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID           string          `db:"id"`
	UserID       *string         `db:"user_id"`
	SessionID    string          `db:"session_id"`
	Email        string          `db:"email"`
	Subtotal     decimal.Decimal `db:"subtotal"`
	Shipping     decimal.Decimal `db:"shipping"`
	Tax          decimal.Decimal `db:"tax"`
	Total        decimal.Decimal `db:"total"`
	Status       string          `db:"status"`
	ShippingJSON string          `db:"shipping_json"`
	CreatedAt    string          `db:"created_at"`
}

const orderCols = `id, user_id, session_id, email, subtotal, shipping, tax, total, status, shipping_json, created_at`

// Record stores a confirmed order with its lines and shipping details.
// Card data is not part of the draft and is never written.
func (r *OrderRepo) Record(ctx context.Context, orderID string, d checkout.Draft) error {
	var userID any
	if d.UserID != "" {
		userID = d.UserID
	}
	t := d.Totals.Rounded()
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
		  INSERT INTO orders(`+orderCols+`)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			orderID, userID, d.CartSession, d.Shipping.Email,
			t.Subtotal.StringFixed(2), t.Shipping.StringFixed(2), t.Tax.StringFixed(2), t.Total.StringFixed(2),
			domain.OrderStatusConfirmed, encodeJSON(d.Shipping), now())
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i, it := range d.Items {
			if _, err := tx.ExecContext(ctx, `
			  INSERT INTO order_items(order_id, line, product_id, product_name, color_name, color_value, size, quantity, unit_price)
			  VALUES (?,?,?,?,?,?,?,?,?)`,
				orderID, i, it.ProductID, it.Name, it.ColorName, it.ColorValue, it.Size, it.Quantity, it.UnitPrice.String()); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

func (r *OrderRepo) toDomain(ctx context.Context, row orderRow) (domain.Order, error) {
	o := domain.Order{
		ID:        row.ID,
		SessionID: row.SessionID,
		Email:     row.Email,
		Subtotal:  row.Subtotal,
		Shipping:  row.Shipping,
		Tax:       row.Tax,
		Total:     row.Total,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		Items:     []domain.OrderItem{},
	}
	if row.UserID != nil {
		o.UserID = *row.UserID
	}
	if err := decodeJSON(row.ShippingJSON, &o.ShipTo); err != nil {
		return o, fmt.Errorf("order %s shipping: %w", row.ID, err)
	}
	err := r.db.SelectContext(ctx, &o.Items, `
	  SELECT product_id, product_name, color_name, color_value, size, quantity, unit_price
	  FROM order_items
	  WHERE order_id = ?
	  ORDER BY line ASC`, row.ID)
	return o, err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, notFound(err, "order")
	}
	return r.toDomain(ctx, row)
}

// ListByUser returns the user's orders newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListLatest returns the newest orders for the admin screen.
func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := r.toDomain(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// LatestIDMillis returns the millisecond part of the newest ORD-<ms> id, or 0.
func (r *OrderRepo) LatestIDMillis(ctx context.Context) (int64, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM orders ORDER BY created_at DESC LIMIT 20`); err != nil {
		return 0, err
	}
	var max int64
	for _, id := range ids {
		ms, err := strconv.ParseInt(strings.TrimPrefix(id, "ORD-"), 10, 64)
		if err == nil && ms > max {
			max = ms
		}
	}
	return max, nil
}
